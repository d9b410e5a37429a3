package scene

import (
	"fmt"

	"github.com/lixenwraith/drape/config"
	"github.com/lixenwraith/drape/persist"
	"github.com/lixenwraith/drape/pool"
	"github.com/lixenwraith/drape/rope"
	"github.com/lixenwraith/drape/vmath"
)

// Lantern hangs from a single anchor with a free end carrying the lamp
type Lantern struct {
	ropes  *pool.Manager
	handle pool.Handle

	anchor    vmath.Vec2
	length    float64
	sag       float64
	Direction int
}

func ropeSettings(p config.RopePreset, startFixed, endFixed bool) rope.Settings {
	return rope.Settings{
		TileColliderArea:        vmath.V2(p.ColliderArea, p.ColliderArea),
		StartIsFixed:            startFixed,
		EndIsFixed:              endFixed,
		RespondToEntityMovement: p.Collide,
		RespondToWind:           p.Wind,
		Mass:                    p.Mass,
	}
}

func newLantern(ropes *pool.Manager, p config.RopePreset, anchor vmath.Vec2, length float64, direction int) (*Lantern, error) {
	if length <= 0 || !vmath.IsFinite(length) {
		return nil, fmt.Errorf("scene: lantern length must be positive, got %v", length)
	}
	end := anchor.Add(vmath.V2(0, length))
	h, err := ropes.RequestNew(anchor, end, p.Segments, length/float64(p.Segments), vmath.V2(0, p.Gravity), ropeSettings(p, true, false), p.Iterations)
	if err != nil {
		return nil, fmt.Errorf("scene: lantern: %w", err)
	}
	return &Lantern{
		ropes:     ropes,
		handle:    h,
		anchor:    anchor,
		length:    length,
		sag:       p.Sag,
		Direction: direction,
	}, nil
}

func (l *Lantern) Handle() pool.Handle {
	return l.handle
}

func (l *Lantern) Anchor() vmath.Vec2 {
	return l.anchor
}

// Positions returns the rope from knot to lamp
func (l *Lantern) Positions() []vmath.Vec2 {
	pos, _ := l.ropes.Positions(l.handle)
	return pos
}

// Lamp returns where the lamp hangs
func (l *Lantern) Lamp() vmath.Vec2 {
	r, ok := l.ropes.Rope(l.handle)
	if !ok {
		return l.anchor
	}
	return r.End()
}

// Rotation is the lamp tilt, the angle from knot to lamp
func (l *Lantern) Rotation() float64 {
	return vmath.AngleTo(l.anchor, l.Lamp())
}

func (l *Lantern) record() persist.Lantern {
	return persist.Lantern{
		Params: rope.Params{
			Start:     l.anchor,
			End:       l.anchor.Add(vmath.V2(0, l.length)),
			Sag:       l.sag,
			MaxLength: l.length,
			Direction: l.Direction,
		},
		Length: l.length,
	}
}

func (l *Lantern) anchors() []vmath.Vec2 {
	return []vmath.Vec2{l.anchor}
}
