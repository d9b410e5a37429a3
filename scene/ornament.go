package scene

import (
	"fmt"
	"math"

	"github.com/lixenwraith/drape/config"
	"github.com/lixenwraith/drape/curve"
	"github.com/lixenwraith/drape/persist"
	"github.com/lixenwraith/drape/pool"
	"github.com/lixenwraith/drape/rope"
	"github.com/lixenwraith/drape/vmath"
)

// Ornament sway constants, the rope itself ignores wind
const (
	ornamentWindRate = 0.11
	ornamentWindWrap = 2 * math.Pi * 5000
	ornamentSwayRate = 0.4
	ornamentSwayFreq = 0.095
	ornamentSwayAmp  = 0.45
)

// Ornament is a decorative rope strung between two anchors with paper
// lanterns hung along it; wind moves the lanterns, not the rope
type Ornament struct {
	ropes  *pool.Manager
	handle pool.Handle

	start, end vmath.Vec2
	sag        float64
	maxLength  float64
	windTime   float64
}

func newOrnament(ropes *pool.Manager, p config.RopePreset, start, end vmath.Vec2, sag, maxLength float64) (*Ornament, error) {
	if sag < 0 || !vmath.IsFinite(sag) {
		return nil, fmt.Errorf("scene: ornament sag must be finite and non-negative, got %v", sag)
	}
	// A restored rope keeps its original length even if an anchor moved
	if maxLength <= 0 || !vmath.IsFinite(maxLength) {
		maxLength = rope.MaxLengthForSag(vmath.Distance2(start, end), sag)
	}
	// Wind is applied to the hanging decorations only
	settings := ropeSettings(p, true, true)
	settings.RespondToWind = false

	h, err := ropes.RequestNew(start, end, p.Segments, maxLength/float64(p.Segments), vmath.V2(0, p.Gravity), settings, p.Iterations)
	if err != nil {
		return nil, fmt.Errorf("scene: ornament: %w", err)
	}
	return &Ornament{
		ropes:     ropes,
		handle:    h,
		start:     start,
		end:       end,
		sag:       sag,
		maxLength: maxLength,
	}, nil
}

func (o *Ornament) Handle() pool.Handle {
	return o.handle
}

func (o *Ornament) Start() vmath.Vec2 {
	return o.start
}

func (o *Ornament) End() vmath.Vec2 {
	return o.end
}

func (o *Ornament) MaxLength() float64 {
	return o.maxLength
}

func (o *Ornament) WindTime() float64 {
	return o.windTime
}

// SetEnd moves the end anchor, pulled back to stay within MaxLength
func (o *Ornament) SetEnd(p vmath.Vec2) {
	if !p.IsFinite() {
		return
	}
	o.end = rope.ClampToLength(o.start, p, o.maxLength)
	o.ropes.SetEndTarget(o.handle, o.end)
}

// advance moves the sway timer by the current wind strength
func (o *Ornament) advance(wind float64) {
	if !vmath.IsFinite(wind) {
		return
	}
	o.windTime = math.Mod(o.windTime+math.Abs(wind)*ornamentWindRate, ornamentWindWrap)
}

func (o *Ornament) Positions() []vmath.Vec2 {
	pos, _ := o.ropes.Positions(o.handle)
	return pos
}

// Decoration is one item hung from a rope
type Decoration struct {
	Position vmath.Vec2
	Rotation float64
}

// Decorations places n lanterns evenly along the inner part of the rope,
// tilted by the local rope slope plus a wind-driven sway
func (o *Ornament) Decorations(n int) []Decoration {
	pts := o.Positions()
	if n < 1 || len(pts) == 0 {
		return nil
	}
	out := make([]Decoration, n)
	for i := range out {
		t := float64(i+1) / float64(n+1)
		pos := curve.Evaluate(pts, t)
		ahead := curve.Evaluate(pts, t+0.001)
		sway := math.Sin(o.windTime*ornamentSwayRate+pos.X*ornamentSwayFreq) * ornamentSwayAmp
		out[i] = Decoration{
			Position: pos,
			Rotation: vmath.AngleTo(pos, ahead) + sway,
		}
	}
	return out
}

func (o *Ornament) record() persist.Ornament {
	return persist.Ornament{
		Params: rope.Params{
			Start:     o.start,
			End:       o.end,
			Sag:       o.sag,
			MaxLength: o.maxLength,
		},
		WindTime: o.windTime,
	}
}

func (o *Ornament) anchors() []vmath.Vec2 {
	return []vmath.Vec2{o.start, o.end}
}
