package scene

import (
	"fmt"
	"math/rand/v2"

	"github.com/lixenwraith/drape/config"
	"github.com/lixenwraith/drape/curve"
	"github.com/lixenwraith/drape/persist"
	"github.com/lixenwraith/drape/pool"
	"github.com/lixenwraith/drape/rope"
	"github.com/lixenwraith/drape/vmath"
)

// BeadFrames is the number of bead sprite variants
const BeadFrames = 3

// Pillar is a beaded rope wrapped between two points of a pillar
type Pillar struct {
	ropes  *pool.Manager
	handle pool.Handle

	start, end vmath.Vec2
	sag        float64
	maxLength  float64
	beadCount  int
	id         int64
}

func newPillar(ropes *pool.Manager, p config.RopePreset, start, end vmath.Vec2, beadCount int, sag, maxLength float64, id int64) (*Pillar, error) {
	if beadCount < 0 {
		return nil, fmt.Errorf("scene: pillar bead count must not be negative, got %d", beadCount)
	}
	if sag < 0 || !vmath.IsFinite(sag) {
		return nil, fmt.Errorf("scene: pillar sag must be finite and non-negative, got %v", sag)
	}
	// A restored rope keeps its original length even if an anchor moved
	if maxLength <= 0 || !vmath.IsFinite(maxLength) {
		maxLength = rope.MaxLengthForSag(vmath.Distance2(start, end), sag)
	}
	h, err := ropes.RequestNew(start, end, p.Segments, maxLength/float64(p.Segments), vmath.V2(0, p.Gravity), ropeSettings(p, true, true), p.Iterations)
	if err != nil {
		return nil, fmt.Errorf("scene: pillar: %w", err)
	}
	return &Pillar{
		ropes:     ropes,
		handle:    h,
		start:     start,
		end:       end,
		sag:       sag,
		maxLength: maxLength,
		beadCount: beadCount,
		id:        id,
	}, nil
}

func (p *Pillar) Handle() pool.Handle {
	return p.handle
}

func (p *Pillar) BeadCount() int {
	return p.beadCount
}

func (p *Pillar) ID() int64 {
	return p.id
}

func (p *Pillar) Positions() []vmath.Vec2 {
	pos, _ := p.ropes.Positions(p.handle)
	return pos
}

// SetEnd moves the end anchor, applied at the next tick
func (p *Pillar) SetEnd(pos vmath.Vec2) {
	if !pos.IsFinite() {
		return
	}
	p.end = pos
	p.ropes.SetEndTarget(p.handle, pos)
}

// Bead is one bead threaded on a pillar rope
type Bead struct {
	Position vmath.Vec2
	Rotation float64
	Frame    int
}

// Beads spreads the beads over the middle half of the rope, bunched toward
// the centre; frames are stable per pillar id
func (p *Pillar) Beads() []Bead {
	pts := p.Positions()
	if p.beadCount < 1 || len(pts) == 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(uint64(p.id), 0))
	out := make([]Bead, p.beadCount)
	for i := range out {
		t := 0.5
		if p.beadCount > 1 {
			t = vmath.SmoothStep(0.25, 0.75, float64(i)/float64(p.beadCount-1))
		}
		pos := curve.Evaluate(pts, t)
		out[i] = Bead{
			Position: pos,
			Rotation: vmath.AngleTo(pos, curve.Evaluate(pts, t+0.001)),
			Frame:    rng.IntN(BeadFrames),
		}
	}
	return out
}

func (p *Pillar) record() persist.Pillar {
	return persist.Pillar{
		Params: rope.Params{
			Start:     p.start,
			End:       p.end,
			Sag:       p.sag,
			MaxLength: p.maxLength,
		},
		BeadCount: p.beadCount,
		ID:        p.id,
	}
}

func (p *Pillar) anchors() []vmath.Vec2 {
	return []vmath.Vec2{p.start, p.end}
}
