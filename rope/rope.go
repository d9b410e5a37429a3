package rope

import (
	"errors"
	"fmt"
	"math"

	"github.com/lixenwraith/drape/physics"
	"github.com/lixenwraith/drape/vmath"
)

const (
	// DefaultDamping is the per-step velocity retention
	DefaultDamping = 0.99
	// WindStrength scales the wind scalar into a lateral force
	WindStrength = 0.35
	// windPhaseStep desynchronises neighbouring particles
	windPhaseStep = 0.7
	// windTimeRate advances the sway timer per unit of |wind| per step
	windTimeRate = 0.11
	// windTimeWrap keeps the sway timer bounded
	windTimeWrap = 2 * math.Pi * 5000
)

var (
	ErrSegmentCount = errors.New("segment count must be at least 1")
	ErrRestLength   = errors.New("rest length must be finite and non-negative")
	ErrIterations   = errors.New("iteration count must be at least 1")
)

// Settings selects per-rope behaviour
type Settings struct {
	// TileColliderArea is the footprint tested against terrain
	TileColliderArea vmath.Vec2
	StartIsFixed     bool
	EndIsFixed       bool
	// RespondToEntityMovement enables terrain collision
	RespondToEntityMovement bool
	RespondToWind           bool
	// Mass overrides particle mass, zero keeps physics.DefaultMass
	Mass float64
}

// Rope is a chain of verlet particles joined by sequential constraints
// Particle 0 is the start anchor, the last particle is the end
type Rope struct {
	particles   []physics.Particle[vmath.Vec2]
	constraints []physics.Constraint

	settings   Settings
	gravity    vmath.Vec2
	iterations int
	maxLength  float64

	// Damping is the verlet velocity retention, defaults to DefaultDamping
	Damping float64

	windTime  float64
	endTarget vmath.Vec2
	hasTarget bool
}

// New builds segmentCount+1 particles interpolated from start to end
func New(start, end vmath.Vec2, segmentCount int, restLengthPerSegment float64, gravity vmath.Vec2, settings Settings, iterations int) (*Rope, error) {
	if segmentCount < 1 {
		return nil, fmt.Errorf("rope: %w: got %d", ErrSegmentCount, segmentCount)
	}
	if restLengthPerSegment < 0 || !vmath.IsFinite(restLengthPerSegment) {
		return nil, fmt.Errorf("rope: %w: got %v", ErrRestLength, restLengthPerSegment)
	}
	if iterations < 1 {
		return nil, fmt.Errorf("rope: %w: got %d", ErrIterations, iterations)
	}
	if !start.IsFinite() || !end.IsFinite() || !gravity.IsFinite() {
		return nil, fmt.Errorf("rope: non-finite construction vector")
	}

	count := segmentCount + 1
	r := &Rope{
		particles:   make([]physics.Particle[vmath.Vec2], count),
		constraints: physics.Chain(count, restLengthPerSegment),
		settings:    settings,
		gravity:     gravity,
		iterations:  iterations,
		maxLength:   restLengthPerSegment * float64(segmentCount),
		Damping:     DefaultDamping,
	}

	for i := range r.particles {
		t := float64(i) / float64(segmentCount)
		r.particles[i] = physics.NewParticle(vmath.LerpV(start, end, t), settings.Mass, false)
	}
	r.particles[0].Fixed = settings.StartIsFixed
	r.particles[count-1].Fixed = settings.EndIsFixed

	return r, nil
}

// Step advances the rope by one tick
// Order: anchor target, wind, gravity, integrate, constraints, tighten, terrain
// sampler may be nil, which disables collision for this step
func (r *Rope) Step(dt, wind float64, sampler physics.TerrainSampler) {
	if r.Disposed() {
		return
	}

	if r.hasTarget {
		r.particles[len(r.particles)-1].MoveTo(r.endTarget)
		r.hasTarget = false
	}

	if r.settings.RespondToWind && wind != 0 && vmath.IsFinite(wind) {
		r.applyWind(wind)
	}

	for i := range r.particles {
		p := &r.particles[i]
		if p.Fixed {
			continue
		}
		p.AddForce(r.gravity.Scale(p.Mass))
	}

	for i := range r.particles {
		r.particles[i].Integrate(dt, r.Damping)
	}

	physics.SolveAll(r.particles, r.constraints, r.iterations, 1)
	r.tighten()

	if r.settings.RespondToEntityMovement && sampler != nil {
		for i := range r.particles {
			physics.ResolveTerrain(&r.particles[i], r.settings.TileColliderArea, sampler)
		}
	}
}

// tighten walks from the single fixed end toward the free end and pulls
// every overlong segment back to its rest length
// Ropes with both or neither end fixed are left to the solver
func (r *Rope) tighten() {
	n := len(r.particles)
	startFixed, endFixed := r.particles[0].Fixed, r.particles[n-1].Fixed
	if startFixed == endFixed {
		return
	}

	if startFixed {
		for i := range r.constraints {
			c := r.constraints[i]
			r.pullWithin(c.A, c.B, c.RestLength)
		}
		return
	}
	for i := len(r.constraints) - 1; i >= 0; i-- {
		c := r.constraints[i]
		r.pullWithin(c.B, c.A, c.RestLength)
	}
}

// pullWithin moves particle b toward a until they are at most rest apart
// The correction is not mirrored into Previous, so it also removes the
// outward velocity
func (r *Rope) pullWithin(a, b int, rest float64) {
	pa, pb := &r.particles[a], &r.particles[b]
	if pb.Fixed {
		return
	}
	d := pb.Position.Sub(pa.Position)
	dist := d.Len()
	if dist <= rest || dist < physics.Epsilon || !vmath.IsFinite(dist) {
		return
	}
	pb.Position = pa.Position.Add(d.Scale(rest / dist))
}

// applyWind pushes free particles sideways with a per-particle phase
// so the chain ripples instead of swaying as one block
func (r *Rope) applyWind(wind float64) {
	r.windTime = math.Mod(r.windTime+math.Abs(wind)*windTimeRate, windTimeWrap)
	base := r.particles[0].Position.X * 0.01

	for i := range r.particles {
		p := &r.particles[i]
		if p.Fixed {
			continue
		}
		phase := float64(i)*windPhaseStep + base
		sway := 0.5 + 0.5*math.Sin(phase+r.windTime)
		p.AddForce(vmath.Vec2{X: wind * WindStrength * sway * p.Mass})
	}
}

// SetStart repositions the start anchor
func (r *Rope) SetStart(pos vmath.Vec2) {
	if r.Disposed() {
		return
	}
	r.particles[0].MoveTo(pos)
}

// SetEndTarget queues the end anchor position applied at the next Step
// Only a fixed end follows its target; a free end is driven by physics
// Returns false when the target was refused (free end, disposed rope or
// non-finite position)
func (r *Rope) SetEndTarget(pos vmath.Vec2) bool {
	if r.Disposed() || !r.settings.EndIsFixed || !pos.IsFinite() {
		return false
	}
	r.endTarget = pos
	r.hasTarget = true
	return true
}

// Start returns the current start position
func (r *Rope) Start() vmath.Vec2 {
	if r.Disposed() {
		return vmath.Vec2{}
	}
	return r.particles[0].Position
}

// End returns the current end position
func (r *Rope) End() vmath.Vec2 {
	if r.Disposed() {
		return vmath.Vec2{}
	}
	return r.particles[len(r.particles)-1].Position
}

// Len returns the particle count, zero once disposed
func (r *Rope) Len() int {
	return len(r.particles)
}

// MaxLength returns the summed rest length
func (r *Rope) MaxLength() float64 {
	return r.maxLength
}

func (r *Rope) Settings() Settings {
	return r.settings
}

func (r *Rope) Iterations() int {
	return r.iterations
}

// Positions returns a copy of the particle positions, start first
func (r *Rope) Positions() []vmath.Vec2 {
	return r.AppendPositions(nil)
}

// AppendPositions appends the particle positions to dst
func (r *Rope) AppendPositions(dst []vmath.Vec2) []vmath.Vec2 {
	for i := range r.particles {
		dst = append(dst, r.particles[i].Position)
	}
	return dst
}

// SegmentLengths returns the current length of every constraint
func (r *Rope) SegmentLengths() []float64 {
	out := make([]float64, len(r.constraints))
	for i, c := range r.constraints {
		out[i] = vmath.Distance2(r.particles[c.A].Position, r.particles[c.B].Position)
	}
	return out
}

// Particle exposes a single particle for inspection, ok is false when out of range
func (r *Rope) Particle(i int) (physics.Particle[vmath.Vec2], bool) {
	if i < 0 || i >= len(r.particles) {
		return physics.Particle[vmath.Vec2]{}, false
	}
	return r.particles[i], true
}

// Dispose releases particle and constraint storage
// Safe to call repeatedly
func (r *Rope) Dispose() {
	r.particles = nil
	r.constraints = nil
	r.hasTarget = false
}

func (r *Rope) Disposed() bool {
	return r.particles == nil
}
