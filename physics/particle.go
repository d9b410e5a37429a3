package physics

import (
	"github.com/lixenwraith/drape/vmath"
)

// DefaultMass is substituted for non-positive or non-finite masses
const DefaultMass = 1.0

// Particle is a verlet point mass
// Velocity is implicit as Position - Previous
type Particle[V vmath.Vector[V]] struct {
	Position V
	Previous V
	Force    V // accumulated since last Integrate
	Mass     float64
	Fixed    bool
}

// NewParticle returns a particle at rest at pos
func NewParticle[V vmath.Vector[V]](pos V, mass float64, fixed bool) Particle[V] {
	if mass <= 0 || !vmath.IsFinite(mass) {
		mass = DefaultMass
	}
	return Particle[V]{
		Position: pos,
		Previous: pos,
		Mass:     mass,
		Fixed:    fixed,
	}
}

// AddForce accumulates f until the next Integrate
// Non-finite forces are dropped so NaN never reaches position state
func (p *Particle[V]) AddForce(f V) {
	sum := p.Force.Add(f)
	if !f.IsFinite() || !sum.IsFinite() {
		return
	}
	p.Force = sum
}

// Velocity returns the implicit per-step velocity
func (p *Particle[V]) Velocity() V {
	return p.Position.Sub(p.Previous)
}

// Integrate performs one verlet step: x' = x + (x - x₀)·damping + F/m·dt²
// Fixed particles only have their accumulator cleared
func (p *Particle[V]) Integrate(dt, damping float64) {
	var zero V
	if p.Fixed {
		p.Force = zero
		return
	}

	damping = vmath.Clamp01(damping)
	velocity := p.Position.Sub(p.Previous).Scale(damping)
	accel := p.Force.Scale(dt * dt / p.Mass)
	next := p.Position.Add(velocity).Add(accel)
	p.Force = zero

	if !next.IsFinite() {
		// Drop the step and kill velocity rather than poison the chain
		p.Previous = p.Position
		return
	}

	p.Previous = p.Position
	p.Position = next
}

// SetPosition teleports the particle, discarding implicit velocity
func (p *Particle[V]) SetPosition(pos V) {
	if !pos.IsFinite() {
		return
	}
	p.Position = pos
	p.Previous = pos
}

// MoveTo moves the particle keeping the displacement as velocity
// Used for anchors following a moving owner so motion stays continuous
func (p *Particle[V]) MoveTo(pos V) {
	if !pos.IsFinite() {
		return
	}
	p.Previous = p.Position
	p.Position = pos
}
