package physics

import (
	"github.com/lixenwraith/drape/vmath"
)

// Epsilon is the separation below which a constraint is skipped
const Epsilon = 1e-6

// Constraint links two particles of the same owner by index
type Constraint struct {
	A, B       int
	RestLength float64
}

// Solve nudges the pair toward RestLength
// correction = d·(|d|-L)/|d|·0.5·stiffness; A moves by +correction and
// B by -correction, a fixed endpoint receives nothing
func Solve[V vmath.Vector[V]](ps []Particle[V], c Constraint, stiffness float64) {
	a, b := &ps[c.A], &ps[c.B]
	if a.Fixed && b.Fixed {
		return
	}

	d := b.Position.Sub(a.Position)
	dist := d.Len()
	if dist < Epsilon || !vmath.IsFinite(dist) {
		return
	}

	correction := d.Scale((dist - c.RestLength) / dist * 0.5 * stiffness)

	if !a.Fixed {
		a.Position = a.Position.Add(correction)
	}
	if !b.Fixed {
		b.Position = b.Position.Sub(correction)
	}
}

// SolveAll runs iterations relaxation passes over cs
// Each pass walks cs in slice order; ropes build their constraints
// start to end, so a pass sweeps left to right and the settle shape
// depends on that order
func SolveAll[V vmath.Vector[V]](ps []Particle[V], cs []Constraint, iterations int, stiffness float64) {
	if stiffness <= 0 {
		return
	}
	if stiffness > 1 {
		stiffness = 1
	}
	for range iterations {
		for _, c := range cs {
			Solve(ps, c, stiffness)
		}
	}
}

// Chain builds n-1 sequential constraints joining particles 0..n-1
func Chain(n int, restLength float64) []Constraint {
	if n < 2 {
		return nil
	}
	cs := make([]Constraint, n-1)
	for i := range cs {
		cs[i] = Constraint{A: i, B: i + 1, RestLength: restLength}
	}
	return cs
}
