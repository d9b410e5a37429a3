// Package curve evaluates Bézier curves over rope and cloth control points
// for smooth rendering of coarse particle chains
package curve

import (
	"github.com/lixenwraith/drape/vmath"
)

// scratchSize covers rope and cloth control counts without heap scratch
const scratchSize = 32

// Evaluate returns the Bézier point at parameter t using De Casteljau reduction
// Outside [0, 1] the curve extends along its end tangent at the end speed
// Empty input returns the zero value, a single point is returned as is
func Evaluate[V vmath.Vector[V]](points []V, t float64) V {
	var buf [scratchSize]V
	return evaluate(points, t, scratch(buf[:], len(points)))
}

func scratch[V any](buf []V, n int) []V {
	if n <= len(buf) {
		return buf[:n]
	}
	return make([]V, n)
}

func evaluate[V vmath.Vector[V]](points []V, t float64, work []V) V {
	var zero V
	k := len(points)
	switch {
	case k == 0:
		return zero
	case k == 1 || t == 0:
		return points[0]
	case t == 1:
		return points[k-1]
	case t < 0:
		// Derivative at t=0 is (k-1)·(P1 − P0)
		dir := points[1].Sub(points[0]).Scale(float64(k - 1))
		return points[0].Add(dir.Scale(t))
	case t > 1:
		// Derivative at t=1 is (k-1)·(Pn-1 − Pn-2)
		last := points[k-1]
		dir := last.Sub(points[k-2]).Scale(float64(k - 1))
		return last.Add(dir.Scale(t - 1))
	}

	copy(work, points)
	for n := k - 1; n > 0; n-- {
		for i := range n {
			work[i] = vmath.LerpV(work[i], work[i+1], t)
		}
	}
	return work[0]
}

// Sample returns n evenly spaced points along the curve including both ends
// n < 2 returns nil
func Sample[V vmath.Vector[V]](points []V, n int) []V {
	if n < 2 {
		return nil
	}
	return AppendSample(make([]V, 0, n), points, n)
}

// AppendSample appends n evenly spaced curve points to dst
// Reusing dst across frames keeps sampling allocation-free for short chains
func AppendSample[V vmath.Vector[V]](dst, points []V, n int) []V {
	if n < 2 {
		return dst
	}
	var buf [scratchSize]V
	work := scratch(buf[:], len(points))
	step := 1 / float64(n-1)
	for i := range n {
		t := float64(i) * step
		if i == n-1 {
			t = 1
		}
		dst = append(dst, evaluate(points, t, work))
	}
	return dst
}
