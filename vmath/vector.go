package vmath

import (
	"math"
)

// Vector is the value-type contract shared by Vec2 and Vec3F
// Particle and constraint code is written once against it
type Vector[V any] interface {
	Add(V) V
	Sub(V) V
	Scale(float64) V
	Dot(V) float64
	LenSq() float64
	Len() float64
	IsFinite() bool
}

var (
	_ Vector[Vec2]  = Vec2{}
	_ Vector[Vec3F] = Vec3F{}
)

// IsFinite reports whether f is neither NaN nor ±Inf
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Lerp returns a + (b-a)*t, t is not clamped
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpV interpolates any Vector, t is not clamped
func LerpV[V Vector[V]](a, b V, t float64) V {
	return a.Add(b.Sub(a).Scale(t))
}

// InverseLerp returns where x sits between from and to, clamped to [0,1]
// from > to is allowed and inverts the ramp
func InverseLerp(from, to, x float64) float64 {
	if from == to {
		if x < from {
			return 0
		}
		return 1
	}
	return Clamp01((x - from) / (to - from))
}

func Clamp01(f float64) float64 {
	return Clamp(f, 0, 1)
}

func Clamp(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

// Tent01 maps [0,1] to a tent: 0→0, 0.5→1, 1→0
func Tent01(f float64) float64 {
	return 1 - math.Abs(Clamp01(f)*2-1)
}

// SmoothStep eases from a to b with a cubic Hermite curve, t clamped to [0,1]
func SmoothStep(a, b, t float64) float64 {
	t = Clamp01(t)
	return a + (b-a)*t*t*(3-2*t)
}
