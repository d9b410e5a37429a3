package vmath

import (
	"math"
)

// Vec2 is a float64 2D vector used for rope particles and world positions
type Vec2 struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
}

// V2 is shorthand for Vec2{x, y}
func V2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// LenSq returns squared magnitude without sqrt
func (v Vec2) LenSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Len() float64 {
	return math.Sqrt(v.LenSq())
}

// IsFinite reports whether neither component is NaN or Inf
func (v Vec2) IsFinite() bool {
	return IsFinite(v.X) && IsFinite(v.Y)
}

// Normalize returns the unit vector, zero-safe
func (v Vec2) Normalize() Vec2 {
	mag := v.Len()
	if mag == 0 {
		return Vec2{}
	}
	inv := 1.0 / mag
	return Vec2{v.X * inv, v.Y * inv}
}

// Perpendicular returns vector rotated 90° counter-clockwise
func (v Vec2) Perpendicular() Vec2 {
	return Vec2{-v.Y, v.X}
}

// Distance2 returns the Euclidean distance between a and b
func Distance2(a, b Vec2) float64 {
	return b.Sub(a).Len()
}

// WithinRange reports whether b lies within r of a
func WithinRange(a, b Vec2, r float64) bool {
	return b.Sub(a).LenSq() <= r*r
}

// ClampLength limits v to maxLen while preserving direction
// Returns unchanged vector if length <= maxLen
func ClampLength(v Vec2, maxLen float64) Vec2 {
	mag := v.Len()
	if mag <= maxLen || mag == 0 {
		return v
	}
	return v.Scale(maxLen / mag)
}

// AngleTo returns the angle in radians of the direction from a to b
func AngleTo(a, b Vec2) float64 {
	d := b.Sub(a)
	return math.Atan2(d.Y, d.X)
}
