package vmath

import (
	"math"
)

// Vec3F is a float64 3D vector for cloth particles
// Z carries the depth offset of the pinned edge, it is not rendered
type Vec3F struct {
	X, Y, Z float64
}

func (v Vec3F) Add(o Vec3F) Vec3F {
	return Vec3F{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3F) Sub(o Vec3F) Vec3F {
	return Vec3F{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3F) Scale(s float64) Vec3F {
	return Vec3F{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3F) Dot(o Vec3F) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3F) LenSq() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func (v Vec3F) Len() float64 {
	return math.Sqrt(v.LenSq())
}

func (v Vec3F) IsFinite() bool {
	return IsFinite(v.X) && IsFinite(v.Y) && IsFinite(v.Z)
}

// XY drops depth, projecting onto the world plane
func (v Vec3F) XY() Vec2 {
	return Vec2{v.X, v.Y}
}

func V3FAdd(a, b Vec3F) Vec3F {
	return a.Add(b)
}

func V3FSub(a, b Vec3F) Vec3F {
	return a.Sub(b)
}

func V3FScale(v Vec3F, s float64) Vec3F {
	return v.Scale(s)
}

func V3FMag(v Vec3F) float64 {
	return v.Len()
}

func V3FNormalize(v Vec3F) Vec3F {
	mag := V3FMag(v)
	if mag == 0 {
		return Vec3F{}
	}
	inv := 1.0 / mag
	return Vec3F{v.X * inv, v.Y * inv, v.Z * inv}
}

// V3FFrom2 lifts a planar vector to 3D with the given depth
func V3FFrom2(v Vec2, z float64) Vec3F {
	return Vec3F{v.X, v.Y, z}
}
