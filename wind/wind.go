// Package wind produces a smoothed scalar wind signal for rope sway
package wind

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// Noise shape: alpha weights octave falloff, beta the frequency step
const (
	noiseAlpha   = 2.0
	noiseBeta    = 2.0
	noiseOctaves = 3
)

// DefaultRate is how fast the noise is traversed per second of simulation
const DefaultRate = 0.25

// Field is a one-dimensional gust generator
// Scalar = base + gust × noise(time × rate), already smooth between ticks
type Field struct {
	noise *perlin.Perlin
	base  float64
	gust  float64
	rate  float64
	time  float64
}

// NewField creates a field with a deterministic noise seed
func NewField(seed int64, base, gust float64) *Field {
	return &Field{
		noise: perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed),
		base:  finiteOr(base, 0),
		gust:  finiteOr(math.Abs(gust), 0),
		rate:  DefaultRate,
	}
}

func finiteOr(f, fallback float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}

// SetRate changes the traversal speed, non-positive values are ignored
func (f *Field) SetRate(rate float64) {
	if rate > 0 && !math.IsInf(rate, 0) {
		f.rate = rate
	}
}

// Advance moves the field forward by dt seconds
func (f *Field) Advance(dt float64) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return
	}
	f.time += dt
}

// Scalar returns the current wind value
func (f *Field) Scalar() float64 {
	return f.At(f.time)
}

// At samples the field at an arbitrary time without advancing it
func (f *Field) At(t float64) float64 {
	v := f.base + f.gust*f.noise.Noise1D(t*f.rate)
	return finiteOr(v, f.base)
}

// Time returns the accumulated field time
func (f *Field) Time() float64 {
	return f.time
}

func (f *Field) Base() float64 {
	return f.base
}

func (f *Field) Gust() float64 {
	return f.gust
}
