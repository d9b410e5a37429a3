package rope

import (
	"github.com/lixenwraith/drape/vmath"
)

// MaxLengthForSag returns the natural rope length for endpoints distance
// apart hanging with the given sag factor (0.3 = 30% longer than taut)
// Negative sag is treated as taut
func MaxLengthForSag(distance, sag float64) float64 {
	if sag < 0 {
		sag = 0
	}
	return distance * (1 + sag)
}

// SegmentLength splits the sagged length evenly across segments
func SegmentLength(distance, sag float64, segments int) float64 {
	if segments < 1 {
		return 0
	}
	return MaxLengthForSag(distance, sag) / float64(segments)
}

// ClampToLength pulls end back toward start so it stays within maxLength
func ClampToLength(start, end vmath.Vec2, maxLength float64) vmath.Vec2 {
	return start.Add(vmath.ClampLength(end.Sub(start), maxLength))
}

// Params is the plain numeric state an owner persists to rebuild a rope
// Particle positions are never stored, the rope is re-simulated from these
type Params struct {
	Start     vmath.Vec2 `toml:"start"`
	End       vmath.Vec2 `toml:"end"`
	Sag       float64    `toml:"sag"`
	MaxLength float64    `toml:"max_length"`
	Segments  int        `toml:"segments,omitempty"`
	Direction int        `toml:"direction,omitempty"`
}

// Params captures the rope's current anchors with the owner-supplied sag
func (r *Rope) Params(sag float64) Params {
	return Params{
		Start:     r.Start(),
		End:       r.End(),
		Sag:       sag,
		MaxLength: r.maxLength,
		Segments:  len(r.constraints),
	}
}
