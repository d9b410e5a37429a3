package wind

import (
	"math"
	"testing"
)

func TestField_Deterministic(t *testing.T) {
	a := NewField(42, 0.5, 1)
	b := NewField(42, 0.5, 1)

	for range 100 {
		a.Advance(0.1)
		b.Advance(0.1)
		if a.Scalar() != b.Scalar() {
			t.Fatalf("same seed diverged at t=%v: %v vs %v", a.Time(), a.Scalar(), b.Scalar())
		}
	}
}

func TestField_NoGustIsConstant(t *testing.T) {
	f := NewField(7, 0.8, 0)
	for range 50 {
		f.Advance(0.3)
		if f.Scalar() != 0.8 {
			t.Fatalf("scalar mismatch: got %v, want 0.8", f.Scalar())
		}
	}
}

func TestField_BoundedAndSmooth(t *testing.T) {
	const base, gust = 0.2, 1.5
	f := NewField(3, base, gust)

	prev := f.Scalar()
	for range 2000 {
		f.Advance(1.0 / 60)
		v := f.Scalar()
		if math.IsNaN(v) || math.Abs(v-base) > gust*2 {
			t.Fatalf("scalar out of range: %v", v)
		}
		if math.Abs(v-prev) > 0.1 {
			t.Fatalf("scalar jumped between ticks: %v -> %v", prev, v)
		}
		prev = v
	}
}

func TestField_Advance(t *testing.T) {
	f := NewField(1, 0, 1)
	f.Advance(-1)
	f.Advance(math.NaN())
	f.Advance(math.Inf(1))
	if f.Time() != 0 {
		t.Errorf("invalid dt advanced time to %v", f.Time())
	}
	f.Advance(2)
	if f.Time() != 2 {
		t.Errorf("time mismatch: got %v", f.Time())
	}
	if f.At(2) != f.Scalar() {
		t.Error("At(time) differs from Scalar")
	}
}

func TestNewField_Sanitises(t *testing.T) {
	f := NewField(1, math.NaN(), -2)
	if f.Base() != 0 {
		t.Errorf("NaN base not replaced: %v", f.Base())
	}
	if f.Gust() != 2 {
		t.Errorf("negative gust not mirrored: %v", f.Gust())
	}

	f.SetRate(-1)
	f.SetRate(math.Inf(1))
	f.SetRate(0.5)
	if f.rate != 0.5 {
		t.Errorf("rate mismatch: got %v", f.rate)
	}
}
