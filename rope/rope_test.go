package rope

import (
	"errors"
	"math"
	"testing"

	"github.com/lixenwraith/drape/physics"
	"github.com/lixenwraith/drape/vmath"
)

var gravity = vmath.V2(0, 0.6)

func mustNew(t testing.TB, start, end vmath.Vec2, segments int, rest float64, g vmath.Vec2, s Settings, iterations int) *Rope {
	t.Helper()
	r, err := New(start, end, segments, rest, g, s, iterations)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return r
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name       string
		segments   int
		rest       float64
		iterations int
		want       error
	}{
		{"zero segments", 0, 10, 12, ErrSegmentCount},
		{"negative segments", -3, 10, 12, ErrSegmentCount},
		{"negative rest", 4, -1, 12, ErrRestLength},
		{"nan rest", 4, math.NaN(), 12, ErrRestLength},
		{"zero iterations", 4, 10, 0, ErrIterations},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(vmath.V2(0, 0), vmath.V2(10, 0), tt.segments, tt.rest, gravity, Settings{}, tt.iterations)
			if !errors.Is(err, tt.want) {
				t.Errorf("error mismatch: got %v, want %v", err, tt.want)
			}
			if r != nil {
				t.Errorf("expected nil rope on error")
			}
		})
	}
}

func TestNew_Layout(t *testing.T) {
	r := mustNew(t, vmath.V2(0, 0), vmath.V2(100, 50), 4, 30, gravity, Settings{StartIsFixed: true, EndIsFixed: true}, 5)

	if r.Len() != 5 {
		t.Fatalf("particle count mismatch: got %d", r.Len())
	}
	if r.MaxLength() != 120 {
		t.Errorf("MaxLength mismatch: got %v", r.MaxLength())
	}
	want := []vmath.Vec2{{X: 0, Y: 0}, {X: 25, Y: 12.5}, {X: 50, Y: 25}, {X: 75, Y: 37.5}, {X: 100, Y: 50}}
	for i, p := range r.Positions() {
		if p != want[i] {
			t.Errorf("particle %d mismatch: got %v, want %v", i, p, want[i])
		}
	}
	first, _ := r.Particle(0)
	last, _ := r.Particle(4)
	mid, _ := r.Particle(2)
	if !first.Fixed || !last.Fixed || mid.Fixed {
		t.Errorf("fixed flags mismatch: %v %v %v", first.Fixed, mid.Fixed, last.Fixed)
	}
	if _, ok := r.Particle(5); ok {
		t.Error("out of range particle reported ok")
	}
}

func TestStep_FixedEndsInvariant(t *testing.T) {
	start, end := vmath.V2(10, 10), vmath.V2(210, 40)
	r := mustNew(t, start, end, 20, 12, gravity, Settings{
		StartIsFixed:  true,
		EndIsFixed:    true,
		RespondToWind: true,
	}, 12)

	for i := range 300 {
		r.Step(1, math.Sin(float64(i)*0.1)*3, nil)
	}
	if r.Start() != start {
		t.Errorf("start moved: got %v", r.Start())
	}
	if r.End() != end {
		t.Errorf("end moved: got %v", r.End())
	}
}

func TestStep_RestLengthConvergence(t *testing.T) {
	// Begin taut along one direction, then swing the fixed end to a point
	// closer than the total rest length; with no forces every segment
	// must relax back to its rest length
	r := mustNew(t, vmath.V2(0, 0), vmath.V2(60, 80), 10, 10, vmath.Vec2{}, Settings{
		StartIsFixed: true,
		EndIsFixed:   true,
	}, 12)
	r.SetEndTarget(vmath.V2(80, 0))

	for range 3000 {
		r.Step(1, 0, nil)
	}

	if r.End() != vmath.V2(80, 0) {
		t.Fatalf("end target not applied: got %v", r.End())
	}
	total := 0.0
	for i, l := range r.SegmentLengths() {
		if math.Abs(l-10) > 0.05 {
			t.Errorf("segment %d stuck at %v, want ~10", i, l)
		}
		total += l
	}
	if math.Abs(total-r.MaxLength()) > 0.2 {
		t.Errorf("total length %v, want ~%v", total, r.MaxLength())
	}
}

// maxDisplacement steps r once and returns the largest particle move
func maxDisplacement(r *Rope, prev []vmath.Vec2) ([]vmath.Vec2, float64) {
	r.Step(1, 0, nil)
	cur := r.Positions()
	worst := 0.0
	for i := range cur {
		worst = math.Max(worst, vmath.Distance2(prev[i], cur[i]))
	}
	return cur, worst
}

func TestStep_Settles(t *testing.T) {
	const segments = 24
	r := mustNew(t, vmath.V2(0, 0), vmath.V2(300, 0), segments, 300.0/segments, gravity, Settings{StartIsFixed: true}, 12)

	prev := r.Positions()
	windows := make([]float64, 5)
	for tick := range 1000 {
		var d float64
		prev, d = maxDisplacement(r, prev)
		w := tick / 200
		windows[w] = math.Max(windows[w], d)
	}

	for _, p := range prev {
		if !p.IsFinite() || vmath.Distance2(p, vmath.Vec2{}) > 600 {
			t.Fatalf("rope diverged: particle at %v", p)
		}
	}
	if windows[4] >= windows[0]*0.1 {
		t.Errorf("rope did not settle: window maxima %v", windows)
	}
	if windows[4] > windows[2] {
		t.Errorf("motion grew late in the run: window maxima %v", windows)
	}
}

func TestStep_HangingLanternScenario(t *testing.T) {
	start, end := vmath.V2(0, 0), vmath.V2(0, 200)
	rest := 200.0 / 24 * 1.3
	r := mustNew(t, start, end, 24, rest, gravity, Settings{StartIsFixed: true}, 12)

	endY := make([]float64, 0, 500)
	for range 500 {
		r.Step(1, 0, nil)
		endY = append(endY, r.End().Y)
	}

	got := r.End()
	if got.Y <= start.Y {
		t.Errorf("free end not below start: %v", got)
	}
	if math.Abs(got.X-start.X) > 1 {
		t.Errorf("free end not beneath start: %v", got)
	}
	// A hanging tail may straighten but never stretch past its rest length
	const tolerance = 1e-6
	dist := vmath.Distance2(start, got)
	if dist <= 0 || dist > r.MaxLength()+tolerance {
		t.Errorf("hanging distance %v outside (0, %v]", dist, r.MaxLength())
	}
	for i, l := range r.SegmentLengths() {
		if l > rest+tolerance {
			t.Errorf("segment %d stretched to %v, rest %v", i, l, rest)
		}
	}

	amplitude := func(ys []float64) float64 {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, y := range ys {
			lo, hi = math.Min(lo, y), math.Max(hi, y)
		}
		return hi - lo
	}
	early, late := amplitude(endY[200:300]), amplitude(endY[400:500])
	if late > early+1e-3 {
		t.Errorf("oscillation grew: early %v late %v", early, late)
	}
}

func TestStep_Wind(t *testing.T) {
	tests := []struct {
		name    string
		wind    float64
		respond bool
		sign    float64
	}{
		{"east", 1.5, true, 1},
		{"west", -1.5, true, -1},
		{"ignored", 1.5, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustNew(t, vmath.V2(0, 0), vmath.V2(0, 120), 12, 10, gravity, Settings{
				StartIsFixed:  true,
				RespondToWind: tt.respond,
			}, 12)
			for range 200 {
				r.Step(1, tt.wind, nil)
			}
			x := r.End().X
			switch {
			case tt.sign == 0 && x != 0:
				t.Errorf("rope drifted without wind response: %v", x)
			case tt.sign > 0 && x <= 1:
				t.Errorf("rope not pushed east: %v", x)
			case tt.sign < 0 && x >= -1:
				t.Errorf("rope not pushed west: %v", x)
			}
		})
	}
}

func TestStep_TerrainNonPenetration(t *testing.T) {
	// Floor surface at y=160; the rope starts taut and level at y=100 and
	// swings down onto it, its 120 length reaching well past the floor
	floor := physics.TerrainFunc(func(_, y int) bool { return y >= 10 })
	r := mustNew(t, vmath.V2(40, 100), vmath.V2(160, 100), 12, 10, gravity, Settings{
		StartIsFixed:            true,
		RespondToEntityMovement: true,
		TileColliderArea:        vmath.V2(physics.TileSize, physics.TileSize),
	}, 12)

	for tick := range 400 {
		r.Step(1, 0, floor)
		for i, p := range r.Positions() {
			if tx, ty := physics.TileAt(p); floor.IsSolid(tx, ty) {
				t.Fatalf("tick %d: particle %d inside terrain at %v", tick, i, p)
			}
		}
	}
	// Resting on the floor: footprint bottom flush with y=160
	if got := r.End().Y; math.Abs(got-(160-physics.TileSize/2)) > 0.5 {
		t.Errorf("rope end not resting on the floor: end %v", r.End())
	}
}

func TestStep_CollisionDisabled(t *testing.T) {
	floor := physics.TerrainFunc(func(_, y int) bool { return y >= 10 })
	r := mustNew(t, vmath.V2(40, 100), vmath.V2(40, 220), 12, 10, gravity, Settings{StartIsFixed: true}, 12)
	for range 400 {
		r.Step(1, 0, floor)
	}
	if r.End().Y <= 200 {
		t.Errorf("rope collided with collision disabled: end %v", r.End())
	}
}

func TestStep_TightenFollowsFixedEnd(t *testing.T) {
	tests := []struct {
		name     string
		from, to vmath.Vec2
		settings Settings
		fixed    func(r *Rope) vmath.Vec2
	}{
		{"start fixed", vmath.V2(0, 0), vmath.V2(0, 80), Settings{StartIsFixed: true}, (*Rope).Start},
		// Built upside down so the free start hangs below the fixed end
		{"end fixed", vmath.V2(0, 160), vmath.V2(0, 80), Settings{EndIsFixed: true}, (*Rope).End},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustNew(t, tt.from, tt.to, 8, 10, vmath.V2(0, 2), tt.settings, 2)
			anchor := tt.fixed(r)
			for range 200 {
				r.Step(1, 0, nil)
			}
			for i, l := range r.SegmentLengths() {
				if l > 10+1e-9 {
					t.Errorf("segment %d stretched to %v", i, l)
				}
			}
			if got := tt.fixed(r); got != anchor {
				t.Errorf("fixed end moved: got %v, want %v", got, anchor)
			}
		})
	}
}

func TestSetEndTarget(t *testing.T) {
	fixedEnd := mustNew(t, vmath.V2(0, 0), vmath.V2(50, 0), 5, 10, vmath.Vec2{}, Settings{StartIsFixed: true, EndIsFixed: true}, 4)
	if !fixedEnd.SetEndTarget(vmath.V2(40, 10)) {
		t.Fatal("fixed end refused its target")
	}
	if fixedEnd.End() != vmath.V2(50, 0) {
		t.Errorf("target applied before Step: %v", fixedEnd.End())
	}
	fixedEnd.Step(1, 0, nil)
	if fixedEnd.End() != vmath.V2(40, 10) {
		t.Errorf("target not applied: %v", fixedEnd.End())
	}

	freeEnd := mustNew(t, vmath.V2(0, 0), vmath.V2(50, 0), 5, 10, vmath.Vec2{}, Settings{StartIsFixed: true}, 4)
	if freeEnd.SetEndTarget(vmath.V2(400, 400)) {
		t.Error("free end accepted a target")
	}
	if fixedEnd.SetEndTarget(vmath.V2(math.NaN(), 0)) {
		t.Error("non-finite target accepted")
	}
	freeEnd.Step(1, 0, nil)
	if vmath.Distance2(freeEnd.End(), vmath.V2(400, 400)) < 100 {
		t.Errorf("free end teleported to target: %v", freeEnd.End())
	}

	fixedEnd.SetStart(vmath.V2(-5, 0))
	if fixedEnd.Start() != vmath.V2(-5, 0) {
		t.Errorf("SetStart mismatch: %v", fixedEnd.Start())
	}
}

func TestDispose_Idempotent(t *testing.T) {
	r := mustNew(t, vmath.V2(0, 0), vmath.V2(50, 0), 5, 10, gravity, Settings{StartIsFixed: true}, 4)
	r.Dispose()
	r.Dispose()

	if !r.Disposed() {
		t.Fatal("Disposed should report true")
	}
	r.Step(1, 1, nil)
	r.SetEndTarget(vmath.V2(1, 1))
	r.SetStart(vmath.V2(1, 1))
	if n := len(r.Positions()); n != 0 {
		t.Errorf("disposed rope exposes %d positions", n)
	}
	if r.End() != (vmath.Vec2{}) || r.Len() != 0 {
		t.Errorf("disposed rope state leaked: end %v len %d", r.End(), r.Len())
	}
}

func TestSagHelpers(t *testing.T) {
	if got := MaxLengthForSag(200, 0.3); got != 260 {
		t.Errorf("MaxLengthForSag mismatch: got %v", got)
	}
	if got := MaxLengthForSag(200, -1); got != 200 {
		t.Errorf("negative sag mismatch: got %v", got)
	}
	if got := SegmentLength(200, 0.2, 24); math.Abs(got-10) > 1e-12 {
		t.Errorf("SegmentLength mismatch: got %v", got)
	}
	if got := SegmentLength(200, 0.2, 0); got != 0 {
		t.Errorf("SegmentLength zero segments mismatch: got %v", got)
	}
	if got := ClampToLength(vmath.V2(0, 0), vmath.V2(30, 40), 10); got != vmath.V2(6, 8) {
		t.Errorf("ClampToLength mismatch: got %v", got)
	}
	if got := ClampToLength(vmath.V2(0, 0), vmath.V2(3, 4), 10); got != vmath.V2(3, 4) {
		t.Errorf("ClampToLength short mismatch: got %v", got)
	}
}

func TestParams(t *testing.T) {
	r := mustNew(t, vmath.V2(1, 2), vmath.V2(101, 2), 10, 13, gravity, Settings{StartIsFixed: true, EndIsFixed: true}, 4)
	p := r.Params(0.3)
	if p.Start != vmath.V2(1, 2) || p.End != vmath.V2(101, 2) || p.Sag != 0.3 || p.MaxLength != 130 || p.Segments != 10 {
		t.Errorf("Params mismatch: %+v", p)
	}
}

func BenchmarkRopeStep(b *testing.B) {
	r := mustNew(b, vmath.V2(0, 0), vmath.V2(0, 200), 24, 200.0/24*1.3, gravity, Settings{
		StartIsFixed:  true,
		RespondToWind: true,
	}, 12)
	for b.Loop() {
		r.Step(1, 0.5, nil)
	}
}
