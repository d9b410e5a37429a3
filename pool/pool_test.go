package pool

import (
	"errors"
	"testing"

	"github.com/lixenwraith/drape/rope"
	"github.com/lixenwraith/drape/vmath"
)

var hanging = rope.Settings{StartIsFixed: true, RespondToWind: true}

// staleRecorder counts stale handle reports instead of panicking or logging
type staleRecorder struct {
	ops []string
}

func (r *staleRecorder) handle(_ Handle, op string) {
	r.ops = append(r.ops, op)
}

func newManager(t *testing.T) (*Manager, *staleRecorder) {
	t.Helper()
	m := New()
	rec := &staleRecorder{}
	m.SetStaleHandler(rec.handle)
	return m, rec
}

func request(t *testing.T, m *Manager, x float64) Handle {
	t.Helper()
	h, err := m.RequestNew(vmath.V2(x, 0), vmath.V2(x, 100), 10, 10, vmath.V2(0, 0.6), hanging, 8)
	if err != nil {
		t.Fatalf("RequestNew failed: %v", err)
	}
	return h
}

func TestRequestNew_Validation(t *testing.T) {
	m, _ := newManager(t)
	h, err := m.RequestNew(vmath.V2(0, 0), vmath.V2(10, 0), 0, 10, vmath.Vec2{}, hanging, 8)
	if !errors.Is(err, rope.ErrSegmentCount) {
		t.Errorf("expected ErrSegmentCount, got %v", err)
	}
	if !h.IsZero() || m.Len() != 0 || m.Cap() != 0 {
		t.Error("failed request must not occupy a slot")
	}
}

func TestZeroHandleInvalid(t *testing.T) {
	m, rec := newManager(t)
	request(t, m, 0)

	var zero Handle
	if m.Valid(zero) {
		t.Error("zero handle reported valid")
	}
	if m.Step(zero, 1, 0, nil) {
		t.Error("step on zero handle succeeded")
	}
	if len(rec.ops) != 1 || rec.ops[0] != "step" {
		t.Errorf("stale report mismatch: got %v", rec.ops)
	}
}

func TestRemove_StaleAfterReuse(t *testing.T) {
	m, rec := newManager(t)
	a := request(t, m, 0)
	b := request(t, m, 50)

	ra, _ := m.Rope(a)
	if !m.Remove(a) {
		t.Fatal("remove failed")
	}
	if !ra.Disposed() {
		t.Error("removed rope not disposed")
	}

	// LIFO reuse puts c in a's slot with a new generation
	c := request(t, m, 200)
	if c.index != a.index {
		t.Errorf("slot not reused: got %d, want %d", c.index, a.index)
	}
	if c == a {
		t.Fatal("reused slot issued an identical handle")
	}

	if m.Valid(a) {
		t.Error("stale handle reported valid")
	}
	if _, ok := m.Positions(a); ok {
		t.Error("stale handle resolved positions")
	}
	if m.SetEndTarget(a, vmath.V2(1, 1)) {
		t.Error("stale handle accepted end target")
	}
	if m.Remove(a) {
		t.Error("double remove succeeded")
	}
	if len(rec.ops) != 3 {
		t.Errorf("expected 3 stale reports, got %v", rec.ops)
	}

	pos, ok := m.Positions(c)
	if !ok || pos[0].X != 200 {
		t.Errorf("new handle resolves wrong rope: %v %v", pos, ok)
	}
	if !m.Valid(b) {
		t.Error("untouched handle invalidated")
	}
	if m.Len() != 2 || m.Cap() != 2 {
		t.Errorf("count mismatch: len %d cap %d", m.Len(), m.Cap())
	}
}

func TestUpdateAll_SkipsFreeSlots(t *testing.T) {
	m, rec := newManager(t)
	a := request(t, m, 0)
	b := request(t, m, 50)
	m.Remove(a)

	before, _ := m.Positions(b)
	for range 10 {
		m.UpdateAll(1, 0, nil)
	}
	after, _ := m.Positions(b)
	if after[len(after)-1] == before[len(before)-1] {
		t.Error("live rope did not move under gravity")
	}
	if len(rec.ops) != 0 {
		t.Errorf("unexpected stale reports: %v", rec.ops)
	}
}

func TestStep_MatchesDirectRope(t *testing.T) {
	m, _ := newManager(t)
	h := request(t, m, 0)
	direct, err := rope.New(vmath.V2(0, 0), vmath.V2(0, 100), 10, 10, vmath.V2(0, 0.6), hanging, 8)
	if err != nil {
		t.Fatal(err)
	}

	for range 25 {
		m.Step(h, 1, 0.5, nil)
		direct.Step(1, 0.5, nil)
	}
	pooled, _ := m.Positions(h)
	for i, p := range direct.Positions() {
		if pooled[i] != p {
			t.Fatalf("particle %d diverged: pooled %v direct %v", i, pooled[i], p)
		}
	}
}

func TestSetStart(t *testing.T) {
	m, _ := newManager(t)
	h := request(t, m, 0)
	if !m.SetStart(h, vmath.V2(30, 5)) {
		t.Fatal("SetStart failed")
	}
	r, _ := m.Rope(h)
	if r.Start() != vmath.V2(30, 5) {
		t.Errorf("start mismatch: got %v", r.Start())
	}
}

func TestSetEndTarget_FreeEndRefused(t *testing.T) {
	m, rec := newManager(t)
	free := request(t, m, 0)
	if m.SetEndTarget(free, vmath.V2(5, 50)) {
		t.Error("free end accepted a target")
	}
	if len(rec.ops) != 0 {
		t.Errorf("refused target reported as stale: %v", rec.ops)
	}

	pinned, err := m.RequestNew(vmath.V2(0, 0), vmath.V2(100, 0), 10, 12, vmath.V2(0, 0.6), rope.Settings{StartIsFixed: true, EndIsFixed: true}, 8)
	if err != nil {
		t.Fatalf("RequestNew failed: %v", err)
	}
	if !m.SetEndTarget(pinned, vmath.V2(90, 10)) {
		t.Fatal("fixed end refused its target")
	}
	m.Step(pinned, 1, 0, nil)
	r, _ := m.Rope(pinned)
	if r.End() != vmath.V2(90, 10) {
		t.Errorf("end target not applied: got %v", r.End())
	}
}

func TestClear(t *testing.T) {
	m, _ := newManager(t)
	hs := []Handle{request(t, m, 0), request(t, m, 1), request(t, m, 2)}
	m.Clear()

	if m.Len() != 0 {
		t.Errorf("len after clear: got %d", m.Len())
	}
	for _, h := range hs {
		if m.Valid(h) {
			t.Errorf("%s valid after clear", h)
		}
	}
	if h := request(t, m, 3); h.index != 2 {
		t.Errorf("LIFO reuse mismatch after clear: got index %d", h.index)
	}
}

func TestDefaultStaleHandler(t *testing.T) {
	m := New()
	h := request(t, m, 0)
	m.Remove(h)

	defer func() {
		r := recover()
		if StrictHandles && r == nil {
			t.Error("strict build did not panic on stale handle")
		}
		if !StrictHandles && r != nil {
			t.Errorf("release build panicked: %v", r)
		}
	}()
	m.Step(h, 1, 0, nil)
}

func BenchmarkUpdateAll(b *testing.B) {
	m := New()
	for i := range 64 {
		if _, err := m.RequestNew(vmath.V2(float64(i)*20, 0), vmath.V2(float64(i)*20, 120), 24, 5, vmath.V2(0, 0.6), hanging, 12); err != nil {
			b.Fatal(err)
		}
	}
	for b.Loop() {
		m.UpdateAll(1, 0.3, nil)
	}
}
