// Package pool owns live ropes behind generational handles
// A handle outlives its rope safely: once released, it never resolves again
package pool

import (
	"fmt"
	"log"

	"github.com/lixenwraith/drape/physics"
	"github.com/lixenwraith/drape/rope"
	"github.com/lixenwraith/drape/vmath"
)

// Handle addresses a rope in a Manager
// The zero Handle is never valid
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h was never issued
func (h Handle) IsZero() bool {
	return h.gen == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("rope#%d.%d", h.index, h.gen)
}

// StaleHandler is called with the offending handle and the operation name
type StaleHandler func(h Handle, op string)

type slot struct {
	rope     *rope.Rope
	gen      uint32
	occupied bool
}

// Manager is a slot arena of ropes with a LIFO free list
// Not safe for concurrent use: all calls belong to the simulation goroutine
type Manager struct {
	slots []slot
	free  []uint32
	live  int
	stale StaleHandler
}

// New creates an empty manager using the build's default stale policy
func New() *Manager {
	return &Manager{
		slots: make([]slot, 0, 16),
		stale: defaultStaleHandler,
	}
}

// defaultStaleHandler panics under the drapedebug tag and logs otherwise
func defaultStaleHandler(h Handle, op string) {
	if StrictHandles {
		panic(fmt.Sprintf("pool: %s on stale handle %s", op, h))
	}
	log.Printf("pool: %s on stale handle %s", op, h)
}

// SetStaleHandler replaces the stale handle policy, nil restores the default
func (m *Manager) SetStaleHandler(fn StaleHandler) {
	if fn == nil {
		fn = defaultStaleHandler
	}
	m.stale = fn
}

// RequestNew builds a rope and stores it, reusing the most recently freed slot
func (m *Manager) RequestNew(start, end vmath.Vec2, segments int, restLength float64, gravity vmath.Vec2, settings rope.Settings, iterations int) (Handle, error) {
	r, err := rope.New(start, end, segments, restLength, gravity, settings, iterations)
	if err != nil {
		return Handle{}, fmt.Errorf("pool: request: %w", err)
	}

	var idx uint32
	if n := len(m.free); n > 0 {
		idx = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		idx = uint32(len(m.slots))
		m.slots = append(m.slots, slot{gen: 1})
	}

	s := &m.slots[idx]
	s.rope = r
	s.occupied = true
	m.live++
	return Handle{index: idx, gen: s.gen}, nil
}

// lookup resolves h or reports it through the stale handler
func (m *Manager) lookup(h Handle, op string) (*slot, bool) {
	if h.gen == 0 || int(h.index) >= len(m.slots) {
		m.stale(h, op)
		return nil, false
	}
	s := &m.slots[h.index]
	if !s.occupied || s.gen != h.gen {
		m.stale(h, op)
		return nil, false
	}
	return s, true
}

// Valid reports whether h addresses a live rope, without invoking the stale handler
func (m *Manager) Valid(h Handle) bool {
	if h.gen == 0 || int(h.index) >= len(m.slots) {
		return false
	}
	s := &m.slots[h.index]
	return s.occupied && s.gen == h.gen
}

// Step advances one rope
func (m *Manager) Step(h Handle, dt, wind float64, sampler physics.TerrainSampler) bool {
	s, ok := m.lookup(h, "step")
	if !ok {
		return false
	}
	s.rope.Step(dt, wind, sampler)
	return true
}

// UpdateAll steps every live rope in slot order
func (m *Manager) UpdateAll(dt, wind float64, sampler physics.TerrainSampler) {
	for i := range m.slots {
		if s := &m.slots[i]; s.occupied {
			s.rope.Step(dt, wind, sampler)
		}
	}
}

// Remove disposes the rope and invalidates every copy of h
func (m *Manager) Remove(h Handle) bool {
	s, ok := m.lookup(h, "remove")
	if !ok {
		return false
	}
	s.rope.Dispose()
	s.rope = nil
	s.occupied = false
	s.gen++
	if s.gen == 0 {
		// Wrapped: skip the reserved zero generation
		s.gen = 1
	}
	m.free = append(m.free, h.index)
	m.live--
	return true
}

// Rope returns the live rope for h
// The pointer must not be retained past Remove
func (m *Manager) Rope(h Handle) (*rope.Rope, bool) {
	s, ok := m.lookup(h, "rope")
	if !ok {
		return nil, false
	}
	return s.rope, true
}

// Positions returns a copy of the rope's particle positions
func (m *Manager) Positions(h Handle) ([]vmath.Vec2, bool) {
	s, ok := m.lookup(h, "positions")
	if !ok {
		return nil, false
	}
	return s.rope.Positions(), true
}

// SetEndTarget queues an end anchor move for the next step
// Returns false for a stale handle or when the rope refuses the target
func (m *Manager) SetEndTarget(h Handle, p vmath.Vec2) bool {
	s, ok := m.lookup(h, "set end target")
	if !ok {
		return false
	}
	return s.rope.SetEndTarget(p)
}

// SetStart moves the start anchor immediately
func (m *Manager) SetStart(h Handle, p vmath.Vec2) bool {
	s, ok := m.lookup(h, "set start")
	if !ok {
		return false
	}
	s.rope.SetStart(p)
	return true
}

// Len returns the number of live ropes
func (m *Manager) Len() int {
	return m.live
}

// Cap returns the number of slots, live or free
func (m *Manager) Cap() int {
	return len(m.slots)
}

// Clear disposes every live rope and invalidates all outstanding handles
func (m *Manager) Clear() {
	for i := range m.slots {
		s := &m.slots[i]
		if !s.occupied {
			continue
		}
		m.Remove(Handle{index: uint32(i), gen: s.gen})
	}
}
