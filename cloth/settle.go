package cloth

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// settleCheckInterval is how many steps run between cancellation checks
const settleCheckInterval = 16

var (
	ErrSettleCancelled = errors.New("settle cancelled")
	ErrNotStarted      = errors.New("settle not started")
)

// StepFunc advances a cloth by one simulation step during settling
type StepFunc func(*Cloth)

// Settler pre-relaxes one cloth on a background goroutine before it is
// exposed to the interactive loop
// The cloth is owned by the settler until Ready reports true; readers get
// nil from Cloth until then and never observe partially settled state
type Settler struct {
	cloth *Cloth
	steps int
	step  StepFunc

	started   atomic.Bool
	ready     atomic.Bool
	cancelled atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewSettler prepares a settle pass of steps calls to step
// A nil step defaults to Simulate(DefaultStepDt, false, DefaultGravity)
func NewSettler(c *Cloth, steps int, step StepFunc) *Settler {
	if step == nil {
		step = func(c *Cloth) { c.Simulate(DefaultStepDt, false, DefaultGravity) }
	}
	return &Settler{
		cloth: c,
		steps: steps,
		step:  step,
		done:  make(chan struct{}),
	}
}

// Start launches the settle goroutine, later calls are no-ops
// The pass stops early when ctx is cancelled or Cancel is called
func (s *Settler) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	if s.cancelled.Load() {
		cancel()
	}

	go func() {
		defer close(s.done)
		defer cancel()

		err := s.run(ctx)

		s.mu.Lock()
		s.err = err
		s.mu.Unlock()

		if err == nil {
			s.ready.Store(true)
		}
	}()
}

// run executes the settle loop, recovering panics into an error
func (s *Settler) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cloth: settle panic: %v\n%s", r, debug.Stack())
		}
	}()

	for i := range s.steps {
		if i%settleCheckInterval == 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("cloth: %w after %d/%d steps: %w", ErrSettleCancelled, i, s.steps, ctxErr)
			}
		}
		s.step(s.cloth)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("cloth: %w after %d/%d steps: %w", ErrSettleCancelled, s.steps, s.steps, ctxErr)
	}
	return nil
}

// Cancel abandons an in-flight settle, safe to call at any time
// The goroutine stops at its next check and never touches the cloth again
func (s *Settler) Cancel() {
	s.cancelled.Store(true)
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the settle goroutine exits and returns its result
func (s *Settler) Wait() error {
	if !s.started.Load() {
		return ErrNotStarted
	}
	<-s.done
	return s.Err()
}

// Done is closed when the settle goroutine exits
func (s *Settler) Done() <-chan struct{} {
	return s.done
}

// Ready reports whether the full settle pass completed
func (s *Settler) Ready() bool {
	return s.ready.Load()
}

// Err returns the settle result, nil while running or on success
func (s *Settler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cloth returns the settled cloth, or nil until Ready
func (s *Settler) Cloth() *Cloth {
	if !s.ready.Load() {
		return nil
	}
	return s.cloth
}
