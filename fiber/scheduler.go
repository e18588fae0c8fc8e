package fiber

import (
	"errors"
	"sync"

	"github.com/andres-erbsen/clock"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/thanhhungg97/flowrt/ctxslot"
)

// Stats is a snapshot of running counters a demo or operator can read
// without instrumenting the dispatch loop itself.
type Stats struct {
	FibersCreated   int64
	FibersCompleted int64
	ContextSwitches int64
	TotalYields     int64
}

// Scheduler owns a ready list of fibers and drives a round-robin dispatch
// loop over them. A scheduler is conceptually pinned to one host thread,
// but the ready list is still guarded by a lock since fibers spawned from
// within the scheduler mutate it too.
type Scheduler struct {
	mu    sync.Mutex
	ready []*Fiber
	pos   int

	terminated  atomic.Bool
	dispatching atomic.Bool

	created   atomic.Int64
	completed atomic.Int64
	switches  atomic.Int64
	yields    atomic.Int64

	clock  clock.Clock
	logger *zap.Logger
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithClock injects a fake clock for deterministic Condition.WaitTimeout
// tests, following the pattern uber/kraken's scheduler uses
// andres-erbsen/clock for the same reason.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLogger attaches a structured logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// NewScheduler constructs a fiber scheduler with an empty ready list.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Start creates the first fiber wrapping task and enters the dispatch loop,
// returning when the loop exits. A re-entrant call made from a fiber
// already being dispatched by s is a no-op.
func (s *Scheduler) Start(task func() error) error {
	if !s.dispatching.CompareAndSwap(false, true) {
		return nil
	}
	defer s.dispatching.Store(false)

	prevSched, hadPrev := ctxslot.CurrentScheduler()
	ctxslot.SetCurrentScheduler(s)
	if hadPrev {
		defer ctxslot.SetCurrentScheduler(prevSched)
	}

	first := s.newFiberLocked("root", 0, task)
	s.appendReady(first)

	return s.dispatchLoop()
}

// Spawn creates a new fiber for task, appends it to the ready list, then
// yields so the new fiber gets a prompt chance to begin.
func (s *Scheduler) Spawn(name string, task func() error) *Fiber {
	return s.SpawnStack(name, 0, task)
}

// SpawnStack is Spawn with an explicit stack-size hint, kept for interface
// parity with callers that want to pass one (a no-op on this backend).
func (s *Scheduler) SpawnStack(name string, stackSize int, task func() error) *Fiber {
	f := s.newFiberLocked(name, stackSize, task)
	s.appendReady(f)
	Yield()
	return f
}

// Stop sets the terminated flag; the dispatcher observes it between
// iterations and exits without resuming remaining fibers.
func (s *Scheduler) Stop() {
	s.terminated.Store(true)
}

// NewCondition constructs a fiber condition. With no mutex supplied, the
// condition guards its flag with the scheduler's own ready-list lock.
func (s *Scheduler) NewCondition(mu ...*sync.Mutex) *Condition {
	m := &s.mu
	if len(mu) > 0 && mu[0] != nil {
		m = mu[0]
	}
	return newCondition(m, s.clock)
}

// Stats returns a snapshot of the scheduler's running counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		FibersCreated:   s.created.Load(),
		FibersCompleted: s.completed.Load(),
		ContextSwitches: s.switches.Load(),
		TotalYields:     s.yields.Load(),
	}
}

// FiberCount returns the number of fibers currently in the ready list.
func (s *Scheduler) FiberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ready)
}

func (s *Scheduler) newFiberLocked(name string, stackSize int, task func() error) *Fiber {
	s.created.Inc()
	return newFiber(s, name, stackSize, task)
}

func (s *Scheduler) appendReady(f *Fiber) {
	s.mu.Lock()
	s.ready = append(s.ready, f)
	s.mu.Unlock()
}

// dispatchLoop resumes the fiber at the current position, advances past it
// or removes it once it terminates, and repeats until the ready list is
// empty or the scheduler is stopped.
func (s *Scheduler) dispatchLoop() error {
	for {
		s.mu.Lock()
		if s.terminated.Load() || len(s.ready) == 0 {
			s.mu.Unlock()
			return nil
		}
		if s.pos >= len(s.ready) {
			s.pos = 0
		}
		current := s.ready[s.pos]
		s.mu.Unlock()

		err := current.Resume()
		s.switches.Inc()

		if err != nil {
			if errors.Is(err, ErrOwnerTerminated) {
				s.logger.Debug("fiber raised termination signal, exiting dispatch loop",
					zap.Int64("fiber_id", current.ID))
				return nil
			}
			s.logger.Error("fiber propagated failure out of dispatch loop",
				zap.Int64("fiber_id", current.ID), zap.Error(err))
			return err
		}

		s.mu.Lock()
		if current.State() == StateTerminated {
			s.removeAtPosLocked()
			s.completed.Inc()
		} else {
			s.pos++
			if s.pos >= len(s.ready) {
				s.pos = 0
			}
		}
		terminated := s.terminated.Load()
		s.mu.Unlock()

		if terminated {
			return nil
		}
	}
}

// removeAtPosLocked removes the fiber at s.pos and, if pos now points past
// the end of the (shorter) list, resets it to 0.
func (s *Scheduler) removeAtPosLocked() {
	s.ready = append(s.ready[:s.pos], s.ready[s.pos+1:]...)
	if s.pos >= len(s.ready) {
		s.pos = 0
	}
}
