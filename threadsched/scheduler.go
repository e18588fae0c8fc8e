// Package threadsched spawns OS threads pre-installed with a fresh fiber
// scheduler in their context slot.
package threadsched

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/thanhhungg97/flowrt/ctxslot"
	"github.com/thanhhungg97/flowrt/fiber"
)

// Scheduler spawns OS threads. Unlike fiber.Scheduler it has no state of its
// own to own a ready list over — each spawned thread gets an independent
// fiber.Scheduler.
type Scheduler struct {
	logger *zap.Logger
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Handle is the join handle returned by Spawn: a done channel plus whatever
// error the spawned thread's task function returned or panicked with.
type Handle struct {
	done chan struct{}
	err  error
}

// Wait blocks the caller until the spawned thread's task returns, yielding
// the error it returned (or recovered from a panic).
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// Start runs task synchronously on the caller — a trivial shell kept only
// for symmetry with fiber.Scheduler's interface.
func (s *Scheduler) Start(task func() error) error {
	return task()
}

// Spawn starts a new OS thread whose entry function installs a fresh
// fiber.Scheduler into the thread's context slot, invokes task with it, and
// tears the slot down on exit.
func (s *Scheduler) Spawn(task func(*fiber.Scheduler) error) *Handle {
	h := &Handle{done: make(chan struct{})}

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer ctxslot.Clear()
		defer close(h.done)

		fsched := fiber.NewScheduler(fiber.WithLogger(s.logger))
		ctxslot.SetCurrentScheduler(fsched)

		defer func() {
			if r := recover(); r != nil {
				h.err = fmt.Errorf("flowrt/threadsched: panic in spawned thread: %v", r)
			}
		}()

		h.err = task(fsched)
	}()

	return h
}

// NewCondition constructs a standard OS condition variable bound to mu; no
// custom behavior — callers that need a cooperative condition must ask the
// fiber scheduler installed on their thread instead.
func (s *Scheduler) NewCondition(mu *sync.Mutex) *sync.Cond {
	return sync.NewCond(mu)
}
