package chanx

import (
	"sync"

	"github.com/thanhhungg97/flowrt/ctxslot"
	"github.com/thanhhungg97/flowrt/fiber"
)

// waiter is the polymorphic notification handle: a parked sender or
// receiver waits on one without knowing (or caring) whether it is backed by
// a cooperative fiber.Condition or a genuine OS condition variable. Wakers
// always call Notify; they never need to know which kind of waiter they
// are releasing.
type waiter interface {
	Wait()
	Notify()
}

// fiberWaiter backs a wait context with a cooperative fiber.Condition. Its
// mutex slot is null: the condition guards itself with the owning
// scheduler's internal lock.
type fiberWaiter struct {
	cond *fiber.Condition
}

func (w *fiberWaiter) Wait()   { w.cond.Wait() }
func (w *fiberWaiter) Notify() { w.cond.Notify() }

// osWaiter backs a wait context with a fresh OS mutex and standard
// condition variable, for bare-thread callers or fibers with no scheduler
// installed in their slot.
type osWaiter struct {
	mu       sync.Mutex
	cond     *sync.Cond
	notified bool
}

func newOSWaiter() *osWaiter {
	w := &osWaiter{}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *osWaiter) Wait() {
	w.mu.Lock()
	for !w.notified {
		w.cond.Wait()
	}
	w.notified = false
	w.mu.Unlock()
}

func (w *osWaiter) Notify() {
	w.mu.Lock()
	w.notified = true
	w.cond.Signal()
	w.mu.Unlock()
}

// newWaiter inspects the calling goroutine's own context to decide which
// kind of waiter to hand back: a fiber.Condition when the caller is
// running inside a fiber with a scheduler installed in its slot, an OS
// mutex/condition pair otherwise.
func newWaiter() waiter {
	if sched, ok := ctxslot.CurrentScheduler(); ok {
		if fsched, ok := sched.(*fiber.Scheduler); ok {
			if _, insideFiber := fiber.Current(); insideFiber {
				return &fiberWaiter{cond: fsched.NewCondition()}
			}
		}
	}
	return newOSWaiter()
}
