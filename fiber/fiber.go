package fiber

import (
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"github.com/thanhhungg97/flowrt/ctxslot"
	"github.com/thanhhungg97/flowrt/internal/gid"
)

// State is one of the four states a Fiber moves through over its lifetime.
type State int32

const (
	StateReady State = iota
	StateRunning
	StateSuspended
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// DefaultStackSize is the nominal stack budget used when a caller passes no
// explicit size. Go goroutine stacks already grow on demand starting at a
// few KB, so this value is kept
// only for interface parity with callers that pass a stack size hint; it
// does not bound anything in this backend (see DESIGN.md).
const DefaultStackSize = 4 << 20 // 4 MiB

// Fiber is a stackful cooperative task. It never migrates between
// schedulers and is owned exclusively by its scheduler's ready list.
//
// There is no public stackful-coroutine primitive in the Go standard
// library, and nothing in the retrieval pack vendors a cgo-based one, so a
// "fiber" here is a plain goroutine synchronized by a rendezvous handshake
// rather than a swapped stack: exactly one of {the fiber's goroutine, its
// resumer} is ever runnable, so two fibers belonging to the same scheduler
// never run concurrently even though each has its own goroutine.
type Fiber struct {
	ID        int64
	Name      string
	scheduler *Scheduler

	state     atomic.Int32
	stackSize int

	resumeCh chan struct{}
	yieldCh  chan struct{}

	err error
}

var fiberIDCounter atomic.Int64

func newFiber(sched *Scheduler, name string, stackSize int, task func() error) *Fiber {
	if stackSize <= 0 {
		stackSize = DefaultStackSize
	}
	f := &Fiber{
		ID:        fiberIDCounter.Inc(),
		Name:      name,
		scheduler: sched,
		stackSize: stackSize,
		resumeCh:  make(chan struct{}),
		yieldCh:   make(chan struct{}),
	}
	f.state.Store(int32(StateReady))
	go f.run(task)
	return f
}

func (f *Fiber) run(task func() error) {
	<-f.resumeCh
	f.state.Store(int32(StateRunning))

	id := registerCurrent(f)
	defer unregisterCurrent(id)

	// Each fiber body runs on its own dedicated goroutine (see the type doc
	// above), distinct from whichever goroutine called Start. Without this,
	// ctxslot.CurrentScheduler would never resolve from inside a fiber body,
	// and chanx would always fall back to an OS waiter that blocks the
	// goroutine outright instead of yielding back to the dispatch loop.
	ctxslot.SetCurrentScheduler(f.scheduler)
	defer ctxslot.Clear()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("flowrt/fiber: panic in fiber %d (%s): %v", f.ID, f.Name, r)
			}
		}()
		return task()
	}()

	f.err = err
	f.state.Store(int32(StateTerminated))
	f.yieldCh <- struct{}{}
}

// Resume runs f until it next yields or terminates. Any failure the fiber
// body propagated is returned, never rethrown.
func (f *Fiber) Resume() error {
	if State(f.state.Load()) == StateTerminated {
		return nil
	}
	f.state.Store(int32(StateRunning))
	f.resumeCh <- struct{}{}
	<-f.yieldCh
	return f.err
}

// State reports the fiber's current lifecycle state.
func (f *Fiber) State() State {
	return State(f.state.Load())
}

func (f *Fiber) String() string {
	return fmt.Sprintf("fiber[%d:%s:%s]", f.ID, f.Name, f.State())
}

// yieldSelf suspends f and hands control back to whoever called Resume,
// parking until the next Resume call.
func (f *Fiber) yieldSelf() {
	if f.scheduler != nil {
		f.scheduler.yields.Inc()
	}
	f.state.Store(int32(StateSuspended))
	f.yieldCh <- struct{}{}
	<-f.resumeCh
	f.state.Store(int32(StateRunning))
}

// --- ambient "which fiber is this goroutine" lookup ---
//
// Each fiber's body runs on one dedicated goroutine for its entire
// lifetime, so registering it in a goroutine-id-keyed table for the
// duration of that run gives every other function on that goroutine
// (notably the package-level Yield below) a way to find "the current
// fiber" without threading a parameter through arbitrary user code.

var (
	currentMu    sync.RWMutex
	currentTable = make(map[int64]*Fiber)
)

func registerCurrent(f *Fiber) int64 {
	id := gid.Current()
	currentMu.Lock()
	currentTable[id] = f
	currentMu.Unlock()
	return id
}

func unregisterCurrent(id int64) {
	currentMu.Lock()
	delete(currentTable, id)
	currentMu.Unlock()
}

// Current returns the fiber running on the calling goroutine, if any.
func Current() (*Fiber, bool) {
	currentMu.RLock()
	defer currentMu.RUnlock()
	f, ok := currentTable[gid.Current()]
	return f, ok
}

// Yield suspends the currently running fiber and returns control to its
// resumer. Called outside any fiber, it is a no-op, since it may be
// invoked from code that might run on a bare thread.
func Yield() {
	f, ok := Current()
	if !ok {
		return
	}
	f.yieldSelf()
}
