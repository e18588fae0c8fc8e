// Package ctxslot implements per-thread context slots: storage for the
// scheduler handle installed on the current OS thread, plus two slots
// reserved for a future transceiver and waiting-manager consumed by an
// out-of-scope RPC layer.
//
// Go has no native TLS. "Per-thread" is realized as "per goroutine that was
// pinned to an OS thread by the owner" — the thread scheduler locks the
// goroutine to its OS thread with runtime.LockOSThread before installing a
// slot, so the mapping is 1:1 for the lifetime that matters here.
package ctxslot

import (
	"sync"

	"github.com/thanhhungg97/flowrt/internal/gid"
)

// Slots holds everything installed on one goroutine's context.
type Slots struct {
	Scheduler      any // installed *fiber.Scheduler; any to avoid an import cycle
	Transceiver    any // reserved for the out-of-scope RPC layer
	WaitingManager any // reserved for the out-of-scope RPC layer
}

var (
	mu    sync.RWMutex
	table = make(map[int64]*Slots)
)

// CurrentScheduler returns the scheduler installed on the calling
// goroutine's slot, or (nil, false) if none has been installed.
func CurrentScheduler() (any, bool) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := table[gid.Current()]
	if !ok || s.Scheduler == nil {
		return nil, false
	}
	return s.Scheduler, true
}

// SetCurrentScheduler installs sched into the calling goroutine's slot.
// It does not take ownership of sched; the installer is responsible for
// eventually calling Clear.
func SetCurrentScheduler(sched any) {
	mu.Lock()
	defer mu.Unlock()
	s := slotsLocked(gid.Current())
	s.Scheduler = sched
}

// Transceiver and WaitingManager mirror CurrentScheduler/SetCurrentScheduler
// for the two reserved slots. The core never reads these; it only guarantees
// their lifetime matches the owning goroutine's.

func Transceiver() (any, bool) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := table[gid.Current()]
	if !ok || s.Transceiver == nil {
		return nil, false
	}
	return s.Transceiver, true
}

func SetTransceiver(v any) {
	mu.Lock()
	defer mu.Unlock()
	slotsLocked(gid.Current()).Transceiver = v
}

func WaitingManager() (any, bool) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := table[gid.Current()]
	if !ok || s.WaitingManager == nil {
		return nil, false
	}
	return s.WaitingManager, true
}

func SetWaitingManager(v any) {
	mu.Lock()
	defer mu.Unlock()
	slotsLocked(gid.Current()).WaitingManager = v
}

// Clear removes every slot belonging to the calling goroutine. The thread
// scheduler defers this at the exit of every worker it spawns.
func Clear() {
	mu.Lock()
	defer mu.Unlock()
	delete(table, gid.Current())
}

func slotsLocked(id int64) *Slots {
	s, ok := table[id]
	if !ok {
		s = &Slots{}
		table[id] = s
	}
	return s
}
