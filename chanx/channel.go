// Package chanx implements a typed, bounded, CSP-style rendezvous channel
// that brokers values between fibers sharing one scheduler, fibers across
// separate schedulers, or bare OS threads, without its callers ever picking
// a variant.
package chanx

import (
	"container/list"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// waitContext is the heap-allocated record of a parked operation: it
// carries a destination pointer for a parked receiver, or an offered value
// for a parked sender, plus the waiter it parks on. aborted is set by Close
// when it releases the waiter instead of a peer.
type waitContext[T any] struct {
	dest    *T
	val     T
	w       waiter
	aborted bool
}

// Channel is a bounded FIFO of T with rendezvous fallback. Capacity 0 means
// pure rendezvous: send and receive must pair before either proceeds.
type Channel[T any] struct {
	mu       sync.Mutex
	closed   atomic.Bool
	capacity int
	buffer   []T

	sendWaiters *list.List // of *waitContext[T]
	recvWaiters *list.List // of *waitContext[T]

	parked atomic.Int64 // outstanding waiters, for the debug leak check
	logger *zap.Logger
}

// Option configures a Channel at construction time.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New constructs a channel of the given non-negative capacity.
func New[T any](capacity int, opts ...Option) *Channel[T] {
	if capacity < 0 {
		capacity = 0
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	c := &Channel[T]{
		capacity:    capacity,
		sendWaiters: list.New(),
		recvWaiters: list.New(),
		logger:      o.logger,
	}
	registerDebugFinalizer(c)
	return c
}

// Send hands v to a waiting receiver, buffers it if there's room, or parks
// the caller until a receiver arrives. It returns false only if the channel
// was already closed; otherwise it always eventually returns true.
func (c *Channel[T]) Send(v T) bool {
	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		return false
	}

	if c.recvWaiters.Len() > 0 {
		elem := c.recvWaiters.Front()
		wc := c.recvWaiters.Remove(elem).(*waitContext[T])
		*wc.dest = v
		c.parked.Dec()
		c.mu.Unlock()
		wc.w.Notify()
		return true
	}

	if len(c.buffer) < c.capacity {
		c.buffer = append(c.buffer, v)
		c.mu.Unlock()
		return true
	}

	wc := &waitContext[T]{val: v, w: newWaiter()}
	c.sendWaiters.PushBack(wc)
	c.parked.Inc()
	c.mu.Unlock()

	wc.w.Wait()
	return true
}

// Receive takes a value from a waiting sender, pops one off the buffer, or
// parks the caller until a sender arrives. It returns false (writing the
// zero value through dest) only once the channel is closed with nothing
// left to deliver.
func (c *Channel[T]) Receive(dest *T) bool {
	c.mu.Lock()
	if c.closed.Load() {
		var zero T
		*dest = zero
		c.mu.Unlock()
		return false
	}

	if c.sendWaiters.Len() > 0 {
		elem := c.sendWaiters.Front()
		wc := c.sendWaiters.Remove(elem).(*waitContext[T])
		*dest = wc.val
		c.parked.Dec()
		c.mu.Unlock()
		wc.w.Notify()
		return true
	}

	if len(c.buffer) > 0 {
		*dest = c.buffer[0]
		c.buffer = c.buffer[1:]
		c.mu.Unlock()
		return true
	}

	wc := &waitContext[T]{dest: dest, w: newWaiter()}
	c.recvWaiters.PushBack(wc)
	c.parked.Inc()
	c.mu.Unlock()

	wc.w.Wait()
	return !wc.aborted
}

// TryReceive is Receive without the park branch: it returns false
// immediately instead of blocking when nothing is available. It is the
// only non-blocking path the channel offers.
func (c *Channel[T]) TryReceive(dest *T) bool {
	c.mu.Lock()
	if c.closed.Load() {
		var zero T
		*dest = zero
		c.mu.Unlock()
		return false
	}

	if c.sendWaiters.Len() > 0 {
		elem := c.sendWaiters.Front()
		wc := c.sendWaiters.Remove(elem).(*waitContext[T])
		*dest = wc.val
		c.parked.Dec()
		c.mu.Unlock()
		wc.w.Notify()
		return true
	}

	if len(c.buffer) > 0 {
		*dest = c.buffer[0]
		c.buffer = c.buffer[1:]
		c.mu.Unlock()
		return true
	}

	c.mu.Unlock()
	return false
}

// IsClosed reports whether Close has been called.
func (c *Channel[T]) IsClosed() bool {
	return c.closed.Load()
}

// Close marks the channel closed, drains and wakes every parked receiver
// (with a zero value and a false return from Receive) and every parked
// sender, and clears the buffer. A woken sender's pending Send call still
// returns true — this design does not distinguish "delivered" from "aborted", a known,
// pinned limitation left as-is rather than strengthened into a richer
// return type.
//
// Waiters are released in FIFO queue order, and the notification happens
// after the mutex is released to avoid the notified party re-entering this
// lock while we still hold it.
func (c *Channel[T]) Close() {
	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		return
	}
	c.closed.Store(true)

	var toNotify []waiter

	for c.recvWaiters.Len() > 0 {
		elem := c.recvWaiters.Front()
		wc := c.recvWaiters.Remove(elem).(*waitContext[T])
		var zero T
		*wc.dest = zero
		wc.aborted = true
		c.parked.Dec()
		toNotify = append(toNotify, wc.w)
	}

	c.buffer = nil

	for c.sendWaiters.Len() > 0 {
		elem := c.sendWaiters.Front()
		wc := c.sendWaiters.Remove(elem).(*waitContext[T])
		c.parked.Dec()
		toNotify = append(toNotify, wc.w)
	}

	c.mu.Unlock()

	c.logger.Debug("channel closed", zap.Int("woken_waiters", len(toNotify)))

	for _, w := range toNotify {
		w.Notify()
	}
}
