package chanx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thanhhungg97/flowrt/fiber"
)

// TestBareThreadSenderWakesFiberReceiver exercises the cross-context path
// directly: a bare OS thread (no scheduler installed at all) sends into
// a channel a fiber is parked receiving on.
func TestBareThreadSenderWakesFiberReceiver(t *testing.T) {
	sched := fiber.NewScheduler()
	c := New[int](0)
	var r int

	done := make(chan error, 1)
	go func() {
		done <- sched.Start(func() error {
			c.Receive(&r)
			return nil
		})
	}()

	go func() {
		time.Sleep(10 * time.Millisecond)
		c.Send(5)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("fiber receiver never woke up for the bare-thread send")
	}
	require.Equal(t, 5, r)
}

// TestFiberSenderWakesBareThreadReceiver is the mirror image: a fiber sends
// into a channel a bare OS thread is blocked receiving on.
func TestFiberSenderWakesBareThreadReceiver(t *testing.T) {
	sched := fiber.NewScheduler()
	c := New[int](0)

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = sched.Start(func() error {
			c.Send(7)
			return nil
		})
	}()

	var r int
	ok := c.Receive(&r)
	require.True(t, ok)
	require.Equal(t, 7, r)
}
