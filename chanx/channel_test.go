package chanx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thanhhungg97/flowrt/fiber"
	"github.com/thanhhungg97/flowrt/threadsched"
)

// TestPingPongOneThread is scenario 1: two fibers sharing one scheduler
// round-trip a value through two rendezvous channels.
func TestPingPongOneThread(t *testing.T) {
	sched := fiber.NewScheduler()
	c1 := New[int](0)
	c2 := New[int](0)
	var r int

	err := sched.Start(func() error {
		sched.Spawn("B", func() error {
			var m int
			c2.Receive(&m)
			c1.Send(m * m)
			return nil
		})
		c2.Send(2)
		c1.Receive(&r)
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 4, r)
}

// TestPingPongTwoThreads is scenario 2: the same round trip, but A and B
// each own an independent OS thread and fiber scheduler.
func TestPingPongTwoThreads(t *testing.T) {
	tsched := threadsched.New()
	c1 := New[int](0)
	c2 := New[int](0)
	var r int

	hA := tsched.Spawn(func(sched *fiber.Scheduler) error {
		return sched.Start(func() error {
			c2.Send(2)
			c1.Receive(&r)
			return nil
		})
	})
	hB := tsched.Spawn(func(sched *fiber.Scheduler) error {
		return sched.Start(func() error {
			var m int
			c2.Receive(&m)
			c1.Send(m * m)
			return nil
		})
	})

	require.NoError(t, hA.Wait())
	require.NoError(t, hB.Wait())
	require.Equal(t, 4, r)
}

// TestRendezvousSelfDeadlock is scenario 3: a lone fiber sending then
// receiving on its own capacity-0 channel never unparks on its own.
func TestRendezvousSelfDeadlock(t *testing.T) {
	sched := fiber.NewScheduler()
	c := New[int](0)
	var r int

	done := make(chan error, 1)
	go func() {
		done <- sched.Start(func() error {
			c.Send(2)
			c.Receive(&r)
			return nil
		})
	}()

	select {
	case err := <-done:
		t.Fatalf("Start returned unexpectedly (err=%v); a self-deadlocked fiber must never complete on its own", err)
	case <-time.After(50 * time.Millisecond):
		sched.Stop()
	}
	require.Equal(t, 0, r, "r must still be its zero value after a finite wait")
}

// TestRendezvousUnraveling is scenario 4: spawning a second, complementary
// fiber pairs up with the first fiber's pending send and receive.
func TestRendezvousUnraveling(t *testing.T) {
	sched := fiber.NewScheduler()
	c := New[int](0)
	var r int

	err := sched.Start(func() error {
		sched.Spawn("A", func() error {
			c.Send(2)
			c.Receive(&r)
			return nil
		})
		sched.Spawn("B", func() error {
			var rb int
			c.Receive(&rb)
			c.Send(2)
			return nil
		})
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 2, r)
}

// TestCapacity1RoundTrip is scenario 5: a capacity-1 channel lets a single
// fiber send then receive without ever parking.
func TestCapacity1RoundTrip(t *testing.T) {
	sched := fiber.NewScheduler()
	c := New[int](1)
	var r int

	err := sched.Start(func() error {
		ok := c.Send(2)
		require.True(t, ok)
		ok = c.Receive(&r)
		require.True(t, ok)
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 2, r)
}

// TestCloseWakesParkedReceiver is scenario 6: closing a channel a fiber is
// parked receiving on wakes it with the zero value and false, not whatever
// may be sent later.
func TestCloseWakesParkedReceiver(t *testing.T) {
	sched := fiber.NewScheduler()
	c := New[int](0)
	r := -1
	var ok bool

	received := make(chan struct{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		c.Close()
	}()

	err := sched.Start(func() error {
		ok = c.Receive(&r)
		close(received)
		return nil
	})

	<-received
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 0, r)
}

func TestSendAndReceiveOnClosedChannelReturnFalse(t *testing.T) {
	c := New[int](1)
	c.Close()

	ok := c.Send(1)
	require.False(t, ok)

	r := 7
	ok = c.Receive(&r)
	require.False(t, ok)
	require.Equal(t, 0, r)
}

func TestTryReceiveDoesNotBlock(t *testing.T) {
	c := New[int](1)

	var r int
	require.False(t, c.TryReceive(&r), "nothing has been sent yet")

	c.Send(9)
	require.True(t, c.TryReceive(&r))
	require.Equal(t, 9, r)
}

func TestCloseWakesWaitersInFIFOOrder(t *testing.T) {
	sched := fiber.NewScheduler()
	c := New[int](0)

	var order []int
	done := make(chan struct{})

	err := sched.Start(func() error {
		for i := 0; i < 3; i++ {
			i := i
			sched.Spawn("receiver", func() error {
				var v int
				c.Receive(&v)
				order = append(order, i)
				return nil
			})
		}
		sched.Spawn("closer", func() error {
			c.Close()
			close(done)
			return nil
		})
		return nil
	})

	require.NoError(t, err)
	<-done
	require.Equal(t, []int{0, 1, 2}, order, "waiters must be released in the order they parked")
}

func TestBufferedSendDoesNotBlockWithinCapacity(t *testing.T) {
	c := New[int](2)

	require.True(t, c.Send(1))
	require.True(t, c.Send(2))

	var a, b int
	require.True(t, c.Receive(&a))
	require.True(t, c.Receive(&b))
	require.Equal(t, 1, a)
	require.Equal(t, 2, b)
}
