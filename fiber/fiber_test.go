package fiber

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchedulerSpawnAndDispatchRoundRobin(t *testing.T) {
	sched := NewScheduler()

	var order []string
	err := sched.Start(func() error {
		order = append(order, "root-start")
		sched.Spawn("B", func() error {
			order = append(order, "B")
			return nil
		})
		order = append(order, "root-end")
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, []string{"root-start", "B", "root-end"}, order)
	require.Equal(t, 0, sched.FiberCount())
}

func TestSchedulerStatsTrackLifecycle(t *testing.T) {
	sched := NewScheduler()

	err := sched.Start(func() error {
		sched.Spawn("worker", func() error {
			Yield()
			return nil
		})
		return nil
	})
	require.NoError(t, err)

	stats := sched.Stats()
	require.Equal(t, int64(2), stats.FibersCreated)
	require.Equal(t, int64(2), stats.FibersCompleted)
	require.Greater(t, stats.ContextSwitches, int64(0))
	require.Greater(t, stats.TotalYields, int64(0))
}

func TestSchedulerStartPropagatesTaskError(t *testing.T) {
	sched := NewScheduler()
	boom := errors.New("boom")

	err := sched.Start(func() error {
		return boom
	})
	require.ErrorIs(t, err, boom)
}

func TestSchedulerStartRecoversPanic(t *testing.T) {
	sched := NewScheduler()

	err := sched.Start(func() error {
		panic("oh no")
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "oh no")
}

func TestSchedulerStartReentrantIsNoOp(t *testing.T) {
	sched := NewScheduler()

	var innerCalled bool
	err := sched.Start(func() error {
		innerErr := sched.Start(func() error {
			innerCalled = true
			return nil
		})
		require.NoError(t, innerErr)
		return nil
	})

	require.NoError(t, err)
	require.False(t, innerCalled, "a re-entrant Start call must not run its task")
}

func TestSchedulerStopEndsTheDispatchLoopEarly(t *testing.T) {
	sched := NewScheduler()

	var ranAfterStop bool
	err := sched.Start(func() error {
		sched.Spawn("looper", func() error {
			for i := 0; i < 3; i++ {
				Yield()
			}
			ranAfterStop = true
			return nil
		})
		sched.Stop()
		return nil
	})

	require.NoError(t, err)
	require.False(t, ranAfterStop, "Stop must prevent remaining ready fibers from finishing")
}

func TestConditionWaitNotify(t *testing.T) {
	sched := NewScheduler()

	var observed []string
	err := sched.Start(func() error {
		cond := sched.NewCondition()

		sched.Spawn("waiter", func() error {
			observed = append(observed, "before-wait")
			cond.Wait()
			observed = append(observed, "after-wait")
			return nil
		})

		// Give the waiter fiber a chance to park before notifying it.
		Yield()
		observed = append(observed, "notifying")
		cond.Notify()
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, []string{"before-wait", "notifying", "after-wait"}, observed)
}

func TestConditionWaitTimeoutExpires(t *testing.T) {
	sched := NewScheduler()

	var timedOut bool
	err := sched.Start(func() error {
		cond := sched.NewCondition()
		timedOut = !cond.WaitTimeout(0)
		return nil
	})

	require.NoError(t, err)
	require.True(t, timedOut, "a zero-duration WaitTimeout with nobody notifying must expire")
}

func TestCurrentAndYieldOutsideFiberAreNoOps(t *testing.T) {
	_, ok := Current()
	require.False(t, ok)

	require.NotPanics(t, func() {
		Yield()
	})
}
