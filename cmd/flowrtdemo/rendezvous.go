package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thanhhungg97/flowrt/chanx"
	"github.com/thanhhungg97/flowrt/fiber"
	"github.com/thanhhungg97/flowrt/logging"
)

// newRendezvousCommand runs a rendezvous self-deadlock: a lone fiber
// rendezvousing with itself on a capacity-0 channel self-deadlocks, and
// spawning a second fiber that receives-then-sends unravels it.
func newRendezvousCommand() *cobra.Command {
	var unravel bool
	cmd := &cobra.Command{
		Use:   "rendezvous",
		Short: "run the rendezvous self-deadlock scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(debugLog)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if !unravel {
				r, deadlocked := rendezvousSelfDeadlock(logger)
				fmt.Printf("rendezvous: self-deadlocked=%v r=%d\n", deadlocked, r)
				return nil
			}

			r, err := rendezvousUnravel(logger)
			if err != nil {
				return err
			}
			fmt.Printf("rendezvous(--unravel): r=%d\n", r)
			return nil
		},
	}
	cmd.Flags().BoolVar(&unravel, "unravel", false, "spawn a second fiber that unravels the self-deadlock instead of just observing it")
	return cmd
}

// rendezvousSelfDeadlock runs a single fiber that sends then receives on
// its own capacity-0 channel with no peer, so it parks forever. Start
// never returns on its own; the caller here bounds the wait and stops the
// scheduler to reclaim the goroutine, standing in for "after any finite
// wait, r is still its zero value".
func rendezvousSelfDeadlock(logger *zap.Logger) (r int, selfDeadlocked bool) {
	sched := fiber.NewScheduler(fiber.WithLogger(logger))
	c := chanx.New[int](0, chanx.WithLogger(logger))

	done := make(chan error, 1)
	go func() {
		done <- sched.Start(func() error {
			c.Send(2)
			c.Receive(&r)
			return nil
		})
	}()

	select {
	case <-done:
		return r, false
	case <-time.After(100 * time.Millisecond):
		sched.Stop()
		return r, true
	}
}

// rendezvousUnravel has the root fiber spawn the original fiber
// (send-then-receive), which runs until it parks on its send, and then a
// second one (receive-then-send), so the dispatch loop pairs them up
// deterministically instead of racing an external close against a parked
// fiber.
func rendezvousUnravel(logger *zap.Logger) (int, error) {
	sched := fiber.NewScheduler(fiber.WithLogger(logger))
	c := chanx.New[int](0, chanx.WithLogger(logger))
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
	return r, err
}
