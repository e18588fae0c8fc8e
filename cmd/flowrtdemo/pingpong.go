package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thanhhungg97/flowrt/chanx"
	"github.com/thanhhungg97/flowrt/fiber"
	"github.com/thanhhungg97/flowrt/logging"
	"github.com/thanhhungg97/flowrt/threadsched"
)

// newPingPongCommand runs a two-fiber ping-pong: fiber A sends 2 on c2,
// fiber B squares whatever it reads off c2 and sends the result back on c1;
// A's final r must be 4. --threads picks the one-scheduler or
// two-scheduler topology.
func newPingPongCommand() *cobra.Command {
	var threads int
	cmd := &cobra.Command{
		Use:   "pingpong",
		Short: "run the fiber ping-pong scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(debugLog)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var r int
			switch threads {
			case 1:
				r, err = pingPongOneThread(logger, cfg.Scheduler.StackSizeBytes)
			case 2:
				r, err = pingPongTwoThreads(logger, cfg.Scheduler.StackSizeBytes)
			default:
				return fmt.Errorf("--threads must be 1 or 2, got %d", threads)
			}
			if err != nil {
				return err
			}
			fmt.Printf("pingpong(threads=%d): r=%d\n", threads, r)
			return nil
		},
	}
	cmd.Flags().IntVar(&threads, "threads", 1, "1 for a single scheduler, 2 for one scheduler per thread")
	return cmd
}

func pingPongOneThread(logger *zap.Logger, stackSize int) (int, error) {
	sched := fiber.NewScheduler(fiber.WithLogger(logger))
	c1 := chanx.New[int](0, chanx.WithLogger(logger))
	c2 := chanx.New[int](0, chanx.WithLogger(logger))
	var r int

	err := sched.Start(func() error {
		sched.SpawnStack("B", stackSize, func() error {
			var m int
			c2.Receive(&m)
			c1.Send(m * m)
			return nil
		})
		c2.Send(2)
		c1.Receive(&r)
		return nil
	})
	return r, err
}

func pingPongTwoThreads(logger *zap.Logger, _ int) (int, error) {
	tsched := threadsched.New(threadsched.WithLogger(logger))
	c1 := chanx.New[int](0, chanx.WithLogger(logger))
	c2 := chanx.New[int](0, chanx.WithLogger(logger))
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

	if err := hA.Wait(); err != nil {
		return 0, err
	}
	if err := hB.Wait(); err != nil {
		return 0, err
	}
	return r, nil
}
