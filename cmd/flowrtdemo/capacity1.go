package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thanhhungg97/flowrt/chanx"
	"github.com/thanhhungg97/flowrt/fiber"
	"github.com/thanhhungg97/flowrt/logging"
)

// newCapacity1Command runs a single fiber round-tripping through a
// capacity-1 channel without ever parking, since the buffer absorbs the
// send before the matching receive runs.
func newCapacity1Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capacity1",
		Short: "run the capacity-1 round trip scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(debugLog)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			r, err := capacity1RoundTrip(logger)
			if err != nil {
				return err
			}
			fmt.Printf("capacity1: r=%d\n", r)
			return nil
		},
	}
	return cmd
}

func capacity1RoundTrip(logger *zap.Logger) (int, error) {
	sched := fiber.NewScheduler(fiber.WithLogger(logger))
	c := chanx.New[int](1, chanx.WithLogger(logger))
	var r int

	err := sched.Start(func() error {
		c.Send(2)
		c.Receive(&r)
		return nil
	})
	return r, err
}
