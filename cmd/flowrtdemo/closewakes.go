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

// newCloseWakesCommand runs a fiber parked on Receive that is woken by a
// Close called from outside the scheduler entirely, and gets back the zero
// value and false rather than ever seeing the sent value.
func newCloseWakesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close-wakes",
		Short: "run the close-wakes-waiters scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(debugLog)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ok, r, err := closeWakesWaiter(logger)
			if err != nil {
				return err
			}
			fmt.Printf("close-wakes: ok=%v r=%d\n", ok, r)
			return nil
		},
	}
	return cmd
}

func closeWakesWaiter(logger *zap.Logger) (ok bool, r int, err error) {
	sched := fiber.NewScheduler(fiber.WithLogger(logger))
	c := chanx.New[int](0, chanx.WithLogger(logger))
	r = -1 // sentinel so a zero-value reset after close is visible in the printout

	closed := make(chan struct{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		c.Close()
		close(closed)
	}()

	err = sched.Start(func() error {
		ok = c.Receive(&r)
		return nil
	})
	<-closed
	return ok, r, err
}
