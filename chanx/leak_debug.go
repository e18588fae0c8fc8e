//go:build flowrtdebug

package chanx

import (
	"runtime"

	"go.uber.org/zap"
)

// registerDebugFinalizer is compiled in only under -tags flowrtdebug.
// Dropping a channel with parked waiters still outstanding is a caller bug;
// a finalizer is the only hook that runs regardless of whether the dropping
// code path knew to check, which is the point of a debug-only safety net
// rather than a regular method.
func registerDebugFinalizer[T any](c *Channel[T]) {
	runtime.SetFinalizer(c, func(c *Channel[T]) {
		if n := c.parked.Load(); n != 0 {
			c.logger.Warn("channel garbage-collected with parked waiters still outstanding",
				zap.Int64("parked", n))
		}
	})
}
