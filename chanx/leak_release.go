//go:build !flowrtdebug

package chanx

// registerDebugFinalizer is a no-op in release builds; see leak_debug.go.
func registerDebugFinalizer[T any](c *Channel[T]) {}
