// Package gid extracts the calling goroutine's runtime id.
//
// Go exposes no public goroutine-local storage. The context slots and the
// current-fiber lookup both need storage keyed on "whichever goroutine is
// executing this code right now" without that goroutine having to pass a
// handle through every call. Parsing the id out of a stack trace is
// the standard trick community packages (jtolds/gls, modern-go/gls and
// friends) use to fake TLS without cgo; none of those appear in this
// module's dependency graph, so the handful of lines are kept local instead
// of adding an unwired import.
package gid

import (
	"bytes"
	"runtime"
	"strconv"
)

// Current returns the id of the calling goroutine.
//
// It is only ever used as a map key, never displayed to a user or compared
// across processes, so the cost of parsing runtime.Stack on every call is
// acceptable: callers are on slow paths (installing a scheduler into a
// thread's slot, parking a fiber) rather than per-instruction hot loops.
func Current() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	const prefix = "goroutine "
	b = bytes.TrimPrefix(b, []byte(prefix))
	idx := bytes.IndexByte(b, ' ')
	if idx < 0 {
		return -1
	}
	id, err := strconv.ParseInt(string(b[:idx]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
