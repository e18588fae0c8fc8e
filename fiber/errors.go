package fiber

import "errors"

// ErrOwnerTerminated is a sentinel termination-signal error. Raising it
// from a fiber body and letting it propagate out causes the dispatch loop
// to exit cleanly instead of rethrowing to the caller of Start.
var ErrOwnerTerminated = errors.New("flowrt/fiber: owner terminated")
