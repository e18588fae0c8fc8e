// Package logging builds the zap.Logger threaded through the scheduler and
// channel constructors, replacing the bespoke JSON-over-log.Println shim
// tcplb's lib/slog carries (that package's own doc comment calls it "a
// uniformly unpleasant and wearying experience" and TODOs a swap to a real
// library) with the real structured logger the rest of the retrieval pack
// reaches for (uber/kraken's scheduler, among others).
package logging

import "go.uber.org/zap"

// New builds a development logger (human-readable, debug level) when debug
// is true, otherwise a production logger (JSON, info level and above).
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Nop returns a logger that discards everything, for tests and library
// callers that do not want flowrt's internals to log at all.
func Nop() *zap.Logger {
	return zap.NewNop()
}
