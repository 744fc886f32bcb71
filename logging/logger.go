// Package logging provides the structured-logging interface the
// coordinator and scheduler bridge log through, mirroring the
// teacher's metrics.Provider / NoopProvider interface-plus-default-impl
// shape (see github.com/ygrebnov/workers/metrics).
package logging

// Logger is the minimal structured-logging surface the coordinator
// depends on. kv is an alternating key/value list, following the
// convention of most structured loggers in the Go ecosystem.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// Noop is a Logger that discards everything. It is the default when no
// Logger is configured.
type Noop struct{}

func (Noop) Debug(string, ...any) {}
func (Noop) Info(string, ...any)  {}
func (Noop) Warn(string, ...any)  {}
func (Noop) Error(string, ...any) {}
