// Package monitoring holds the shared diagnostic logger. The render pipeline
// sanitizes bad input instead of failing, so sanitization events are only
// visible through this logger.
package monitoring

import "log"

// LogFunc is the shape of the diagnostic sink; it matches log.Printf.
type LogFunc func(format string, v ...interface{})

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. Tests or production code can redirect or mute
// it.
var Logf LogFunc = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f LogFunc) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Prefixed returns a logger that tags every message with a subsystem name.
// The returned function reads Logf at call time, so SetLogger still applies
// to loggers handed out earlier.
func Prefixed(subsystem string) LogFunc {
	return func(format string, v ...interface{}) {
		Logf(subsystem+": "+format, v...)
	}
}
