// monitoring holds the process-wide diagnostic logger shared by the controller, the trial
// runner and the server.
package monitoring

import (
	"log"
	"sync/atomic"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger, e.g. to mute it in tests.
var Logf func(format string, v ...interface{}) = log.Printf

var debug atomic.Bool

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetDebug toggles Debugf output.
func SetDebug(on bool) {
	debug.Store(on)
}

// Debugging reports whether debug output is enabled.
func Debugging() bool {
	return debug.Load()
}

// Debugf logs through Logf only when debug output is enabled. Per-tick controller chatter goes here.
func Debugf(format string, v ...interface{}) {
	if Debugging() {
		Logf(format, v...)
	}
}

// Tagged returns a logger that prefixes every line with tag, e.g. a vehicle or episode id.
func Tagged(tag string) func(format string, v ...interface{}) {
	return func(format string, v ...interface{}) {
		Logf("["+tag+"] "+format, v...)
	}
}
