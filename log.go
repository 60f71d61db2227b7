package playertrack

import "log"

// Logf is the package diagnostic logger.  It defaults to log.Printf but may
// be replaced by SetLogger.
var Logf func(format string, v ...any) = log.Printf

// SetLogger replaces the package logger.  Passing nil mutes logging.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		Logf = func(string, ...any) {}
		return
	}
	Logf = f
}
