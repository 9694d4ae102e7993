//go:build !debug
// +build !debug

package shakemovie

// Debug logging is compiled in with -tags debug.

func DebugLog(format string, args ...interface{}) {}

func DebugLogOnce(format string, args ...interface{}) {}
