package world

import "sync/atomic"

// debugLoggingEnabled gates per-tick debug logs of the spatial index, the
// tick manager and agents. Checking a flag is cheaper than slog.Enabled on
// every bucket change.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging switches per-tick debug logs on or off.
// main sets it once from the configured log level.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled reports whether per-tick debug logs are on.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
