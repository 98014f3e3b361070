package expectr

import "log/slog"

// NopLogger returns a logger that discards all output. Sessions use it
// when no logger is configured.
func NopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newLogger returns log, or a NopLogger when log is nil.
func newLogger(log *slog.Logger) *slog.Logger {
	if log == nil {
		return NopLogger()
	}

	return log
}
