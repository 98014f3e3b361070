package expectr

import (
	"context"
	"fmt"
)

// WithSession manages session lifecycle with automatic cleanup.
//
// This helper spawns cmdline with the provided options, executes the
// callback function, and closes the session when done.
//
// If the callback returns an error, it is returned to the caller.
// If Close() fails, a warning is logged but does not override the callback's error.
//
// Example usage:
//
//	err := expectr.WithSession(ctx, "bc -q", func(s expectr.Session) error {
//	    if err := s.SendLine(ctx, "6*7"); err != nil {
//	        return err
//	    }
//	    _, err := s.Expect(ctx, "42")
//	    return err
//	},
//	    expectr.WithTimeout(5*time.Second),
//	)
func WithSession(ctx context.Context, cmdline string, fn func(Session) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	log := newLogger(applyOptions(opts).Logger)

	s, err := Spawn(ctx, cmdline, opts...)
	if err != nil {
		return fmt.Errorf("failed to spawn %q: %w", cmdline, err)
	}

	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			log.Warn("failed to close session", "error", closeErr)
		}
	}()

	return fn(s)
}
