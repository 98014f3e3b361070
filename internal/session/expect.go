package session

import (
	"context"
	stderrors "errors"
	"regexp"
	"strings"
	"time"

	"github.com/wagiedev/expectr-go/internal/buffer"
	"github.com/wagiedev/expectr-go/internal/errors"
)

// ExpectOptions tunes a single expect.
type ExpectOptions struct {
	// Recoverable turns a timeout into a nil match with a nil error.
	Recoverable bool

	// Timeout overrides the session timeout when positive.
	Timeout time.Duration

	// ForceMatch overrides the session's force-match option when non-nil.
	ForceMatch *bool
}

// Case pairs a pattern with the action run when it fires.
type Case struct {
	// Pattern is a string (matched verbatim) or a *regexp.Regexp.
	Pattern any

	// Action runs with the match narrowed to this case's groups. May be nil.
	Action func(*buffer.Match) error
}

// ExpectCases is the input of ExpectMap. Cases are tried as one alternation
// in declared order.
type ExpectCases struct {
	Cases []Case

	// Default runs when nothing matched and Timeout is nil.
	Default func() error

	// Timeout runs when nothing matched.
	Timeout func() error

	// TimeoutAfter overrides the session timeout when positive.
	TimeoutAfter time.Duration
}

// Expect waits for pattern to appear in the output. On success the buffer
// keeps only the output after the match and the discard holds the output
// before it. Without Recoverable a timeout fails with a TimeoutError.
func (s *Session) Expect(ctx context.Context, pattern any, opts ExpectOptions) (*buffer.Match, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	re, err := buffer.Compile(pattern)
	if err != nil {
		return nil, err
	}

	return s.expect(ctx, re, buffer.Describe(pattern), opts)
}

// ExpectMap waits for any of several patterns and runs the action of the
// case that fired. When two cases match the same text the first declared
// one wins. If nothing matches and a Timeout or Default handler is present,
// that handler runs instead of failing; its error is returned.
func (s *Session) ExpectMap(ctx context.Context, cases ExpectCases) (*buffer.Match, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	if len(cases.Cases) == 0 {
		return nil, &errors.ArgumentError{Argument: "cases", Reason: "must not be empty"}
	}

	patterns := make([]any, len(cases.Cases))
	descriptions := make([]string, len(cases.Cases))

	for i, c := range cases.Cases {
		patterns[i] = c.Pattern
		descriptions[i] = buffer.Describe(c.Pattern)
	}

	union, err := buffer.NewUnion(patterns)
	if err != nil {
		return nil, err
	}

	opts := ExpectOptions{
		Recoverable: cases.Timeout != nil || cases.Default != nil,
		Timeout:     cases.TimeoutAfter,
	}

	m, err := s.expect(ctx, union.Regexp(), strings.Join(descriptions, " | "), opts)
	if err != nil {
		return nil, err
	}

	if m == nil {
		switch {
		case cases.Timeout != nil:
			return nil, cases.Timeout()
		default:
			return nil, cases.Default()
		}
	}

	i := union.Which(m)
	m = union.Narrow(m, i)

	s.log.Debug("Expect map matched", "case", i, "text", m.Text)

	if i < 0 || cases.Cases[i].Action == nil {
		return m, nil
	}

	return m, cases.Cases[i].Action(m)
}

func (s *Session) expect(ctx context.Context, re *regexp.Regexp, desc string, opts ExpectOptions) (*buffer.Match, error) {
	timeout := s.Timeout()
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	force := s.options.ForceMatch
	if opts.ForceMatch != nil {
		force = *opts.ForceMatch
	}

	m, err := s.buffer.Expect(ctx, re, buffer.Params{
		Timeout:      timeout,
		PollInterval: s.options.PollInterval,
		ForceMatch:   force,
		Pattern:      desc,
	})
	if err != nil {
		if opts.Recoverable && stderrors.Is(err, errors.ErrTimeout) {
			s.log.Debug("Expect timed out, recovering", "pattern", desc)

			return nil, nil
		}

		return nil, err
	}

	s.log.Debug("Expect matched", "pattern", desc, "start", m.Start, "end", m.End)

	return m, nil
}
