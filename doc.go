// Package expectr automates interactive terminal programs.
//
// A Session runs a program on a pseudoterminal (or drives handles or
// functions that stand in for one), collects its output into a buffer and
// lets callers wait for patterns in that output, send input, signal the
// process, and hand the terminal over to a human.
//
// # Basic Usage
//
// Spawn a program, wait for its prompt and answer it:
//
//	ctx := context.Background()
//	s, err := expectr.Spawn(ctx, "ftp example.com",
//	    expectr.WithTimeout(10*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	if _, err := s.Expect(ctx, "Name"); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := s.SendLine(ctx, "anonymous"); err != nil {
//	    log.Fatal(err)
//	}
//
// Each successful Expect consumes the output up to the end of the match.
// The output skipped over is available from Discard, the rest stays in
// Buffer for the next Expect.
//
// # Several Patterns
//
// ExpectMap waits for whichever of several patterns shows up first:
//
//	_, err := s.ExpectMap(ctx, expectr.ExpectCases{
//	    Cases: []expectr.Case{
//	        {Pattern: "Password:", Action: func(*expectr.Match) error {
//	            return s.SendLine(ctx, password)
//	        }},
//	        {Pattern: regexp.MustCompile(`\$ $`), Action: nil},
//	    },
//	    Timeout: func() error { return errors.New("no prompt") },
//	})
//
// # Interaction
//
// Interact puts the local terminal in raw mode and forwards keystrokes to
// the process until Leave is called or the process exits. Ctrl-C and
// Ctrl-Z are forwarded to the process and window resizes are propagated.
//
//	handle, err := s.Interact(expectr.Blocking())
//
// # Error Handling
//
// Errors are typed. Use errors.Is with the sentinels (ErrTimeout,
// ErrProcessGone, ErrUnsupported, ...) or errors.As with the error types
// (TimeoutError, ProcessError, CommandNotFoundError, ...).
//
// # MCP
//
// NewMCPServer exposes sessions as Model Context Protocol tools, so that
// an MCP client can drive terminal programs.
package expectr
