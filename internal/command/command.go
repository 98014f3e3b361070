package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/wagiedev/expectr-go/internal/config"
	"github.com/wagiedev/expectr-go/internal/errors"
)

// shellMeta are the characters that force a command string through the shell.
const shellMeta = "*?{}[]<>()~&|\\$;'`\"\n#="

// NeedsShell reports whether cmdline relies on shell interpretation.
func NeedsShell(cmdline string) bool {
	return strings.ContainsAny(cmdline, shellMeta)
}

// BuildArgs splits cmdline into argv. Command strings that need a shell
// become [shell, "-c", cmdline].
func BuildArgs(cmdline string, options *config.Options) []string {
	if NeedsShell(cmdline) {
		return []string{options.Shell, "-c", cmdline}
	}

	return strings.Fields(cmdline)
}

// BuildEnvironment returns the environment for a spawned process.
func BuildEnvironment(options *config.Options) []string {
	// Start with current environment
	env := os.Environ()

	if os.Getenv("TERM") == "" {
		env = append(env, "TERM=xterm")
	}

	// Add or override with user-provided environment variables
	for key, value := range options.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return env
}

// Build resolves cmdline into an *exec.Cmd ready to be started on a pseudoterminal.
//
// The command is not bound to ctx: a spawned program lives until the session
// ends, not until the constructor's context does.
func Build(ctx context.Context, log *slog.Logger, cmdline string, options *config.Options) (*exec.Cmd, error) {
	if strings.TrimSpace(cmdline) == "" {
		return nil, &errors.ArgumentError{Argument: "command", Reason: "must not be empty"}
	}

	args := BuildArgs(cmdline, options)
	log.Debug("Built command arguments", "args", args)

	path, err := NewDiscoverer(&Config{Program: args[0], Logger: log}).Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", args[0], err)
	}

	//nolint:gosec // G204: running caller-supplied commands is the point of a spawn
	cmd := exec.Command(path, args[1:]...)
	cmd.Args[0] = args[0]
	cmd.Env = BuildEnvironment(options)
	cmd.Dir = options.Dir

	return cmd, nil
}
