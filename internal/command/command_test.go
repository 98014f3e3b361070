package command

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/expectr-go/internal/config"
	"github.com/wagiedev/expectr-go/internal/errors"
)

func TestNeedsShell(t *testing.T) {
	tests := []struct {
		cmdline string
		want    bool
	}{
		{cmdline: "ls /dev", want: false},
		{cmdline: "bc -q", want: false},
		{cmdline: "ls | wc -l", want: true},
		{cmdline: "echo $HOME", want: true},
		{cmdline: "sleep 1; echo done", want: true},
		{cmdline: `echo "quoted"`, want: true},
		{cmdline: "FOO=bar env", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.cmdline, func(t *testing.T) {
			require.Equal(t, tt.want, NeedsShell(tt.cmdline))
		})
	}
}

func TestBuildArgs(t *testing.T) {
	options := (&config.Options{Shell: "/bin/dash"}).WithDefaults()

	require.Equal(t, []string{"ls", "-l", "/dev"}, BuildArgs("ls   -l /dev", options))
	require.Equal(t, []string{"/bin/dash", "-c", "ls | wc -l"}, BuildArgs("ls | wc -l", options))
}

func TestBuildEnvironment(t *testing.T) {
	options := &config.Options{Env: map[string]string{"EXPECTR_TEST": "1"}}

	env := BuildEnvironment(options)

	require.True(t, slices.Contains(env, "EXPECTR_TEST=1"))
	require.True(t, slices.ContainsFunc(env, func(kv string) bool {
		return len(kv) > 5 && kv[:5] == "TERM="
	}))
}

func TestDiscoverer_NotFound(t *testing.T) {
	discoverer := NewDiscoverer(&Config{
		Program: "/nonexistent/path/to/program",
		Logger:  slog.Default(),
	})

	_, err := discoverer.Discover(context.Background())

	require.Error(t, err)
	require.IsType(t, &errors.CommandNotFoundError{}, err)
}

func TestDiscoverer_NotInPath(t *testing.T) {
	discoverer := NewDiscoverer(&Config{Program: "expectr-no-such-program-xyz"})

	_, err := discoverer.Discover(context.Background())

	notFound, ok := stderrors.AsType[*errors.CommandNotFoundError](err)
	require.True(t, ok)
	require.Equal(t, "$PATH", notFound.SearchedPaths[0])
	require.Contains(t, notFound.SearchedPaths, "/usr/bin/expectr-no-such-program-xyz")
}

func TestDiscoverer_ExplicitPath(t *testing.T) {
	tmpDir := t.TempDir()
	fake := filepath.Join(tmpDir, "prog")

	err := os.WriteFile(fake, []byte("#!/bin/sh\necho hi"), 0o755)
	require.NoError(t, err)

	path, err := NewDiscoverer(&Config{Program: fake}).Discover(context.Background())

	require.NoError(t, err)
	require.Equal(t, fake, path)
}

func TestDiscoverer_NotExecutable(t *testing.T) {
	tmpDir := t.TempDir()
	fake := filepath.Join(tmpDir, "data")

	err := os.WriteFile(fake, []byte("plain"), 0o644)
	require.NoError(t, err)

	_, err = NewDiscoverer(&Config{Program: fake}).Discover(context.Background())

	require.IsType(t, &errors.CommandNotFoundError{}, err)
}

func TestBuild(t *testing.T) {
	options := (&config.Options{Dir: os.TempDir()}).WithDefaults()

	t.Run("empty command", func(t *testing.T) {
		_, err := Build(context.Background(), slog.Default(), "   ", options)

		argErr, ok := stderrors.AsType[*errors.ArgumentError](err)
		require.True(t, ok)
		require.Equal(t, "command", argErr.Argument)
	})

	t.Run("shell command", func(t *testing.T) {
		cmd, err := Build(context.Background(), slog.Default(), "echo hi | cat", options)

		require.NoError(t, err)
		require.Equal(t, []string{"/bin/sh", "-c", "echo hi | cat"}, cmd.Args)
		require.Equal(t, os.TempDir(), cmd.Dir)
	})

	t.Run("unknown program", func(t *testing.T) {
		_, err := Build(context.Background(), slog.Default(), "expectr-no-such-program-xyz", options)

		require.ErrorAs(t, err, new(*errors.CommandNotFoundError))
	})
}
