package expectr

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplyOptions(t *testing.T) {
	var out bytes.Buffer

	options := applyOptions([]Option{
		WithLogger(NopLogger()),
		WithTimeout(3 * time.Second),
		WithBufferSize(512),
		WithConstrain(true),
		WithFlushBuffer(false),
		WithForceMatch(true),
		WithHistorySize(1024),
		WithPollInterval(20 * time.Millisecond),
		WithOutput(&out),
		WithWindowSize(40, 120),
		WithEnv(map[string]string{"A": "1"}),
		WithDir("/tmp"),
		WithShell("/bin/bash"),
		WithGracePeriod(time.Second),
	})

	require.NotNil(t, options.Logger)
	require.Equal(t, 3*time.Second, options.Timeout)
	require.Equal(t, 512, options.BufferSize)
	require.True(t, options.Constrain)
	require.NotNil(t, options.FlushBuffer)
	require.False(t, *options.FlushBuffer)
	require.True(t, options.ForceMatch)
	require.Equal(t, 1024, options.HistorySize)
	require.Equal(t, 20*time.Millisecond, options.PollInterval)
	require.Same(t, &out, options.Output)
	require.Equal(t, &Winsize{Rows: 40, Cols: 120}, options.WindowSize)
	require.Equal(t, map[string]string{"A": "1"}, options.Env)
	require.Equal(t, "/tmp", options.Dir)
	require.Equal(t, "/bin/bash", options.Shell)
	require.Equal(t, time.Second, options.GracePeriod)
}

func TestNopLogger(t *testing.T) {
	require.Equal(t, slog.DiscardHandler, NopLogger().Handler())
	require.False(t, NopLogger().Enabled(context.Background(), slog.LevelError))
}

func TestApplyOptions_Empty(t *testing.T) {
	options := applyOptions(nil)

	require.Nil(t, options.FlushBuffer)
	require.Zero(t, options.Timeout)
}

func TestApplyExpectOptions(t *testing.T) {
	options := applyExpectOptions([]ExpectOption{
		Recoverable(),
		ExpectTimeout(time.Second),
		ForceMatch(false),
	})

	require.True(t, options.Recoverable)
	require.Equal(t, time.Second, options.Timeout)
	require.NotNil(t, options.ForceMatch)
	require.False(t, *options.ForceMatch)

	require.Nil(t, applyExpectOptions(nil).ForceMatch)
}

func TestApplyInteractOptions(t *testing.T) {
	defaults := applyInteractOptions(nil)
	require.True(t, defaults.Flush)
	require.False(t, defaults.Blocking)

	options := applyInteractOptions([]InteractOption{
		Blocking(),
		InteractFlush(false),
		InteractPollInterval(50 * time.Millisecond),
	})
	require.True(t, options.Blocking)
	require.False(t, options.Flush)
	require.Equal(t, 50*time.Millisecond, options.PollInterval)
}
