package expectr

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func quiet() []Option {
	return []Option{
		WithFlushBuffer(false),
		WithOutput(io.Discard),
		WithTimeout(5 * time.Second),
		WithPollInterval(20 * time.Millisecond),
		WithGracePeriod(500 * time.Millisecond),
	}
}

// scripted returns a producer that yields lines one call at a time, then EOF.
func scripted(lines ...string) Producer {
	var mu sync.Mutex

	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()

		if len(lines) == 0 {
			return "", io.EOF
		}

		out := lines[0]
		lines = lines[1:]

		return out, nil
	}
}

func TestSpawn_ShellRoundTrip(t *testing.T) {
	ctx := context.Background()

	s, err := Spawn(ctx, `read name; echo "hello, $name"`, quiet()...)
	require.NoError(t, err)

	defer s.Close()

	require.Positive(t, s.Pid())
	require.NoError(t, s.SendLine(ctx, "world"))

	m, err := s.Expect(ctx, regexp.MustCompile(`hello, (\w+)`))
	require.NoError(t, err)
	require.Equal(t, "world", m.Group(1))

	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("process exit not observed")
	}

	require.False(t, s.Alive())
}

func TestSpawnCmd(t *testing.T) {
	ctx := context.Background()

	s, err := SpawnCmd(ctx, exec.Command("echo", "prepared"), quiet()...)
	require.NoError(t, err)

	defer s.Close()

	_, err = s.Expect(ctx, "prepared")
	require.NoError(t, err)
}

func TestFromFuncs_Expect(t *testing.T) {
	ctx := context.Background()

	s, err := FromFuncs(ctx, scripted("Login as root@host: ", "ok"), func(string) error { return nil }, quiet()...)
	require.NoError(t, err)

	defer s.Close()

	m, err := s.Expect(ctx, "root@host")
	require.NoError(t, err)
	require.Equal(t, "root@host", m.Text)
	require.Equal(t, "Login as ", s.Discard())

	m, err = s.Expect(ctx, "never", Recoverable(), ExpectTimeout(100*time.Millisecond))
	require.NoError(t, err)
	require.Nil(t, m)

	_, err = s.Expect(ctx, "never", ExpectTimeout(100*time.Millisecond))
	require.ErrorIs(t, err, ErrTimeout)

	_, err = s.Expect(ctx, 42)
	_, ok := errors.AsType[*PatternTypeError](err)
	require.True(t, ok)
}

func TestFromFuncs_ExpectMap(t *testing.T) {
	ctx := context.Background()

	s, err := FromFuncs(ctx, scripted("Password: "), func(string) error { return nil }, quiet()...)
	require.NoError(t, err)

	defer s.Close()

	var fired string

	m, err := s.ExpectMap(ctx, ExpectCases{
		Cases: []Case{
			{Pattern: "login:"},
			{Pattern: regexp.MustCompile(`(Pass)word:`), Action: func(m *Match) error {
				fired = m.Group(1)

				return nil
			}},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, m.Case)
	require.Equal(t, "Pass", fired)
}

func TestFromFuncs_KillUnsupported(t *testing.T) {
	idle := func() (string, error) { return "", nil }

	s, err := FromFuncs(context.Background(), idle, func(string) error { return nil }, quiet()...)
	require.NoError(t, err)

	defer s.Close()

	require.Zero(t, s.Pid())

	_, err = s.Kill("TERM")
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestAdopt_Pipes(t *testing.T) {
	ctx := context.Background()

	cmd := exec.Command("cat")
	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())

	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})

	s, err := Adopt(ctx, stdin, stdout, cmd.Process.Pid, quiet()...)
	require.NoError(t, err)

	defer s.Close()

	require.Equal(t, cmd.Process.Pid, s.Pid())
	require.NoError(t, s.SendLine(ctx, "adopted line"))

	_, err = s.Expect(ctx, "adopted line")
	require.NoError(t, err)

	_, err = s.WindowSize()
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestSpawn_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Spawn(ctx, "", quiet()...)
	_, ok := errors.AsType[*ArgumentError](err)
	require.True(t, ok)

	_, err = Spawn(ctx, "definitely-not-a-real-command-xyz", quiet()...)
	notFound, ok := errors.AsType[*CommandNotFoundError](err)
	require.True(t, ok)
	require.Equal(t, "definitely-not-a-real-command-xyz", notFound.Command)

	_, err = Spawn(ctx, "cat", WithTimeout(-time.Second))
	_, ok = errors.AsType[*ArgumentError](err)
	require.True(t, ok)
}

func TestSession_Settings(t *testing.T) {
	s, err := Spawn(context.Background(), "cat", append(quiet(), WithWindowSize(30, 100))...)
	require.NoError(t, err)

	defer s.Close()

	ws, err := s.WindowSize()
	require.NoError(t, err)
	require.Equal(t, uint16(30), ws.Rows)
	require.Equal(t, uint16(100), ws.Cols)

	require.NoError(t, s.SetTimeout(time.Second))
	require.Equal(t, time.Second, s.Timeout())

	s.SetConstrain(true)
	require.True(t, s.Constrain())

	require.NoError(t, s.SetBufferSize(64))
	require.Equal(t, 64, s.BufferSize())
	require.Error(t, s.SetBufferSize(0))

	require.False(t, s.FlushBuffer())
	s.SetFlushBuffer(true)
	require.True(t, s.FlushBuffer())
}

func TestSession_Interact(t *testing.T) {
	var (
		mu  sync.Mutex
		got strings.Builder
	)

	consumer := func(in string) error {
		mu.Lock()
		defer mu.Unlock()

		got.WriteString(in)

		return nil
	}

	opts := append(quiet(), WithInput(strings.NewReader("keys")))

	s, err := FromFuncs(context.Background(), func() (string, error) { return "", nil }, consumer, opts...)
	require.NoError(t, err)

	defer s.Close()

	h, err := s.Interact(Blocking(), InteractPollInterval(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, h.Wait())
	require.True(t, s.FlushBuffer())
	require.False(t, s.Interacting())

	mu.Lock()
	defer mu.Unlock()

	require.Equal(t, "keys", got.String())
}

func TestSession_CloseIdempotent(t *testing.T) {
	ctx := context.Background()

	s, err := Spawn(ctx, "sleep 30", quiet()...)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.False(t, s.Alive())

	err = s.Send(ctx, "late")
	require.ErrorIs(t, err, ErrSessionClosed)
}
