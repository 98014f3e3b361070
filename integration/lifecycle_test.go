//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	expectr "github.com/wagiedev/expectr-go"
)

// TestSession_ContextCancelDuringExpect tests that canceling the context
// unblocks a waiting expect without tearing down the session.
func TestSession_ContextCancelDuringExpect(t *testing.T) {
	s, err := expectr.Spawn(context.Background(), "cat", quietOptions()...)
	require.NoError(t, err)

	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err = s.Expect(ctx, "never printed")
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), 5*time.Second)
	require.True(t, s.Alive())
}

// TestSession_CloseStubbornProcess tests that Close escalates to SIGKILL
// when the process ignores SIGTERM.
func TestSession_CloseStubbornProcess(t *testing.T) {
	ctx := context.Background()

	s, err := expectr.Spawn(ctx, `trap "" TERM; echo armed; sleep 60`,
		quietOptions(expectr.WithGracePeriod(300*time.Millisecond))...)
	require.NoError(t, err)

	_, err = s.Expect(ctx, "armed")
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, s.Close())
	require.Less(t, time.Since(start), 5*time.Second)
	require.False(t, s.Alive())
}

// TestSession_KillThenSend tests that writes after the process dies fail
// with ErrProcessGone rather than hanging.
func TestSession_KillThenSend(t *testing.T) {
	ctx := context.Background()

	s, err := expectr.Spawn(ctx, "cat", quietOptions()...)
	require.NoError(t, err)

	defer s.Close()

	delivered, err := s.Kill("KILL")
	require.NoError(t, err)
	require.True(t, delivered)

	<-s.Done()

	err = s.SendLine(ctx, "anyone there")
	require.True(t, errors.Is(err, expectr.ErrProcessGone), "got %v", err)
}

// TestSession_RapidCloseReopen tests rapid close and reopen doesn't cause issues.
func TestSession_RapidCloseReopen(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	for i := range 5 {
		t.Run(fmt.Sprintf("iteration_%d", i), func(t *testing.T) {
			s, err := expectr.Spawn(ctx, "cat", quietOptions()...)
			require.NoError(t, err)

			require.NoError(t, s.SendLine(ctx, fmt.Sprintf("round %d", i)))

			_, err = s.Expect(ctx, fmt.Sprintf("round %d", i))
			require.NoError(t, err)

			require.NoError(t, s.Close())
		})
	}
}
