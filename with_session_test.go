package expectr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithSession(t *testing.T) {
	ctx := context.Background()

	var spawned Session

	err := WithSession(ctx, "cat", func(s Session) error {
		spawned = s

		if err := s.SendLine(ctx, "through the helper"); err != nil {
			return err
		}

		_, err := s.Expect(ctx, "through the helper")

		return err
	}, quiet()...)
	require.NoError(t, err)
	require.NotNil(t, spawned)
	require.False(t, spawned.Alive())
}

func TestWithSession_CallbackError(t *testing.T) {
	boom := errors.New("boom")

	err := WithSession(context.Background(), "cat", func(Session) error {
		return boom
	}, quiet()...)
	require.ErrorIs(t, err, boom)
}

func TestWithSession_SpawnError(t *testing.T) {
	called := false

	err := WithSession(context.Background(), "definitely-not-a-real-command-xyz", func(Session) error {
		called = true

		return nil
	}, quiet()...)
	require.Error(t, err)
	require.False(t, called)

	_, ok := errors.AsType[*CommandNotFoundError](err)
	require.True(t, ok)
}

func TestWithSession_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithSession(ctx, "cat", func(Session) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}
