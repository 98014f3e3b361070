package expectr

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimeoutError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("login: %w", &TimeoutError{Pattern: "Password:", After: time.Second})

	require.ErrorIs(t, err, ErrTimeout)
	require.Contains(t, err.Error(), "Password:")

	timeoutErr, ok := errors.AsType[*TimeoutError](err)
	require.True(t, ok)
	require.Equal(t, time.Second, timeoutErr.After)
	require.True(t, timeoutErr.Timeout())
}

func TestProcessError_Unwraps(t *testing.T) {
	err := &ProcessError{Pid: 42, Op: "send", Err: ErrProcessGone}

	require.ErrorIs(t, err, ErrProcessGone)
	require.Contains(t, err.Error(), "pid 42")
}

func TestUnsupportedOperationError_MatchesSentinel(t *testing.T) {
	err := &UnsupportedOperationError{Operation: "kill", Transport: "func"}

	require.ErrorIs(t, err, ErrUnsupported)
	require.Equal(t, "kill not supported by func transport", err.Error())
}

func TestErrorTypes_ImplementExpectrError(t *testing.T) {
	for _, err := range []error{
		&ArgumentError{Argument: "timeout", Reason: "must be positive"},
		&PatternTypeError{Value: 3},
		&TimeoutError{},
		&ProcessError{Op: "kill", Err: ErrProcessNotRunning},
		&UnsupportedOperationError{},
		&CommandNotFoundError{Command: "nope"},
		&TransportError{Op: "write", Err: ErrProcessGone},
	} {
		expectrErr, ok := errors.AsType[ExpectrError](err)
		require.True(t, ok, "%T", err)
		require.True(t, expectrErr.IsExpectrError())
	}
}
