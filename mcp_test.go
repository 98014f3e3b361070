package expectr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMCPServer(t *testing.T) {
	server := NewMCPServer(quiet()...)
	defer server.Close()

	require.Equal(t, "expectr", server.Name())
	require.Equal(t, Version, server.Version())
	require.Len(t, server.ListTools(), 6)

	result, err := server.CallTool(context.Background(), "spawn", map[string]any{"command": "cat"})
	require.NoError(t, err)
	require.Nil(t, result["is_error"])
	require.Len(t, server.Sessions(), 1)

	require.NoError(t, server.Close())
	require.Empty(t, server.Sessions())
}
