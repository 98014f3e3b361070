//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	expectr "github.com/wagiedev/expectr-go"
)

func callText(t *testing.T, ctx context.Context, cs *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()

	result, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	require.False(t, result.IsError, "tool %s failed: %s", name, text.Text)

	return text.Text
}

// TestMCP_DriveShellOverProtocol drives a shell through a connected MCP client.
func TestMCP_DriveShellOverProtocol(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	server := expectr.NewMCPServer(quietOptions()...)
	defer server.Close()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ss, err := server.Server().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "integration", Version: "1.0.0"}, nil)

	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	defer cs.Close()

	var spawned struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(callText(t, ctx, cs, "spawn", map[string]any{
		"command": `read a; echo "sum=$((a + 1))"`,
	})), &spawned))

	callText(t, ctx, cs, "send", map[string]any{"session_id": spawned.SessionID, "text": "41", "newline": true})

	var matched struct {
		Groups []string `json:"groups"`
	}
	require.NoError(t, json.Unmarshal([]byte(callText(t, ctx, cs, "expect", map[string]any{
		"session_id": spawned.SessionID,
		"pattern":    `sum=(\d+)`,
		"regex":      true,
	})), &matched))
	require.Equal(t, []string{"42"}, matched.Groups)

	require.Equal(t, "closed", callText(t, ctx, cs, "close", map[string]any{"session_id": spawned.SessionID}))
}
