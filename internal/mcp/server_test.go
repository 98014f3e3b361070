package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func resultText(t *testing.T, result map[string]any) string {
	t.Helper()

	content, ok := result["content"].([]map[string]any)
	require.True(t, ok, "expected content list")
	require.NotEmpty(t, content)

	text, ok := content[0]["text"].(string)
	require.True(t, ok, "expected text content")

	return text
}

func callOK(t *testing.T, server *ToolServer, name string, input map[string]any) string {
	t.Helper()

	result, err := server.CallTool(context.Background(), name, input)
	require.NoError(t, err)
	require.Nil(t, result["is_error"], "tool %s failed: %v", name, result)

	return resultText(t, result)
}

func spawn(t *testing.T, server *ToolServer, command string) string {
	t.Helper()

	var spawned spawnResult
	require.NoError(t, json.Unmarshal([]byte(callOK(t, server, ToolSpawn, map[string]any{
		"command":         command,
		"timeout_seconds": 5,
	})), &spawned))
	require.NotEmpty(t, spawned.SessionID)
	require.Positive(t, spawned.Pid)

	return spawned.SessionID
}

func TestToolServerListTools(t *testing.T) {
	server := NewToolServer(nil, "expectr", "1.0.0", nil)
	defer server.Close()

	require.Equal(t, "expectr", server.Name())
	require.Equal(t, "1.0.0", server.Version())

	tools := server.ListTools()
	names := make([]string, 0, len(tools))

	for _, tool := range tools {
		names = append(names, tool["name"].(string))

		schema, ok := tool["inputSchema"].(map[string]any)
		require.True(t, ok, "expected inputSchema to be serialized as a map")
		require.Equal(t, "object", schema["type"])
	}

	require.Equal(t, []string{ToolSpawn, ToolSend, ToolExpect, ToolBuffer, ToolKill, ToolClose}, names)
}

func TestToolServerSessionRoundTrip(t *testing.T) {
	server := NewToolServer(nil, "expectr", "1.0.0", nil)
	defer server.Close()

	id := spawn(t, server, "cat")
	require.Equal(t, []string{id}, server.Sessions())

	callOK(t, server, ToolSend, map[string]any{"session_id": id, "text": "ping 42", "newline": true})

	var matched expectResult
	require.NoError(t, json.Unmarshal([]byte(callOK(t, server, ToolExpect, map[string]any{
		"session_id": id,
		"pattern":    `ping (\d+)`,
		"regex":      true,
	})), &matched))
	require.Equal(t, "ping 42", matched.Text)
	require.Equal(t, []string{"42"}, matched.Groups)

	var buffered bufferResult
	require.NoError(t, json.Unmarshal([]byte(callOK(t, server, ToolBuffer, map[string]any{
		"session_id": id,
	})), &buffered))
	require.True(t, buffered.Alive)
	require.Positive(t, buffered.Pid)

	require.Equal(t, "closed", callOK(t, server, ToolClose, map[string]any{"session_id": id}))
	require.Empty(t, server.Sessions())

	result, err := server.CallTool(context.Background(), ToolBuffer, map[string]any{"session_id": id})
	require.NoError(t, err)
	require.Equal(t, true, result["is_error"])
	require.Contains(t, resultText(t, result), "unknown session")
}

func TestToolServerExpectTimeout(t *testing.T) {
	server := NewToolServer(nil, "expectr", "1.0.0", nil)
	defer server.Close()

	id := spawn(t, server, "cat")
	callOK(t, server, ToolSend, map[string]any{"session_id": id, "text": "partial", "newline": true})

	result, err := server.CallTool(context.Background(), ToolExpect, map[string]any{
		"session_id":      id,
		"pattern":         "never printed",
		"timeout_seconds": 0.2,
	})
	require.NoError(t, err)
	require.Equal(t, true, result["is_error"])
	require.Contains(t, resultText(t, result), "no match")
}

func TestToolServerKill(t *testing.T) {
	server := NewToolServer(nil, "expectr", "1.0.0", nil)
	defer server.Close()

	id := spawn(t, server, "sleep 30")

	var killed killResult
	require.NoError(t, json.Unmarshal([]byte(callOK(t, server, ToolKill, map[string]any{
		"session_id": id,
		"signal":     "KILL",
	})), &killed))
	require.True(t, killed.Delivered)

	result, err := server.CallTool(context.Background(), ToolKill, map[string]any{
		"session_id": id,
		"signal":     "NOPE",
	})
	require.NoError(t, err)
	require.Equal(t, true, result["is_error"])
}

func TestToolServerSpawnErrors(t *testing.T) {
	server := NewToolServer(nil, "expectr", "1.0.0", nil)
	defer server.Close()

	for _, input := range []map[string]any{
		{"command": ""},
		{"command": "definitely-not-a-real-command-xyz"},
		{"command": 42},
	} {
		result, err := server.CallTool(context.Background(), ToolSpawn, input)
		require.NoError(t, err)
		require.Equal(t, true, result["is_error"], "input %v", input)
	}

	require.Empty(t, server.Sessions())
}

func TestToolServerClose(t *testing.T) {
	server := NewToolServer(nil, "expectr", "1.0.0", nil)

	spawn(t, server, "cat")
	spawn(t, server, "cat")
	require.Len(t, server.Sessions(), 2)

	require.NoError(t, server.Close())
	require.Empty(t, server.Sessions())

	result, err := server.CallTool(context.Background(), ToolSpawn, map[string]any{"command": "cat"})
	require.NoError(t, err)
	require.Equal(t, true, result["is_error"])
	require.Contains(t, resultText(t, result), ErrServerClosed.Error())
}

func TestToolServerCustomTool(t *testing.T) {
	server := NewToolServer(nil, "expectr", "1.0.0", nil)
	defer server.Close()

	server.AddTool(
		NewTool("fails", "always fails", ObjectSchema(nil)),
		func(_ context.Context, _ *mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
			return nil, errors.New("boom")
		},
	)

	result, err := server.CallTool(context.Background(), "fails", map[string]any{})
	require.NoError(t, err)
	require.Equal(t, true, result["is_error"])
	require.Contains(t, resultText(t, result), "boom")

	missing, err := server.CallTool(context.Background(), "unknown", map[string]any{})
	require.NoError(t, err)
	require.Equal(t, true, missing["is_error"])
}

func TestToolServerCallTool_CanceledContext(t *testing.T) {
	server := NewToolServer(nil, "expectr", "1.0.0", nil)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := server.CallTool(ctx, ToolBuffer, map[string]any{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestServerCarriesTools(t *testing.T) {
	server := NewToolServer(nil, "expectr", "1.0.0", nil)
	defer server.Close()

	ctx := context.Background()
	serverTransport, clientTransport := mcpgo.NewInMemoryTransports()

	serverSession, err := server.Server().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcpgo.NewClient(&mcpgo.Implementation{Name: "test", Version: "1.0.0"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer clientSession.Close()

	listed, err := clientSession.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, listed.Tools, 6)

	called, err := clientSession.CallTool(ctx, &mcpgo.CallToolParams{
		Name:      ToolBuffer,
		Arguments: map[string]any{"session_id": "missing"},
	})
	require.NoError(t, err)
	require.True(t, called.IsError)
}
