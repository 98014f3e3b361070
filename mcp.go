package expectr

import (
	internalmcp "github.com/wagiedev/expectr-go/internal/mcp"
)

// Version is the version reported by the MCP server.
const Version = "0.1.0"

// MCPServer exposes sessions as Model Context Protocol tools: spawn, send,
// expect, buffer, kill and close.
//
// Serve it over stdio with:
//
//	server := expectr.NewMCPServer(expectr.WithTimeout(10 * time.Second))
//	defer server.Close()
//
//	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
//	    log.Fatal(err)
//	}
type MCPServer = internalmcp.ToolServer

// NewMCPServer creates an MCP server. The options apply to every session
// it spawns, except that output is never echoed.
func NewMCPServer(opts ...Option) *MCPServer {
	options := applyOptions(opts)

	return internalmcp.NewToolServer(options.Logger, "expectr", Version, options)
}
