// Package mcp exposes expectr sessions as Model Context Protocol tools.
//
// A ToolServer keeps a registry of tools and a registry of live sessions
// keyed by ULID. Tools can be invoked directly through CallTool, or served
// over any MCP transport through the *mcp.Server returned by Server.
//
// Sessions opened through the tool server never echo their output.
package mcp
