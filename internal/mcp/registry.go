package mcp

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registry is a name-ordered set of tools with their handlers.
type registry struct {
	mu    sync.RWMutex
	tools map[string]*registeredTool
	order []string
}

type registeredTool struct {
	tool    *mcp.Tool
	handler mcp.ToolHandler
}

func newRegistry() *registry {
	return &registry{tools: make(map[string]*registeredTool, 8)}
}

// add registers tool, replacing any tool of the same name.
func (r *registry) add(tool *mcp.Tool, handler mcp.ToolHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; !exists {
		r.order = append(r.order, tool.Name)
	}

	r.tools[tool.Name] = &registeredTool{tool: tool, handler: handler}
}

func (r *registry) lookup(name string) (*registeredTool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]

	return t, ok
}

// each calls fn for every tool in registration order.
func (r *registry) each(fn func(*registeredTool)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		fn(r.tools[name])
	}
}

// describe converts tool metadata into plain maps.
func describe(t *mcp.Tool) map[string]any {
	toolMap := map[string]any{
		"name":        t.Name,
		"description": t.Description,
	}

	if t.InputSchema != nil {
		if schemaMap, ok := toMap(t.InputSchema); ok {
			toolMap["inputSchema"] = schemaMap
		}
	}

	if t.Annotations != nil {
		if annotMap, ok := toMap(t.Annotations); ok {
			toolMap["annotations"] = annotMap
		}
	}

	return toolMap
}

func toMap(v any) (map[string]any, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}

	var out map[string]any
	if json.Unmarshal(data, &out) != nil {
		return nil, false
	}

	return out, true
}

// invoke runs the handler for name. Lookup, marshal and handler failures are
// encoded in the returned map rather than returned as errors.
func (r *registry) invoke(ctx context.Context, name string, input map[string]any) map[string]any {
	t, exists := r.lookup(name)
	if !exists {
		return errorMap("Tool not found: " + name)
	}

	inputBytes, err := json.Marshal(input)
	if err != nil {
		return errorMap("Failed to marshal input: " + err.Error())
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      name,
			Arguments: inputBytes,
		},
	}

	result, err := t.handler(ctx, req)
	if err != nil {
		return errorMap("Tool execution failed: " + err.Error())
	}

	return resultToMap(result)
}

func errorMap(text string) map[string]any {
	return map[string]any{
		"content":  []map[string]any{{"type": "text", "text": text}},
		"is_error": true,
	}
}

// resultToMap flattens a CallToolResult. Only text content is produced by
// the session tools, but other content kinds registered through AddTool are
// carried through.
func resultToMap(result *mcp.CallToolResult) map[string]any {
	if result == nil {
		return map[string]any{
			"content": []map[string]any{},
		}
	}

	content := make([]map[string]any, 0, len(result.Content))
	for _, c := range result.Content {
		switch v := c.(type) {
		case *mcp.TextContent:
			content = append(content, map[string]any{
				"type": "text",
				"text": v.Text,
			})
		case *mcp.ImageContent:
			content = append(content, map[string]any{
				"type":     "image",
				"data":     v.Data,
				"mimeType": v.MIMEType,
			})
		case *mcp.ResourceLink:
			content = append(content, map[string]any{
				"type": "resource_link",
				"uri":  v.URI,
				"name": v.Name,
			})
		}
	}

	resultMap := map[string]any{
		"content": content,
	}

	if result.IsError {
		resultMap["is_error"] = true
	}

	return resultMap
}
