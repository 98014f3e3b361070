package mcp

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/expectr-go/internal/config"
	"github.com/wagiedev/expectr-go/internal/session"
)

// ErrServerClosed is returned by spawn after Close.
var ErrServerClosed = stderrors.New("tool server closed")

// ToolServer serves session operations as MCP tools.
//
// The official SDK's Server is built for transport-based communication, so
// the tool server keeps its own registry for direct invocation through
// CallTool and replays it into a fresh *mcp.Server on demand.
type ToolServer struct {
	log     *slog.Logger
	name    string
	version string
	options *config.Options
	tools   *registry

	mu       sync.Mutex
	sessions map[string]*session.Session
	closed   bool
}

// NewToolServer creates a tool server with the session tools registered.
// options is the template for every spawned session; nil means defaults.
func NewToolServer(log *slog.Logger, name, version string, options *config.Options) *ToolServer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	s := &ToolServer{
		log:      log.With("component", "mcp"),
		name:     name,
		version:  version,
		options:  options,
		tools:    newRegistry(),
		sessions: make(map[string]*session.Session, 4),
	}

	s.registerSessionTools()

	return s
}

// Name returns the server name.
func (s *ToolServer) Name() string {
	return s.name
}

// Version returns the server version.
func (s *ToolServer) Version() string {
	return s.version
}

// AddTool registers an additional tool.
func (s *ToolServer) AddTool(tool *mcp.Tool, handler mcp.ToolHandler) {
	s.tools.add(tool, handler)
}

// ListTools returns metadata for all registered tools in registration order.
func (s *ToolServer) ListTools() []map[string]any {
	result := make([]map[string]any, 0, 8)
	s.tools.each(func(t *registeredTool) {
		result = append(result, describe(t.tool))
	})

	return result
}

// CallTool executes a tool by name with the given input.
// Tool failures are reported in the result with "is_error" set.
func (s *ToolServer) CallTool(ctx context.Context, name string, input map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.tools.invoke(ctx, name, input), nil
}

// Server builds an *mcp.Server carrying every registered tool.
func (s *ToolServer) Server() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: s.name, Version: s.version}, nil)
	s.tools.each(func(t *registeredTool) {
		server.AddTool(t.tool, t.handler)
	})

	return server
}

// Run serves the tools over transport until ctx is done or the client disconnects.
func (s *ToolServer) Run(ctx context.Context, transport mcp.Transport) error {
	s.log.Info("serving tools", "name", s.name, "version", s.version)

	return s.Server().Run(ctx, transport)
}

// Sessions returns the ids of the open sessions.
func (s *ToolServer) Sessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}

	return ids
}

// Close closes every open session. Later spawns fail.
func (s *ToolServer) Close() error {
	s.mu.Lock()
	s.closed = true
	sessions := s.sessions
	s.sessions = make(map[string]*session.Session)
	s.mu.Unlock()

	var errs []error

	for id, sess := range sessions {
		if err := sess.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close session %s: %w", id, err))
		}
	}

	return stderrors.Join(errs...)
}

func (s *ToolServer) register(sess *session.Session) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrServerClosed
	}

	id := ulid.Make().String()
	s.sessions[id] = sess

	return id, nil
}

func (s *ToolServer) lookup(id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown session %q", id)
	}

	return sess, nil
}

func (s *ToolServer) remove(id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown session %q", id)
	}

	delete(s.sessions, id)

	return sess, nil
}

// sessionOptions copies the template options with echo forced off.
func (s *ToolServer) sessionOptions() *config.Options {
	var opts config.Options
	if s.options != nil {
		opts = *s.options
	}

	flush := false
	opts.FlushBuffer = &flush
	opts.Output = io.Discard

	if opts.Logger == nil {
		opts.Logger = s.log
	}

	return &opts
}
