package mcp

import (
	"context"
	stderrors "errors"
	"regexp"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/expectr-go/internal/errors"
	"github.com/wagiedev/expectr-go/internal/session"
)

// Tool names.
const (
	ToolSpawn  = "spawn"
	ToolSend   = "send"
	ToolExpect = "expect"
	ToolBuffer = "buffer"
	ToolKill   = "kill"
	ToolClose  = "close"
)

type spawnArgs struct {
	Command        string   `json:"command"`
	TimeoutSeconds *float64 `json:"timeout_seconds,omitempty"`
}

type spawnResult struct {
	SessionID string `json:"session_id"`
	Pid       int    `json:"pid"`
}

type sendArgs struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	Newline   bool   `json:"newline,omitempty"`
}

type expectArgs struct {
	SessionID      string   `json:"session_id"`
	Pattern        string   `json:"pattern"`
	Regex          bool     `json:"regex,omitempty"`
	TimeoutSeconds *float64 `json:"timeout_seconds,omitempty"`
}

type expectResult struct {
	Text    string   `json:"text"`
	Discard string   `json:"discard"`
	Groups  []string `json:"groups"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type bufferResult struct {
	Buffer  string `json:"buffer"`
	Discard string `json:"discard"`
	Alive   bool   `json:"alive"`
	Pid     int    `json:"pid"`
}

type killArgs struct {
	SessionID string `json:"session_id"`
	Signal    string `json:"signal,omitempty"`
}

type killResult struct {
	Delivered bool `json:"delivered"`
}

var sessionIDProperty = Property{
	Type:        "string",
	Description: "Session id returned by spawn",
	Required:    true,
}

func (s *ToolServer) registerSessionTools() {
	s.AddTool(NewTool(ToolSpawn, "Spawn a command in a pseudoterminal and return its session id",
		ObjectSchema(map[string]Property{
			"command":         {Type: "string", Description: "Command line to run", Required: true},
			"timeout_seconds": {Type: "number", Description: "Default expect timeout for the session"},
		})), s.handleSpawn)

	s.AddTool(NewTool(ToolSend, "Send text to a session's input",
		ObjectSchema(map[string]Property{
			"session_id": sessionIDProperty,
			"text":       {Type: "string", Description: "Text to send", Required: true},
			"newline":    {Type: "boolean", Description: "Append a newline"},
		})), s.handleSend)

	s.AddTool(NewTool(ToolExpect, "Wait for a pattern in a session's output",
		ObjectSchema(map[string]Property{
			"session_id":      sessionIDProperty,
			"pattern":         {Type: "string", Description: "Literal text, or a regular expression when regex is set", Required: true},
			"regex":           {Type: "boolean", Description: "Treat pattern as a regular expression"},
			"timeout_seconds": {Type: "number", Description: "Override the session timeout"},
		})), s.handleExpect)

	s.AddTool(NewTool(ToolBuffer, "Show a session's unconsumed output",
		ObjectSchema(map[string]Property{
			"session_id": sessionIDProperty,
		})), s.handleBuffer)

	s.AddTool(NewTool(ToolKill, "Send a signal to a session's process",
		ObjectSchema(map[string]Property{
			"session_id": sessionIDProperty,
			"signal":     {Type: "string", Description: "Signal name or number, TERM by default"},
		})), s.handleKill)

	s.AddTool(NewTool(ToolClose, "Close a session and release its process",
		ObjectSchema(map[string]Property{
			"session_id": sessionIDProperty,
		})), s.handleClose)
}

func seconds(v *float64) time.Duration {
	if v == nil || *v <= 0 {
		return 0
	}

	return time.Duration(*v * float64(time.Second))
}

func (s *ToolServer) handleSpawn(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := DecodeArguments[spawnArgs](req)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	opts := s.sessionOptions()
	if d := seconds(args.TimeoutSeconds); d > 0 {
		opts.Timeout = d
	}

	sess, err := session.Spawn(ctx, args.Command, opts)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	id, err := s.register(sess)
	if err != nil {
		_ = sess.Close()

		return ErrorResult(err.Error()), nil
	}

	s.log.Debug("session spawned", "session_id", id, "command", args.Command, "pid", sess.Pid())

	return JSONResult(spawnResult{SessionID: id, Pid: sess.Pid()}), nil
}

func (s *ToolServer) handleSend(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := DecodeArguments[sendArgs](req)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	sess, err := s.lookup(args.SessionID)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	if args.Newline {
		err = sess.SendLine(ctx, args.Text)
	} else {
		err = sess.Send(ctx, args.Text)
	}

	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	return TextResult("ok"), nil
}

func (s *ToolServer) handleExpect(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := DecodeArguments[expectArgs](req)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	sess, err := s.lookup(args.SessionID)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	var pattern any = args.Pattern

	if args.Regex {
		re, err := regexp.Compile(args.Pattern)
		if err != nil {
			return ErrorResult("invalid pattern: " + err.Error()), nil
		}

		pattern = re
	}

	m, err := sess.Expect(ctx, pattern, session.ExpectOptions{Timeout: seconds(args.TimeoutSeconds)})
	if err != nil {
		if stderrors.Is(err, errors.ErrTimeout) {
			return ErrorResult(err.Error() + "; buffer: " + sess.Buffer()), nil
		}

		return ErrorResult(err.Error()), nil
	}

	return JSONResult(expectResult{
		Text:    m.Text,
		Discard: sess.Discard(),
		Groups:  m.Groups[1:],
	}), nil
}

func (s *ToolServer) handleBuffer(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := DecodeArguments[sessionArgs](req)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	sess, err := s.lookup(args.SessionID)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	return JSONResult(bufferResult{
		Buffer:  sess.Buffer(),
		Discard: sess.Discard(),
		Alive:   sess.Alive(),
		Pid:     sess.Pid(),
	}), nil
}

func (s *ToolServer) handleKill(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := DecodeArguments[killArgs](req)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	sess, err := s.lookup(args.SessionID)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	delivered, err := sess.Kill(args.Signal)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	return JSONResult(killResult{Delivered: delivered}), nil
}

func (s *ToolServer) handleClose(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := DecodeArguments[sessionArgs](req)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	sess, err := s.remove(args.SessionID)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	if err := sess.Close(); err != nil {
		return ErrorResult(err.Error()), nil
	}

	s.log.Debug("session closed", "session_id", args.SessionID)

	return TextResult("closed"), nil
}
