// Package mcpserver exposes the tool registry over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/guarzo/splitwise-mcp/common"
	"github.com/guarzo/splitwise-mcp/modules/tools"
)

const (
	Name    = "splitwise-mcp"
	Version = "1.0.0"
)

// Server registers every tool definition with an MCP server and renders
// results and failures as JSON text.
type Server struct {
	registry *tools.Registry
	logger   logrus.FieldLogger
	mcp      *server.MCPServer
}

// NewServer builds a Server over registry. A nil logger discards output.
func NewServer(registry *tools.Registry, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = common.DiscardLogger()
	}
	s := &Server{
		registry: registry,
		logger:   logger,
		mcp: server.NewMCPServer(Name, Version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}
	for _, def := range registry.Definitions() {
		s.mcp.AddTool(ToolFor(def), s.handler(def.Name))
	}
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio speaks MCP over in and out until ctx is done or in closes.
// Protocol-level errors go to errLog.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer, errLog *log.Logger) error {
	stdio := server.NewStdioServer(s.mcp)
	if errLog != nil {
		stdio.SetErrorLogger(errLog)
	}
	return stdio.Listen(ctx, in, out)
}

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.Call(ctx, name, req.GetArguments()), nil
	}
}

// Call runs one tool and renders its outcome. Failures come back as error
// results, never as Go errors, so the caller always sees the payload.
func (s *Server) Call(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	requestID := uuid.NewString()
	logger := s.logger.WithFields(logrus.Fields{"request_id": requestID, "tool": name})
	start := time.Now()

	result, err := s.registry.Invoke(ctx, name, args)
	if err != nil {
		logger.WithError(err).WithField("duration", time.Since(start)).Warn("tool call failed")
		return mcp.NewToolResultError(encodeError(ErrorPayload(err)))
	}

	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.WithError(err).Error("failed to encode tool result")
		return mcp.NewToolResultError(encodeError(ErrorPayload(err)))
	}
	logger.WithField("duration", time.Since(start)).Info("tool call")
	return mcp.NewToolResultText(string(body))
}

// ErrorPayload describes err the way tool callers expect:
// {"error": {"type": ..., "message": ...}} plus field, status_code and
// retry_after when known.
func ErrorPayload(err error) map[string]any {
	detail := map[string]any{"message": err.Error()}

	var ve *common.ValidationError
	var rl *common.RateLimitError
	var ae *common.APIError
	switch {
	case errors.As(err, &ve):
		detail["type"] = string(common.KindValidation)
		if ve.Field != "" {
			detail["field"] = ve.Field
		}
	case errors.As(err, &rl):
		detail["type"] = string(common.KindRateLimit)
		detail["status_code"] = rl.StatusCode
		if rl.RetryAfter > 0 {
			detail["retry_after"] = rl.RetryAfter
		}
	case errors.As(err, &ae):
		detail["type"] = string(ae.Kind)
		if ae.StatusCode != 0 {
			detail["status_code"] = ae.StatusCode
		}
	case errors.Is(err, tools.ErrUnknownTool):
		detail["type"] = "unknown_tool"
	default:
		detail["type"] = "internal"
	}
	return map[string]any{"error": detail}
}

func encodeError(v map[string]any) string {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return `{"error": {"type": "internal", "message": "unencodable error"}}`
	}
	return string(body)
}

// ToolFor converts a definition into its MCP schema.
func ToolFor(def tools.Definition) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(def.Description)}
	for _, p := range def.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}
		switch p.Type {
		case tools.TypeString:
			opts = append(opts, mcp.WithString(p.Name, props...))
		case tools.TypeInteger, tools.TypeNumber:
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		case tools.TypeBoolean:
			opts = append(opts, mcp.WithBoolean(p.Name, props...))
		case tools.TypeArray:
			if p.Items != nil {
				props = append(props, mcp.Items(p.Items))
			}
			opts = append(opts, mcp.WithArray(p.Name, props...))
		}
	}
	tool := mcp.NewTool(def.Name, opts...)
	for _, p := range def.Params {
		if p.Type != tools.TypeInteger {
			continue
		}
		if prop, ok := tool.InputSchema.Properties[p.Name].(map[string]any); ok {
			prop["type"] = string(tools.TypeInteger)
		}
	}
	return tool
}
