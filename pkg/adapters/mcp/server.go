// Package mcp exposes simulation sessions as MCP tools over stdio,
// letting agent hosts drive a flow the same way the REST gateway does.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/internal/presentation/graph"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
	"github.com/espalier-dev/espalier/pkg/session"
)

// RunResponse is the structured result shared by the run tools.
type RunResponse struct {
	SessionID string          `json:"session_id" jsonschema_description:"The session this snapshot belongs to"`
	Snapshot  domain.Snapshot `json:"snapshot" jsonschema_description:"The current run snapshot"`
}

// Server wraps a session manager and exposes it as an MCP server.
type Server struct {
	sessions  *session.Manager
	source    ports.FlowSource
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for tool call events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates an MCP server over a session manager.
func NewServer(sessions *session.Manager, source ports.FlowSource, version string, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		source:    source,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("espalier-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	startTool := mcp.NewTool("start_simulation",
		mcp.WithDescription("Start (or restart) a simulation run. Creates a new session when session_id is omitted."),
		mcp.WithString("session_id", mcp.Description("Existing session to restart (optional)")),
		mcp.WithOutputSchema[RunResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStart))

	inputTool := mcp.NewTool("submit_input",
		mcp.WithDescription("Submit user input to a run that is waiting for input."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Target session ID")),
		mcp.WithString("text", mcp.Required(), mcp.Description("The user's input text")),
		mcp.WithOutputSchema[RunResponse](),
	)
	s.mcpServer.AddTool(inputTool, mcp.NewStructuredToolHandler(s.handleInput))

	snapshotTool := mcp.NewTool("get_snapshot",
		mcp.WithDescription("Read the current run snapshot: status, transcript, debug log, and captured variables."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Target session ID")),
		mcp.WithOutputSchema[RunResponse](),
	)
	s.mcpServer.AddTool(snapshotTool, mcp.NewStructuredToolHandler(s.handleSnapshot))

	s.mcpServer.AddTool(mcp.NewTool("get_flow",
		mcp.WithDescription("Get the flow definition this instance simulates."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		flow, err := s.source.Snapshot(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("flow load failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(flow)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunResponse, error) {
	id, _ := args["session_id"].(string)
	if id == "" {
		created, err := s.sessions.Create(ctx)
		if err != nil {
			return RunResponse{}, fmt.Errorf("session create failed: %w", err)
		}
		id = created
	}

	if err := s.sessions.Start(ctx, id); err != nil {
		s.logger.Warn("mcp start failed", "session", id, "error", err)
		return RunResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return s.runResponse(ctx, id)
}

func (s *Server) handleInput(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunResponse, error) {
	id, _ := args["session_id"].(string)
	text, _ := args["text"].(string)

	if err := s.sessions.Input(ctx, id, text); err != nil {
		s.logger.Warn("mcp input rejected", "session", id, "error", err)
		return RunResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	return s.runResponse(ctx, id)
}

func (s *Server) handleSnapshot(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunResponse, error) {
	id, _ := args["session_id"].(string)
	return s.runResponse(ctx, id)
}

func (s *Server) runResponse(ctx context.Context, id string) (RunResponse, error) {
	snap, err := s.sessions.Snapshot(ctx, id)
	if err != nil {
		return RunResponse{}, fmt.Errorf("snapshot failed: %w", err)
	}
	return RunResponse{SessionID: id, Snapshot: snap}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("espalier://flow", "Current Flow Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		flow, err := s.source.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load flow: %w", err)
		}
		jsonBytes, _ := json.Marshal(flow)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "espalier://flow",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource("espalier://flow/mermaid", "Flow Diagram (Mermaid)",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		flow, err := s.source.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load flow: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "espalier://flow/mermaid",
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(flow, nil),
			},
		}, nil
	})
}
