// Package mcp exposes the diagram engine as an MCP server so an
// assistant can inspect a diagram and propose edits. All mutation goes
// through the same change-set path as every other adapter; the
// assistant never touches engine state directly.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/flume"
	"github.com/aretw0/flume/internal/logging"
	"github.com/aretw0/flume/pkg/balance"
	"github.com/aretw0/flume/pkg/changes"
	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/ports"
	"github.com/aretw0/flume/pkg/session"
)

// DiagramResponse is the unified structure every tool returns.
type DiagramResponse struct {
	State       *domain.DiagramState `json:"state,omitempty" jsonschema_description:"The current diagram state"`
	CanUndo     bool                 `json:"can_undo" jsonschema_description:"Whether an undo step is available"`
	CanRedo     bool                 `json:"can_redo" jsonschema_description:"Whether a redo step is available"`
	Diagnostics []string             `json:"diagnostics,omitempty" jsonschema_description:"Parse diagnostics for the submitted text"`
}

// BalanceResponse carries the flow conservation analysis.
type BalanceResponse struct {
	Balanced   bool                        `json:"balanced" jsonschema_description:"Whether every intermediate node conserves flow"`
	PerNode    map[string]balance.NodeFlow `json:"per_node" jsonschema_description:"Inflow, outflow and balance per node"`
	Imbalanced []balance.ImbalancedNode    `json:"imbalanced" jsonschema_description:"Nodes whose totals differ beyond tolerance"`
}

// Server wraps the session Manager and exposes it as an MCP Server.
type Server struct {
	manager   *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger for server events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(manager *session.Manager, opts ...Option) *Server {
	s := &Server{
		manager:   manager,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("flume-mcp", flume.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	getTool := mcp.NewTool("get_diagram",
		mcp.WithDescription("Get the full state of a diagram: flows, styling, layout, settings and the textual source."),
		mcp.WithString("diagram_id", mcp.Required(), mcp.Description("The diagram to read")),
		mcp.WithOutputSchema[DiagramResponse](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGetDiagram))

	balanceTool := mcp.NewTool("get_balance",
		mcp.WithDescription("Analyze flow conservation. Intermediate nodes whose inflow and outflow differ beyond tolerance are reported with suggested corrections."),
		mcp.WithString("diagram_id", mcp.Required(), mcp.Description("The diagram to analyze")),
		mcp.WithOutputSchema[BalanceResponse](),
	)
	s.mcpServer.AddTool(balanceTool, mcp.NewStructuredToolHandler(s.handleGetBalance))

	setTextTool := mcp.NewTool("set_text",
		mcp.WithDescription("Replace the diagram's textual source. Lines that fail to parse are preserved and reported as diagnostics; a clean parse records one undo step."),
		mcp.WithString("diagram_id", mcp.Required(), mcp.Description("The diagram to edit")),
		mcp.WithString("text", mcp.Required(), mcp.Description("The full replacement source")),
		mcp.WithOutputSchema[DiagramResponse](),
	)
	s.mcpServer.AddTool(setTextTool, mcp.NewStructuredToolHandler(s.handleSetText))

	proposeTool := mcp.NewTool("propose_changes",
		mcp.WithDescription("Apply a structured change proposal: flows (full replacement), per-node edits, and settings. Absent fields stay untouched; the whole proposal applies atomically as one undo step."),
		mcp.WithString("diagram_id", mcp.Required(), mcp.Description("The diagram to edit")),
		mcp.WithString("proposal", mcp.Required(), mcp.Description(`JSON object with optional "flows", "nodes" and "settings" keys`)),
		mcp.WithOutputSchema[DiagramResponse](),
	)
	s.mcpServer.AddTool(proposeTool, mcp.NewStructuredToolHandler(s.handlePropose))

	undoTool := mcp.NewTool("undo",
		mcp.WithDescription("Step the diagram back one history entry."),
		mcp.WithString("diagram_id", mcp.Required(), mcp.Description("The diagram to edit")),
		mcp.WithOutputSchema[DiagramResponse](),
	)
	s.mcpServer.AddTool(undoTool, mcp.NewStructuredToolHandler(s.handleUndo))

	redoTool := mcp.NewTool("redo",
		mcp.WithDescription("Reapply the most recently undone entry."),
		mcp.WithString("diagram_id", mcp.Required(), mcp.Description("The diagram to edit")),
		mcp.WithOutputSchema[DiagramResponse](),
	)
	s.mcpServer.AddTool(redoTool, mcp.NewStructuredToolHandler(s.handleRedo))
}

func (s *Server) withEngine(ctx context.Context, args map[string]any, fn func(*flume.Engine) (DiagramResponse, error)) (DiagramResponse, error) {
	id, _ := args["diagram_id"].(string)
	if id == "" {
		return DiagramResponse{}, fmt.Errorf("diagram_id is required")
	}

	var resp DiagramResponse
	err := s.manager.WithEngine(ctx, id, func(eng *flume.Engine) error {
		var err error
		resp, err = fn(eng)
		return err
	})
	return resp, err
}

func envelope(eng *flume.Engine, diags []string) DiagramResponse {
	return DiagramResponse{
		State:       eng.Snapshot(),
		CanUndo:     eng.CanUndo(),
		CanRedo:     eng.CanRedo(),
		Diagnostics: diags,
	}
}

func (s *Server) handleGetDiagram(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (DiagramResponse, error) {
	return s.withEngine(ctx, args, func(eng *flume.Engine) (DiagramResponse, error) {
		return envelope(eng, nil), nil
	})
}

func (s *Server) handleGetBalance(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (BalanceResponse, error) {
	id, _ := args["diagram_id"].(string)
	if id == "" {
		return BalanceResponse{}, fmt.Errorf("diagram_id is required")
	}

	state, err := s.manager.Load(ctx, id)
	if err != nil {
		return BalanceResponse{}, fmt.Errorf("load failed: %w", err)
	}

	report := balance.Analyze(state.Data)
	return BalanceResponse{
		Balanced:   report.Balanced(),
		PerNode:    report.PerNode,
		Imbalanced: report.Imbalanced,
	}, nil
}

func (s *Server) handleSetText(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (DiagramResponse, error) {
	text, _ := args["text"].(string)

	return s.withEngine(ctx, args, func(eng *flume.Engine) (DiagramResponse, error) {
		_, diags := eng.SetRawText(text)
		lines := make([]string, 0, len(diags))
		for _, d := range diags {
			lines = append(lines, d.String())
		}
		return envelope(eng, lines), nil
	})
}

func (s *Server) handlePropose(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (DiagramResponse, error) {
	raw, _ := args["proposal"].(string)

	var proposal ports.Proposal
	if err := json.Unmarshal([]byte(raw), &proposal); err != nil {
		return DiagramResponse{}, fmt.Errorf("invalid proposal: %w", err)
	}

	cs, err := changes.DecodeProposal(proposal)
	if err != nil {
		return DiagramResponse{}, fmt.Errorf("invalid proposal: %w", err)
	}

	return s.withEngine(ctx, args, func(eng *flume.Engine) (DiagramResponse, error) {
		if _, err := eng.ApplyChanges(cs); err != nil {
			return DiagramResponse{}, fmt.Errorf("proposal rejected: %w", err)
		}
		return envelope(eng, nil), nil
	})
}

func (s *Server) handleUndo(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (DiagramResponse, error) {
	return s.withEngine(ctx, args, func(eng *flume.Engine) (DiagramResponse, error) {
		eng.Undo()
		return envelope(eng, nil), nil
	})
}

func (s *Server) handleRedo(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (DiagramResponse, error) {
	return s.withEngine(ctx, args, func(eng *flume.Engine) (DiagramResponse, error) {
		eng.Redo()
		return envelope(eng, nil), nil
	})
}
