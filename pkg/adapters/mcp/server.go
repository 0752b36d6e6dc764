package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/taskflow"
	"github.com/aretw0/taskflow/internal/compiler"
	"github.com/aretw0/taskflow/internal/logging"
	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/aretw0/taskflow/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefinitionsURI is the resource exposing the process definition.
const DefinitionsURI = "taskflow://definitions"

// SessionArgs identifies a session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// TaskArgs identifies a task within a session.
type TaskArgs struct {
	SessionID string `json:"session_id"`
	Task      string `json:"task"`
}

// SnapshotResponse is the structured output of tools returning session state.
type SnapshotResponse struct {
	SessionID string   `json:"session_id" jsonschema_description:"The session the snapshot belongs to"`
	Active    []string `json:"active" jsonschema_description:"Tasks that may be completed next"`
	Completed []string `json:"completed" jsonschema_description:"Tasks completed so far, in order"`
	Finished  bool     `json:"finished" jsonschema_description:"True when no task is active"`
}

// CompleteResponse reports a successful completion. Refusals are returned as tool errors.
type CompleteResponse struct {
	Task      string           `json:"task"`
	Outcome   domain.Outcome   `json:"outcome" jsonschema_description:"Always completed"`
	Activated []string         `json:"activated,omitempty" jsonschema_description:"Follow-on tasks activated by the completion"`
	Snapshot  SnapshotResponse `json:"snapshot"`
}

// ResolveResponse answers the resolve_task tool.
type ResolveResponse struct {
	Task     string           `json:"task"`
	Resolved bool             `json:"resolved" jsonschema_description:"True when the task was completed"`
	Snapshot SnapshotResponse `json:"snapshot"`
}

// CanCompleteResponse answers the can_complete tool.
type CanCompleteResponse struct {
	Task        string `json:"task"`
	CanComplete bool   `json:"can_complete"`
}

// Server wraps the Engine and exposes it as an MCP Server.
type Server struct {
	engine    ports.ProcessEngine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used by the SSE transport.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.ProcessEngine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("taskflow-mcp", strings.TrimSpace(taskflow.Version)),
		logger:    logging.NewNop(),
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

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	sessionParam := mcp.WithString("session_id", mcp.Required(), mcp.Description("The session (process instance) ID"))
	taskParam := mcp.WithString("task", mcp.Required(), mcp.Description("The task name"))

	s.mcpServer.AddTool(mcp.NewTool("start_process",
		mcp.WithDescription("Start (or restart) a session with the initial tasks active. Discards previous progress."),
		sessionParam,
		mcp.WithOutputSchema[SnapshotResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Complete an active task. A refused completion is a tool error carrying TASK_NOT_ACTIVE or TASK_CONSTRAINT_FAILED and leaves the session unchanged."),
		sessionParam,
		taskParam,
		mcp.WithOutputSchema[CompleteResponse](),
	), mcp.NewStructuredToolHandler(s.handleComplete))

	s.mcpServer.AddTool(mcp.NewTool("resolve_task",
		mcp.WithDescription("Complete a task if possible and report whether it was resolved. Refusals are not tool errors."),
		sessionParam,
		taskParam,
		mcp.WithOutputSchema[ResolveResponse](),
	), mcp.NewStructuredToolHandler(s.handleResolve))

	s.mcpServer.AddTool(mcp.NewTool("can_complete",
		mcp.WithDescription("Check whether a task may be completed now, without changing the session."),
		sessionParam,
		taskParam,
		mcp.WithOutputSchema[CanCompleteResponse](),
	), mcp.NewStructuredToolHandler(s.handleCanComplete))

	s.mcpServer.AddTool(mcp.NewTool("inspect_process",
		mcp.WithDescription("Return the active and completed tasks of a session."),
		sessionParam,
		mcp.WithOutputSchema[SnapshotResponse](),
	), mcp.NewStructuredToolHandler(s.handleInspect))
}

// Handler methods for structured tools

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SnapshotResponse, error) {
	if args.SessionID == "" {
		return SnapshotResponse{}, fmt.Errorf("session_id is required")
	}
	snap, err := s.engine.Start(ctx, args.SessionID)
	if err != nil {
		return SnapshotResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return toSnapshotResponse(snap), nil
}

func (s *Server) handleComplete(ctx context.Context, request mcp.CallToolRequest, args TaskArgs) (CompleteResponse, error) {
	if args.SessionID == "" || args.Task == "" {
		return CompleteResponse{}, fmt.Errorf("session_id and task are required")
	}
	res, snap, err := s.engine.Complete(ctx, args.SessionID, args.Task)
	if err != nil {
		return CompleteResponse{}, fmt.Errorf("complete failed: %w", err)
	}
	if !res.OK() {
		return CompleteResponse{}, refusal(res)
	}

	return CompleteResponse{
		Task:      res.Task,
		Outcome:   res.Outcome,
		Activated: res.Activated,
		Snapshot:  toSnapshotResponse(snap),
	}, nil
}

func (s *Server) handleResolve(ctx context.Context, request mcp.CallToolRequest, args TaskArgs) (ResolveResponse, error) {
	if args.SessionID == "" || args.Task == "" {
		return ResolveResponse{}, fmt.Errorf("session_id and task are required")
	}
	res, snap, err := s.engine.Complete(ctx, args.SessionID, args.Task)
	if err != nil {
		return ResolveResponse{}, fmt.Errorf("resolve failed: %w", err)
	}
	return ResolveResponse{
		Task:     args.Task,
		Resolved: res.OK(),
		Snapshot: toSnapshotResponse(snap),
	}, nil
}

// refusal turns a refused completion into a tool error prefixed with its code.
// Policy failures carry no TaskError code and are reported by outcome.
func refusal(res domain.Result) error {
	code := string(res.Code())
	if code == "" {
		code = strings.ToUpper(string(res.Outcome))
	}
	return fmt.Errorf("%s: %w", code, res.Err)
}

func (s *Server) handleCanComplete(ctx context.Context, request mcp.CallToolRequest, args TaskArgs) (CanCompleteResponse, error) {
	ok, err := s.engine.CanComplete(ctx, args.SessionID, args.Task)
	if err != nil {
		return CanCompleteResponse{}, fmt.Errorf("can_complete failed: %w", err)
	}
	return CanCompleteResponse{Task: args.Task, CanComplete: ok}, nil
}

func (s *Server) handleInspect(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SnapshotResponse, error) {
	snap, err := s.engine.Inspect(ctx, args.SessionID)
	if err != nil {
		return SnapshotResponse{}, fmt.Errorf("inspect failed: %w", err)
	}
	return toSnapshotResponse(snap), nil
}

func toSnapshotResponse(snap *domain.Snapshot) SnapshotResponse {
	if snap == nil {
		return SnapshotResponse{Active: []string{}, Completed: []string{}, Finished: true}
	}
	return SnapshotResponse{
		SessionID: snap.SessionID,
		Active:    snap.Active,
		Completed: snap.Completed,
		Finished:  len(snap.Active) == 0,
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(DefinitionsURI, "Process Definition",
		mcp.WithMIMEType("application/json"),
	), s.readDefinitions)
}

func (s *Server) readDefinitions(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(compiler.Describe(s.engine.Blueprint()))
	if err != nil {
		return nil, fmt.Errorf("failed to encode definition: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      DefinitionsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
