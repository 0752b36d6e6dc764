package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/taskflow"
	"github.com/aretw0/taskflow/internal/compiler"
	"github.com/aretw0/taskflow/internal/logging"
	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/aretw0/taskflow/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Server exposes a ports.ProcessEngine over HTTP.
type Server struct {
	Engine  ports.ProcessEngine
	Streams *StreamManager
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams shares a StreamManager whose hooks were registered on the engine.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithLogger configures a logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// completeResponse is returned by the complete and resolve routes.
type completeResponse struct {
	domain.Result
	Resolved bool             `json:"resolved"`
	Snapshot *domain.Snapshot `json:"snapshot,omitempty"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.ProcessEngine, opts ...Option) http.Handler {
	server := &Server{
		Engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.Streams == nil {
		server.Streams = NewStreamManager(WithStreamLogger(server.logger))
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/definitions", server.GetDefinitions)

	r.Route("/processes", func(r chi.Router) {
		r.Get("/", server.ListProcesses)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", server.GetProcess)
			r.Put("/", server.RestoreProcess)
			r.Delete("/", server.DeleteProcess)
			r.Post("/start", server.StartProcess)
			r.Get("/events", server.SubscribeEvents)
			r.Get("/tasks/{task}", server.CanComplete)
			r.Post("/tasks/{task}/complete", server.CompleteTask)
			r.Post("/tasks/{task}/resolve", server.ResolveTask)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "taskflow-http",
		"version": strings.TrimSpace(taskflow.Version),
		"process": s.Engine.Blueprint().Name,
	})
}

// GetDefinitions handles the GET /definitions request.
func (s *Server) GetDefinitions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, compiler.Describe(s.Engine.Blueprint()))
}

// ListProcesses handles the GET /processes request.
func (s *Server) ListProcesses(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetProcess handles the GET /processes/{id} request.
func (s *Server) GetProcess(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Engine.Inspect(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// RestoreProcess handles the PUT /processes/{id} request.
func (s *Server) RestoreProcess(w http.ResponseWriter, r *http.Request) {
	var body domain.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		s.logger.Warn("RestoreProcess: invalid request body", "err", err)
		return
	}
	snap, err := s.Engine.Restore(r.Context(), chi.URLParam(r, "id"), &body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// DeleteProcess handles the DELETE /processes/{id} request.
func (s *Server) DeleteProcess(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartProcess handles the POST /processes/{id}/start request.
func (s *Server) StartProcess(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Engine.Start(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, snap)
}

// CanComplete handles the GET /processes/{id}/tasks/{task} request.
func (s *Server) CanComplete(w http.ResponseWriter, r *http.Request) {
	task := chi.URLParam(r, "task")
	ok, err := s.Engine.CanComplete(r.Context(), chi.URLParam(r, "id"), task)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"task": task, "can_complete": ok})
}

// CompleteTask handles the POST /processes/{id}/tasks/{task}/complete request.
// A refused completion is an error response.
func (s *Server) CompleteTask(w http.ResponseWriter, r *http.Request) {
	res, snap, err := s.Engine.Complete(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "task"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !res.OK() {
		s.writeError(w, res.Err)
		return
	}
	s.writeJSON(w, http.StatusOK, completeResponse{Result: res, Resolved: true, Snapshot: snap})
}

// ResolveTask handles the POST /processes/{id}/tasks/{task}/resolve request.
// A refused completion is reported in the body with status 200.
func (s *Server) ResolveTask(w http.ResponseWriter, r *http.Request) {
	res, snap, err := s.Engine.Complete(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "task"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, completeResponse{Result: res, Resolved: res.OK(), Snapshot: snap})
}

// statusOf maps engine errors onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrDefinitionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTaskNotActive):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTaskConstraintFailed):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	code, _ := domain.CodeOf(err)
	s.writeJSON(w, status, errorResponse{Error: err.Error(), Code: string(code)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
