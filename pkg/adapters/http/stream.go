package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/taskflow/internal/logging"
	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

// StreamOption configures a StreamManager.
type StreamOption func(*StreamManager)

// WithStreamLogger sets the logger used for dropped or unencodable messages.
func WithStreamLogger(logger *slog.Logger) StreamOption {
	return func(sm *StreamManager) {
		sm.logger = logger
	}
}

func NewStreamManager(opts ...StreamOption) *StreamManager {
	sm := &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

func (sm *StreamManager) Subscribe(sessionID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if subs, ok := sm.subscribers[sessionID]; ok {
		for ch := range subs {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				sm.logger.Warn("SSE: Client buffer full, dropping message", "session_id", sessionID)
			}
		}
	}
}

// Hooks returns lifecycle hooks that broadcast snapshot diffs to subscribers.
// Register them on the engine served by the handler.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnProcessStart: func(_ context.Context, e *domain.ProcessEvent) {
			sm.publish(e.SessionID, &domain.SnapshotDiff{
				SessionID: e.SessionID,
				Activated: e.Active,
				Reset:     true,
			})
		},
		OnProcessRestore: func(_ context.Context, e *domain.ProcessEvent) {
			if e.Diff != nil {
				sm.publish(e.SessionID, e.Diff)
			}
		},
		OnTaskComplete: func(_ context.Context, e *domain.TaskEvent) {
			if e.Diff != nil {
				sm.publish(e.SessionID, e.Diff)
			}
		},
	}
}

func (sm *StreamManager) publish(sessionID string, diff *domain.SnapshotDiff) {
	data, err := json.Marshal(diff)
	if err != nil {
		sm.logger.Error("SSE: diff encode failed", "session_id", sessionID, "err", err)
		return
	}
	sm.Broadcast(sessionID, string(data))
}

// SubscribeEvents handles the GET /processes/{id}/events request (SSE).
// The optional "watch" query parameter keeps only diffs touching the listed fields
// (activated, deactivated, completed).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "id")
	var watchList []string
	if raw := r.URL.Query().Get("watch"); raw != "" {
		watchList = strings.Split(raw, ",")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !matchesWatch(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func matchesWatch(msg string, fields []string) bool {
	var diff domain.SnapshotDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range fields {
		switch strings.TrimSpace(field) {
		case "activated":
			if len(diff.Activated) > 0 {
				return true
			}
		case "deactivated":
			if len(diff.Deactivated) > 0 {
				return true
			}
		case "completed":
			if len(diff.Completed) > 0 || diff.Reset {
				return true
			}
		}
	}
	return false
}
