package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventProcessStart   EventType = "process_start"
	EventProcessRestore EventType = "process_restore"
	EventTaskComplete   EventType = "task_complete"
	EventTaskReject     EventType = "task_reject"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// ProcessEvent is emitted when a process is started (or restarted) and when its
// progress is overwritten by Restore. Diff is only set for restores.
type ProcessEvent struct {
	EventBase
	Process string        `json:"process,omitempty"`
	Active  []string      `json:"active"`
	Diff    *SnapshotDiff `json:"diff,omitempty"`
}

// TaskEvent represents a completion attempt, successful or not.
type TaskEvent struct {
	EventBase
	Task    string        `json:"task"`
	Kind    TaskKind      `json:"kind,omitempty"`
	Outcome Outcome       `json:"outcome"`
	Code    ErrorCode     `json:"code,omitempty"`
	Diff    *SnapshotDiff `json:"diff,omitempty"`
	Err     error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnProcessStart   func(context.Context, *ProcessEvent)
	OnProcessRestore func(context.Context, *ProcessEvent)
	OnTaskComplete   func(context.Context, *TaskEvent)
	OnTaskReject     func(context.Context, *TaskEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnProcessStart:   chain(h.OnProcessStart, other.OnProcessStart),
		OnProcessRestore: chain(h.OnProcessRestore, other.OnProcessRestore),
		OnTaskComplete:   chain(h.OnTaskComplete, other.OnTaskComplete),
		OnTaskReject:     chain(h.OnTaskReject, other.OnTaskReject),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
