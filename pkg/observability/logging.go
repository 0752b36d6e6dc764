package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/taskflow/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one structured record per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnProcessStart: func(ctx context.Context, e *domain.ProcessEvent) {
			logger.InfoContext(ctx, string(e.Type),
				"session_id", e.SessionID,
				"process", e.Process,
				"active", e.Active,
			)
		},
		OnProcessRestore: func(ctx context.Context, e *domain.ProcessEvent) {
			args := []any{
				"session_id", e.SessionID,
				"process", e.Process,
				"active", e.Active,
			}
			if e.Diff != nil {
				args = append(args, "completed", e.Diff.Completed)
			}
			logger.InfoContext(ctx, string(e.Type), args...)
		},
		OnTaskComplete: func(ctx context.Context, e *domain.TaskEvent) {
			args := []any{
				"session_id", e.SessionID,
				"task", e.Task,
				"kind", e.Kind,
			}
			if e.Diff != nil {
				args = append(args, "activated", e.Diff.Activated, "deactivated", e.Diff.Deactivated)
			}
			logger.InfoContext(ctx, string(e.Type), args...)
		},
		OnTaskReject: func(ctx context.Context, e *domain.TaskEvent) {
			logger.WarnContext(ctx, string(e.Type),
				"session_id", e.SessionID,
				"task", e.Task,
				"outcome", e.Outcome,
				"code", e.Code,
				"err", e.Err,
			)
		},
	}
}
