package ports

import (
	"context"

	"github.com/aretw0/taskflow/pkg/domain"
)

// ProcessEngine is the session-oriented API exposed to driving adapters (HTTP, MCP, CLI).
// Every call operates on the persisted snapshot of one session.
type ProcessEngine interface {
	// Start seeds the session with the initial tasks, discarding any previous progress.
	Start(ctx context.Context, sessionID string) (*domain.Snapshot, error)

	// LoadOrStart returns the session, starting it atomically when it does not exist.
	// The boolean reports whether a new session was created.
	LoadOrStart(ctx context.Context, sessionID string) (*domain.Snapshot, bool, error)

	// Complete attempts to complete a task. Task-level failures are reported in the
	// Result; the error is reserved for infrastructure problems (storage, locking).
	Complete(ctx context.Context, sessionID, task string) (domain.Result, *domain.Snapshot, error)

	// CanComplete reports whether the task may complete now, without mutating the session.
	CanComplete(ctx context.Context, sessionID, task string) (bool, error)

	// Restore overwrites the session progress with an externally tracked snapshot.
	Restore(ctx context.Context, sessionID string, snap *domain.Snapshot) (*domain.Snapshot, error)

	// Inspect returns the current snapshot of the session.
	Inspect(ctx context.Context, sessionID string) (*domain.Snapshot, error)

	// Delete removes the session.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all known sessions.
	List(ctx context.Context) ([]string, error)

	// Blueprint returns the process definition governing every session.
	Blueprint() *domain.Blueprint
}
