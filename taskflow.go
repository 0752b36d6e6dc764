package taskflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/taskflow/internal/logging"
	"github.com/aretw0/taskflow/pkg/adapters/memory"
	"github.com/aretw0/taskflow/pkg/adapters/yamlfile"
	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/aretw0/taskflow/pkg/ports"
	"github.com/aretw0/taskflow/pkg/session"
)

// Engine is the high-level entry point for the taskflow library.
// It wraps a session.Manager and provides a simplified API for consumers.
type Engine struct {
	manager   *session.Manager
	loader    ports.DefinitionLoader
	store     ports.StateStore
	locker    ports.DistributedLocker
	lockTTL   time.Duration
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	blueprint *domain.Blueprint
	Name      string
}

var _ ports.ProcessEngine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom DefinitionLoader, bypassing the default YAML file loader.
func WithLoader(l ports.DefinitionLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithBlueprint serves an in-memory definition, typically built with pkg/dsl.
func WithBlueprint(bp *domain.Blueprint) Option {
	return func(e *Engine) {
		e.loader = memory.NewLoader(bp)
	}
}

// WithStore sets the persistence backend (default: in-memory).
func WithStore(s ports.StateStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker enables distributed locking across replicas sharing a store.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = l
		e.lockTTL = ttl
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new Engine.
// By default, it reads the process definition from the YAML file at path
// (a directory resolves to process.yaml inside it).
// If WithLoader or WithBlueprint is provided, path may be empty.
func New(path string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if path == "" {
			return nil, fmt.Errorf("path is required when no custom loader is provided")
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.loader = yamlfile.New(absPath)
	}

	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	bp, err := eng.loader.Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load process definition: %w", err)
	}
	eng.blueprint = bp

	eng.Name = bp.Name
	if eng.Name == "" && path != "" {
		eng.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("process", eng.Name)
	}

	managerOpts := []session.Option{
		session.WithLogger(eng.logger),
		session.WithLifecycleHooks(eng.hooks),
	}
	if eng.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(eng.locker))
		if eng.lockTTL > 0 {
			managerOpts = append(managerOpts, session.WithLockTTL(eng.lockTTL))
		}
	}
	eng.manager = session.NewManager(eng.store, eng.loader, managerOpts...)

	return eng, nil
}

// Start seeds the session with the initial tasks, discarding any previous progress.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	return e.manager.Start(ctx, sessionID)
}

// LoadOrStart returns the session, starting it first when it does not exist.
// created reports whether a new session was started.
func (e *Engine) LoadOrStart(ctx context.Context, sessionID string) (*domain.Snapshot, bool, error) {
	return e.manager.LoadOrStart(ctx, sessionID)
}

// Complete attempts to complete a task in the session.
func (e *Engine) Complete(ctx context.Context, sessionID, task string) (domain.Result, *domain.Snapshot, error) {
	return e.manager.Complete(ctx, sessionID, task)
}

// Resolve completes the task and reports whether it succeeded.
func (e *Engine) Resolve(ctx context.Context, sessionID, task string) (bool, error) {
	return e.manager.Resolve(ctx, sessionID, task)
}

// CanComplete reports whether the task may complete now.
func (e *Engine) CanComplete(ctx context.Context, sessionID, task string) (bool, error) {
	return e.manager.CanComplete(ctx, sessionID, task)
}

// Inspect returns the current snapshot of the session.
func (e *Engine) Inspect(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	return e.manager.Load(ctx, sessionID)
}

// Restore overwrites the session progress with an externally tracked snapshot.
func (e *Engine) Restore(ctx context.Context, sessionID string, snap *domain.Snapshot) (*domain.Snapshot, error) {
	return e.manager.Restore(ctx, sessionID, snap)
}

// Delete removes the session.
func (e *Engine) Delete(ctx context.Context, sessionID string) error {
	return e.manager.Delete(ctx, sessionID)
}

// List returns the IDs of all stored sessions.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	return e.manager.List(ctx)
}

// Blueprint returns the process definition loaded at construction.
func (e *Engine) Blueprint() *domain.Blueprint {
	return e.blueprint
}

// Loader returns the underlying DefinitionLoader used by the engine.
func (e *Engine) Loader() ports.DefinitionLoader {
	return e.loader
}

// Manager exposes the session manager for callers that need locking primitives.
func (e *Engine) Manager() *session.Manager {
	return e.manager
}
