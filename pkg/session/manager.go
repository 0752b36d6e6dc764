package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/taskflow/internal/logging"
	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/aretw0/taskflow/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager runs processes on top of a StateStore. Each operation loads the session
// snapshot, applies one transition and saves the result while holding the session lock,
// so a Process is never mutated concurrently.
type Manager struct {
	store  ports.StateStore
	loader ports.DefinitionLoader

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides ports.DefaultLockTTL for distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithClock overrides the time source used for snapshot timestamps and events.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new Session Manager with the given persistence store and definition loader.
func NewManager(store ports.StateStore, loader ports.DefinitionLoader, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		loader:  loader,
		locks:   make(map[string]*lockEntry),
		lockTTL: ports.DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Blueprint returns the process definition served by the loader.
func (m *Manager) Blueprint(ctx context.Context) (*domain.Blueprint, error) {
	bp, err := m.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load process definition: %w", err)
	}
	return bp, nil
}

// Start creates (or restarts) the session with the initial tasks active.
func (m *Manager) Start(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	bp, err := m.Blueprint(ctx)
	if err != nil {
		return nil, err
	}

	var snap *domain.Snapshot
	err = m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		snap, err = m.begin(ctx, bp, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.started(ctx, bp, snap)
	return snap, nil
}

// LoadOrStart returns the stored session, starting it first when it does not exist.
// The lookup and the start share one critical section, so progress saved by a
// concurrent caller is never overwritten. created reports whether the session was new.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID string) (snap *domain.Snapshot, created bool, err error) {
	bp, err := m.Blueprint(ctx)
	if err != nil {
		return nil, false, err
	}

	err = m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		existing, err := m.store.Load(ctx, sessionID)
		if err == nil {
			snap = existing
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}
		snap, err = m.begin(ctx, bp, sessionID)
		created = err == nil
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		m.started(ctx, bp, snap)
	}
	return snap, created, nil
}

// begin saves a fresh process. The caller holds the session lock.
func (m *Manager) begin(ctx context.Context, bp *domain.Blueprint, sessionID string) (*domain.Snapshot, error) {
	p := bp.NewProcess()
	p.Start()
	return m.save(ctx, sessionID, p)
}

func (m *Manager) started(ctx context.Context, bp *domain.Blueprint, snap *domain.Snapshot) {
	m.logger.InfoContext(ctx, "process started", "session_id", snap.SessionID, "active", snap.Active)
	if m.hooks.OnProcessStart != nil {
		m.hooks.OnProcessStart(ctx, &domain.ProcessEvent{
			EventBase: m.event(domain.EventProcessStart, snap.SessionID),
			Process:   bp.Name,
			Active:    snap.Active,
		})
	}
}

// Complete attempts to complete a task in the session.
// Task-level failures (not active, constraint, policy) are reported in the Result and
// leave the stored snapshot untouched; the error is reserved for infrastructure failures.
func (m *Manager) Complete(ctx context.Context, sessionID, task string) (domain.Result, *domain.Snapshot, error) {
	bp, err := m.Blueprint(ctx)
	if err != nil {
		return domain.Result{}, nil, err
	}

	var (
		res          domain.Result
		before, snap *domain.Snapshot
	)
	err = m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		before, err = m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}

		p := bp.Restore(before)
		res = p.Attempt(task)
		if !res.OK() {
			snap = before
			return nil
		}
		snap, err = m.save(ctx, sessionID, p)
		return err
	})
	if err != nil {
		return domain.Result{}, nil, err
	}

	m.report(ctx, bp, sessionID, res, before, snap)
	return res, snap, nil
}

// Resolve completes the task and reports whether it succeeded.
// Infrastructure failures still surface as errors.
func (m *Manager) Resolve(ctx context.Context, sessionID, task string) (bool, error) {
	res, _, err := m.Complete(ctx, sessionID, task)
	if err != nil {
		return false, err
	}
	return res.OK(), nil
}

// CanComplete reports whether the task may complete now, without mutating the session.
func (m *Manager) CanComplete(ctx context.Context, sessionID, task string) (bool, error) {
	bp, err := m.Blueprint(ctx)
	if err != nil {
		return false, err
	}
	snap, err := m.Load(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return bp.Restore(snap).CanComplete(task), nil
}

// Restore replaces the session progress with an externally tracked snapshot,
// bypassing Start. Subscribers receive the change as a reset diff.
func (m *Manager) Restore(ctx context.Context, sessionID string, from *domain.Snapshot) (*domain.Snapshot, error) {
	bp, err := m.Blueprint(ctx)
	if err != nil {
		return nil, err
	}

	var before, snap *domain.Snapshot
	err = m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		before, err = m.store.Load(ctx, sessionID)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to load session %s: %w", sessionID, err)
		}
		snap, err = m.save(ctx, sessionID, bp.Restore(from))
		return err
	})
	if err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "process restored",
		"session_id", sessionID,
		"active", snap.Active,
		"completed", len(snap.Completed),
	)
	if m.hooks.OnProcessRestore != nil {
		m.hooks.OnProcessRestore(ctx, &domain.ProcessEvent{
			EventBase: m.event(domain.EventProcessRestore, sessionID),
			Process:   bp.Name,
			Active:    snap.Active,
			Diff:      domain.Rewrite(before, snap),
		})
	}
	return snap, nil
}

// Load retrieves an existing session snapshot from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, sessionID)
		return err
	})
	return snap, err
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

func (m *Manager) save(ctx context.Context, sessionID string, p *domain.Process) (*domain.Snapshot, error) {
	snap := p.Snapshot()
	snap.SessionID = sessionID
	snap.UpdatedAt = m.now().UTC()
	if err := m.store.Save(ctx, sessionID, &snap); err != nil {
		return nil, fmt.Errorf("failed to save session %s: %w", sessionID, err)
	}
	return &snap, nil
}

func (m *Manager) report(ctx context.Context, bp *domain.Blueprint, sessionID string, res domain.Result, before, after *domain.Snapshot) {
	ev := &domain.TaskEvent{
		Task:    res.Task,
		Outcome: res.Outcome,
		Code:    res.Code(),
		Err:     res.Err,
	}
	if def, ok := bp.Definition(res.Task); ok {
		ev.Kind = def.Kind
	}

	if res.OK() {
		ev.EventBase = m.event(domain.EventTaskComplete, sessionID)
		ev.Diff = domain.Diff(before, after)
		m.logger.InfoContext(ctx, "task completed",
			"session_id", sessionID,
			"task", res.Task,
			"activated", res.Activated,
		)
		if m.hooks.OnTaskComplete != nil {
			m.hooks.OnTaskComplete(ctx, ev)
		}
		return
	}

	ev.EventBase = m.event(domain.EventTaskReject, sessionID)
	m.logger.InfoContext(ctx, "task rejected",
		"session_id", sessionID,
		"task", res.Task,
		"outcome", res.Outcome,
		"err", res.Err,
	)
	if m.hooks.OnTaskReject != nil {
		m.hooks.OnTaskReject(ctx, ev)
	}
}

func (m *Manager) event(typ domain.EventType, sessionID string) domain.EventBase {
	return domain.EventBase{
		Timestamp: m.now(),
		Type:      typ,
		SessionID: sessionID,
	}
}
