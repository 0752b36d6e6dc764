package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/taskflow"
	"github.com/aretw0/taskflow/pkg/adapters/file"
	"github.com/aretw0/taskflow/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/taskflow/pkg/adapters/redis"
	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/aretw0/taskflow/pkg/observability"
	"github.com/aretw0/taskflow/pkg/persistence/middleware"
	"github.com/aretw0/taskflow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Persistence bundles the store selected by Options with its optional locker.
type Persistence struct {
	Store  ports.StateStore
	Locker ports.DistributedLocker
	Close  func() error
}

// SessionsDir is where the file store keeps sessions, relative to the project.
func SessionsDir(dir string) string {
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	return filepath.Join(dir, ".taskflow", "sessions")
}

// NewPersistence builds the store (and, for Redis, the distributed locker) for opts.
func NewPersistence(opts Options) (*Persistence, error) {
	p := &Persistence{Close: func() error { return nil }}

	switch opts.Store {
	case "", StoreFile:
		p.Store = file.New(SessionsDir(opts.Dir))
	case StoreMemory:
		p.Store = memory.NewStore()
	case StoreRedis:
		client := backend.NewClient(&backend.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		storeOpts := []redisAdapter.Option{redisAdapter.WithTTL(opts.RedisTTL)}
		if opts.RedisPrefix != "" {
			storeOpts = append(storeOpts, redisAdapter.WithPrefix(opts.RedisPrefix))
		}
		p.Store = redisAdapter.NewFromClient(client, storeOpts...)
		p.Locker = redisAdapter.NewLocker(client, opts.RedisPrefix)
		p.Close = client.Close
	default:
		return nil, fmt.Errorf("unknown store %q (supported: file, redis, memory)", opts.Store)
	}

	if opts.EncryptKey != "" {
		key, err := middleware.ParseKey(opts.EncryptKey)
		if err != nil {
			_ = p.Close()
			return nil, err
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			_ = p.Close()
			return nil, err
		}
		p.Store = mw(p.Store)
	}
	return p, nil
}

// NewEngine initializes an engine with standard CLI conventions.
// The returned close function releases the store connection.
func NewEngine(opts Options, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*taskflow.Engine, func() error, error) {
	persistence, err := NewPersistence(opts)
	if err != nil {
		return nil, nil, err
	}

	engineOpts := []taskflow.Option{
		taskflow.WithLogger(logger),
		taskflow.WithStore(persistence.Store),
	}
	if persistence.Locker != nil {
		engineOpts = append(engineOpts, taskflow.WithLocker(persistence.Locker, opts.LockTTL))
	}
	if opts.Debug {
		engineOpts = append(engineOpts, taskflow.WithLifecycleHooks(observability.LogHooks(logger)))
	}
	for _, h := range hooks {
		engineOpts = append(engineOpts, taskflow.WithLifecycleHooks(h))
	}

	engine, err := taskflow.New(opts.Dir, engineOpts...)
	if err != nil {
		_ = persistence.Close()
		return nil, nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, persistence.Close, nil
}
