package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Store backends selectable with --store.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// EncryptKeyEnv is read when --encrypt-key is not given.
const EncryptKeyEnv = "TASKFLOW_ENCRYPT_KEY"

// Options contains the configuration shared by every command.
type Options struct {
	Dir   string
	Debug bool

	Store         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	RedisTTL      time.Duration
	LockTTL       time.Duration

	// EncryptKey enables at-rest encryption of snapshots (hex or base64, 32 bytes).
	EncryptKey string
}

// RegisterFlags declares the persistent flags backing Options on the root command.
func RegisterFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("dir", ".", "Directory (or file) containing the process definition")
	f.Bool("debug", false, "Enable debug logging to stderr")
	f.String("store", StoreFile, "Session store: file, redis or memory")
	f.String("redis-addr", "localhost:6379", "Redis address (with --store=redis)")
	f.String("redis-password", "", "Redis password")
	f.Int("redis-db", 0, "Redis database number")
	f.String("redis-prefix", "taskflow:session:", "Key prefix for sessions stored in Redis")
	f.Duration("redis-ttl", 0, "Session expiry in Redis (0 keeps sessions forever)")
	f.Duration("lock-ttl", 30*time.Second, "Distributed lock TTL (with --store=redis)")
	f.String("encrypt-key", "", "Encrypt stored sessions with this AES-256 key (hex or base64); defaults to $"+EncryptKeyEnv)
}

// OptionsFromFlags reads Options back from the flags declared by RegisterFlags.
func OptionsFromFlags(cmd *cobra.Command) (Options, error) {
	f := cmd.Flags()
	var opts Options
	var err error

	get := func(fn func() error) {
		if err == nil {
			err = fn()
		}
	}
	get(func() (e error) { opts.Dir, e = f.GetString("dir"); return })
	get(func() (e error) { opts.Debug, e = f.GetBool("debug"); return })
	get(func() (e error) { opts.Store, e = f.GetString("store"); return })
	get(func() (e error) { opts.RedisAddr, e = f.GetString("redis-addr"); return })
	get(func() (e error) { opts.RedisPassword, e = f.GetString("redis-password"); return })
	get(func() (e error) { opts.RedisDB, e = f.GetInt("redis-db"); return })
	get(func() (e error) { opts.RedisPrefix, e = f.GetString("redis-prefix"); return })
	get(func() (e error) { opts.RedisTTL, e = f.GetDuration("redis-ttl"); return })
	get(func() (e error) { opts.LockTTL, e = f.GetDuration("lock-ttl"); return })
	get(func() (e error) { opts.EncryptKey, e = f.GetString("encrypt-key"); return })
	if err != nil {
		return Options{}, fmt.Errorf("invalid flags: %w", err)
	}

	if opts.EncryptKey == "" {
		opts.EncryptKey = os.Getenv(EncryptKeyEnv)
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	return opts, nil
}
