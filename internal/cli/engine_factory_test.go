package cli_test

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/taskflow/internal/cli"
	"github.com/aretw0/taskflow/internal/logging"
	"github.com/aretw0/taskflow/pkg/adapters/file"
	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reviewYAML = `
name: review
initial: [draft]
tasks:
  - name: draft
    next: [review]
  - name: review
    kind: ServiceTask
`

func writeProcess(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "process.yaml"), []byte(reviewYAML), 0644))
	return dir
}

func TestSessionsDir(t *testing.T) {
	dir := writeProcess(t)
	assert.Equal(t, filepath.Join(dir, ".taskflow", "sessions"), cli.SessionsDir(dir))
	assert.Equal(t, filepath.Join(dir, ".taskflow", "sessions"), cli.SessionsDir(filepath.Join(dir, "process.yaml")))
}

func TestOptionsFromFlags(t *testing.T) {
	t.Setenv(cli.EncryptKeyEnv, "from-env")

	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	cli.RegisterFlags(cmd)
	cmd.SetArgs([]string{"--store", "redis", "--redis-db", "3", "--redis-ttl", "1h", "--dir", ""})
	require.NoError(t, cmd.Execute())

	opts, err := cli.OptionsFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, cli.StoreRedis, opts.Store)
	assert.Equal(t, 3, opts.RedisDB)
	assert.Equal(t, "1h0m0s", opts.RedisTTL.String())
	assert.Equal(t, ".", opts.Dir)
	assert.Equal(t, "from-env", opts.EncryptKey)
	assert.Equal(t, "taskflow:session:", opts.RedisPrefix)
}

func TestNewPersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("File", func(t *testing.T) {
		dir := t.TempDir()
		p, err := cli.NewPersistence(cli.Options{Dir: dir})
		require.NoError(t, err)
		defer p.Close()

		assert.IsType(t, &file.Store{}, p.Store)
		assert.Nil(t, p.Locker)

		require.NoError(t, p.Store.Save(ctx, "s1", domain.NewSnapshot("s1")))
		assert.FileExists(t, filepath.Join(cli.SessionsDir(dir), "s1.json"))
	})

	t.Run("Memory", func(t *testing.T) {
		p, err := cli.NewPersistence(cli.Options{Store: cli.StoreMemory})
		require.NoError(t, err)
		require.NoError(t, p.Store.Save(ctx, "s1", domain.NewSnapshot("s1")))
		ids, err := p.Store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"s1"}, ids)
	})

	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		p, err := cli.NewPersistence(cli.Options{
			Store:       cli.StoreRedis,
			RedisAddr:   mr.Addr(),
			RedisPrefix: "test:",
		})
		require.NoError(t, err)
		defer p.Close()
		require.NotNil(t, p.Locker)

		require.NoError(t, p.Store.Save(ctx, "s1", domain.NewSnapshot("s1")))
		assert.True(t, mr.Exists("test:s1"))

		unlock, err := p.Locker.Lock(ctx, "s1", 0)
		require.NoError(t, err)
		assert.True(t, mr.Exists("test:lock:s1"))
		require.NoError(t, unlock(ctx))
		assert.False(t, mr.Exists("test:lock:s1"))
	})

	t.Run("Encrypted", func(t *testing.T) {
		dir := t.TempDir()
		key := hex.EncodeToString([]byte(strings.Repeat("k", 32)))
		p, err := cli.NewPersistence(cli.Options{Dir: dir, EncryptKey: key})
		require.NoError(t, err)

		snap := domain.NewSnapshot("s1")
		snap.Active = []string{"secret-task"}
		require.NoError(t, p.Store.Save(ctx, "s1", snap))

		raw, err := os.ReadFile(filepath.Join(cli.SessionsDir(dir), "s1.json"))
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "secret-task")

		loaded, err := p.Store.Load(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, []string{"secret-task"}, loaded.Active)
	})

	t.Run("Invalid key", func(t *testing.T) {
		_, err := cli.NewPersistence(cli.Options{Store: cli.StoreMemory, EncryptKey: "short"})
		assert.Error(t, err)
	})

	t.Run("Unknown store", func(t *testing.T) {
		_, err := cli.NewPersistence(cli.Options{Store: "etcd"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown store")
	})
}

func TestNewEngine(t *testing.T) {
	dir := writeProcess(t)
	ctx := context.Background()

	eng, closeFn, err := cli.NewEngine(cli.Options{Dir: dir, Debug: true}, logging.NewNop())
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, "review", eng.Name)

	_, err = eng.Start(ctx, "s1")
	require.NoError(t, err)
	res, snap, err := eng.Complete(ctx, "s1", "draft")
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, []string{"review"}, snap.Active)

	// The file store outlives the engine.
	other, closeOther, err := cli.NewEngine(cli.Options{Dir: dir}, logging.NewNop())
	require.NoError(t, err)
	defer closeOther()
	snap, err = other.Inspect(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"draft"}, snap.Completed)

	t.Run("Missing definition", func(t *testing.T) {
		_, _, err := cli.NewEngine(cli.Options{Dir: t.TempDir(), Store: cli.StoreMemory}, logging.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error initializing engine")
	})
}
