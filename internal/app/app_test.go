package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/tagsearch/internal/config"
	"github.com/MrSnakeDoc/tagsearch/internal/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ListenPort:      "127.0.0.1:0",
		ShutdownTimeout: time.Second,
		StoreBackend:    "file",
		FilePath:        filepath.Join(t.TempDir(), "searches.yaml"),
		SearchURL:       "https://example.com/search?q=",
	}
}

func TestOpenRegistry(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	reg, s, err := OpenRegistry(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	_, err = reg.Save(ctx, "news", "weather")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// A second process sees the saved search.
	reg, s, err = OpenRegistry(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, []string{"news"}, reg.ListTags())

	url, err := NewActions(cfg, reg, logger.Nop()).Activate("news")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/search?q=weather", url)
}

func TestOpenRegistry_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreBackend = "etcd"

	_, _, err := OpenRegistry(context.Background(), cfg, logger.Nop())
	assert.Error(t, err)
}

func TestRun_SeedsAndShutdown(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedFile = filepath.Join(t.TempDir(), "seeds.yaml")
	cfg.SeedInterval = time.Hour
	require.NoError(t, os.WriteFile(cfg.SeedFile, []byte("searches:\n  news: weather\n"), 0o644))

	a, err := New(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok := a.registry.Lookup("news")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_BadSeedFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")
	cfg.SeedWatch = true

	a, err := New(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	require.NotNil(t, a.watcher)

	err = a.Run(context.Background())
	assert.ErrorContains(t, err, "seed importer")

	// The watcher was released even though it never started.
	assert.ErrorIs(t, a.watcher.Start(), fsnotify.ErrClosed)
}
