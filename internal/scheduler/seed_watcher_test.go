package scheduler

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/tagsearch/internal/logger"
)

func TestSeedWatcher_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seeds.yaml")
	writeSeeds(t, path, "searches: {}\n")

	trigger := make(chan struct{}, 1)
	sw, err := NewSeedWatcher(path, trigger, logger.Nop())
	if err != nil {
		t.Fatalf("NewSeedWatcher failed: %v", err)
	}
	if err := sw.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer sw.Stop()

	// Other files in the directory are ignored.
	writeSeeds(t, filepath.Join(dir, "other.yaml"), "x: 1\n")
	select {
	case <-trigger:
		t.Fatal("watcher fired for an unrelated file")
	case <-time.After(100 * time.Millisecond):
	}

	writeSeeds(t, path, "searches:\n  news: weather\n")
	select {
	case <-trigger:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not fire after seed file write")
	}
}

func TestSeedWatcher_StopTwice(t *testing.T) {
	trigger := make(chan struct{}, 1)
	sw, err := NewSeedWatcher(filepath.Join(t.TempDir(), "seeds.yaml"), trigger, logger.Nop())
	if err != nil {
		t.Fatalf("NewSeedWatcher failed: %v", err)
	}
	if err := sw.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := sw.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	// fsnotify's Close is idempotent.
	if err := sw.Stop(); err != nil {
		t.Errorf("second Stop failed: %v", err)
	}
}

func TestSeedWatcher_StopWithoutStartReleasesWatcher(t *testing.T) {
	trigger := make(chan struct{}, 1)
	sw, err := NewSeedWatcher(filepath.Join(t.TempDir(), "seeds.yaml"), trigger, logger.Nop())
	if err != nil {
		t.Fatalf("NewSeedWatcher failed: %v", err)
	}
	if err := sw.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := sw.Start(); !errors.Is(err, fsnotify.ErrClosed) {
		t.Errorf("Start after Stop error = %v, want %v", err, fsnotify.ErrClosed)
	}
}
