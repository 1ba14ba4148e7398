package scheduler

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/tagsearch/internal/logger"
)

// SeedWatcher fires the import trigger whenever the seed file is written
// or recreated.
type SeedWatcher struct {
	watcher  *fsnotify.Watcher
	filePath string
	trigger  chan<- struct{}
	logger   logger.Logger
	done     chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewSeedWatcher creates a watcher for filePath. trigger should be the
// same buffered channel the SeedImporter listens on.
func NewSeedWatcher(filePath string, trigger chan<- struct{}, log logger.Logger) (*SeedWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	return &SeedWatcher{
		watcher:  w,
		filePath: filePath,
		trigger:  trigger,
		logger:   log.With(logger.String("component", "seed_watcher")),
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. The parent directory is watched so editors that
// replace the file by rename are still seen.
func (sw *SeedWatcher) Start() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.running {
		return nil
	}

	dir := filepath.Dir(sw.filePath)
	if err := sw.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %q: %w", dir, err)
	}
	sw.running = true

	go sw.watch()
	return nil
}

func (sw *SeedWatcher) watch() {
	filename := filepath.Base(sw.filePath)

	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				sw.logger.Debug("seed file changed", logger.String("file", sw.filePath))
				sw.fire()
			}

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Warn("seed watcher error", logger.Error(err))

		case <-sw.done:
			return
		}
	}
}

// fire never blocks: a pending trigger already covers this change.
func (sw *SeedWatcher) fire() {
	select {
	case sw.trigger <- struct{}{}:
	default:
	}
}

// Stop stops the watcher.
func (sw *SeedWatcher) Stop() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if !sw.running {
		return sw.watcher.Close()
	}

	sw.running = false
	close(sw.done)
	return sw.watcher.Close()
}
