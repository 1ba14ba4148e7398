package scheduler

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/tagsearch/internal/logger"
)

// Loader is something that (re)loads its state from persistent storage.
// registry.Registry implements it.
type Loader interface {
	Initialize(ctx context.Context) error
	Len() int
}

// StoreSyncer loads saved searches from the store into the registry on startup
type StoreSyncer struct {
	target  Loader
	backend string
	logger  logger.Logger
}

// NewStoreSyncer creates a new store syncer
func NewStoreSyncer(target Loader, backend string, log logger.Logger) *StoreSyncer {
	return &StoreSyncer{
		target:  target,
		backend: backend,
		logger:  log,
	}
}

// Sync loads every saved search. The registry stays not ready on error.
func (ss *StoreSyncer) Sync(ctx context.Context) error {
	ss.logger.Info("loading saved searches", logger.String("backend", ss.backend))

	if err := ss.target.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to load saved searches from %s store: %w", ss.backend, err)
	}

	if n := ss.target.Len(); n == 0 {
		ss.logger.Info("no saved searches found", logger.String("backend", ss.backend))
	} else {
		ss.logger.Info("loaded saved searches",
			logger.String("backend", ss.backend),
			logger.Int("count", n))
	}

	return nil
}
