package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/tagsearch/internal/logger"
	"github.com/MrSnakeDoc/tagsearch/internal/sources/seeds"
)

// SeedTarget receives imported searches. registry.Registry implements it.
type SeedTarget interface {
	SaveIfAbsent(ctx context.Context, tag, query string) (bool, error)
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Total   int // valid entries in the seed file
	Added   int // entries that were not saved yet
	Skipped int // entries whose tag already existed
}

// SeedImporter handles periodic importing of the seed searches file
type SeedImporter struct {
	loader        *seeds.Loader
	mapper        *seeds.Mapper
	target        SeedTarget
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewSeedImporter creates a new seed importer. A zero interval disables
// the periodic run; manual triggers still work.
func NewSeedImporter(
	seedFile string,
	target SeedTarget,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *SeedImporter {
	return &SeedImporter{
		loader:        seeds.NewLoader(seedFile),
		mapper:        seeds.NewMapper(),
		target:        target,
		logger:        log.With(logger.String("component", "seed_importer")),
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start imports once and then keeps importing on every tick or trigger
func (si *SeedImporter) Start(ctx context.Context) error {
	// Import immediately on start
	if _, err := si.Import(ctx); err != nil {
		return fmt.Errorf("initial seed import failed: %w", err)
	}

	var tick <-chan time.Time
	var ticker *time.Ticker
	if si.interval > 0 {
		ticker = time.NewTicker(si.interval)
		tick = ticker.C
	}

	go func() {
		if ticker != nil {
			defer ticker.Stop()
		}
		for {
			select {
			case <-tick:
				si.importLogged(ctx)
			case <-si.manualTrigger:
				si.logger.Info("manual seed import triggered")
				si.importLogged(ctx)
			case <-si.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the importer
func (si *SeedImporter) Stop() {
	close(si.stopCh)
}

func (si *SeedImporter) importLogged(ctx context.Context) {
	if _, err := si.Import(ctx); err != nil {
		si.logger.Error("failed to import seed searches", logger.Error(err))
	}
}

// Import loads the seed file and saves every search whose tag is not known
// yet. Existing searches are never overwritten.
func (si *SeedImporter) Import(ctx context.Context) (ImportResult, error) {
	si.logger.Debug("importing seed searches", logger.String("file", si.loader.Path()))

	file, err := si.loader.Load()
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to load seeds: %w", err)
	}

	list, err := si.mapper.MapSeeds(file)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to map seeds: %w", err)
	}

	res := ImportResult{Total: len(list)}
	for _, s := range list {
		added, err := si.target.SaveIfAbsent(ctx, s.Tag, s.Query)
		if err != nil {
			return res, fmt.Errorf("failed to import %q: %w", s.Tag, err)
		}
		if added {
			res.Added++
		} else {
			res.Skipped++
		}
	}

	if res.Added > 0 {
		si.logger.Info("imported seed searches",
			logger.Int("added", res.Added),
			logger.Int("skipped", res.Skipped))
	} else {
		si.logger.Debug("no new seed searches", logger.Int("total", res.Total))
	}

	return res, nil
}
