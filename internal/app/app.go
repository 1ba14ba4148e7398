package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/tagsearch/internal/config"
	"github.com/MrSnakeDoc/tagsearch/internal/httpserver"
	"github.com/MrSnakeDoc/tagsearch/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tagsearch/internal/logger"
	"github.com/MrSnakeDoc/tagsearch/internal/registry"
	"github.com/MrSnakeDoc/tagsearch/internal/scheduler"
	"github.com/MrSnakeDoc/tagsearch/internal/store"
	"github.com/MrSnakeDoc/tagsearch/internal/utils"
	"github.com/MrSnakeDoc/tagsearch/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	store       store.Store
	registry    *registry.Registry
	importer    *scheduler.SeedImporter
	watcher     *scheduler.SeedWatcher
	unsubscribe func()
}

// New opens the store, loads saved searches and wires the HTTP server.
// It fails fast when the store is unreachable.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	loggerClient.Info("opening store", logger.String("backend", cfg.StoreBackend))
	reg, s, err := OpenRegistry(ctx, cfg, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to load saved searches: %w", err)
	}

	unsubscribe := reg.Subscribe(func(ev registry.ChangeEvent) {
		fields := []logger.Field{
			logger.String("change", ev.Type.String()),
			logger.String("tag", ev.Tag),
			logger.Int("count", ev.Count),
		}
		if ev.Type.Structural() {
			loggerClient.Info("saved search list changed", fields...)
			return
		}
		loggerClient.Debug("saved search updated", fields...)
	})

	// Initialize seed importer (if a seed file is configured)
	var (
		importer      *scheduler.SeedImporter
		watcher       *scheduler.SeedWatcher
		reloadTrigger chan struct{}
	)
	if cfg.SeedFile != "" {
		loggerClient.Info("seed file configured, initializing seed importer",
			logger.String("file", cfg.SeedFile))
		reloadTrigger = make(chan struct{}, 1)
		importer = scheduler.NewSeedImporter(cfg.SeedFile, reg, loggerClient, cfg.SeedInterval, reloadTrigger)

		if cfg.SeedWatch {
			watcher, err = scheduler.NewSeedWatcher(cfg.SeedFile, reloadTrigger, loggerClient)
			if err != nil {
				loggerClient.Warn("seed file watcher unavailable, relying on interval and /reload",
					logger.Error(err))
			}
		}
	} else {
		loggerClient.Info("seed file not configured, seed import disabled")
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Registry:       reg,
		Actions:        NewActions(cfg, reg, loggerClient),
		Store:          s,
		StoreBackend:   cfg.StoreBackend,
		SeedFile:       cfg.SeedFile,
		ReloadTrigger:  reloadTrigger,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		store:       s,
		registry:    reg,
		importer:    importer,
		watcher:     watcher,
		unsubscribe: unsubscribe,
	}, nil
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting tagsearch v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.close()

	// Start seed importer (imports once and starts periodic refresh)
	if a.importer != nil {
		if err := a.importer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start seed importer: %w", err)
		}
		defer a.importer.Stop()
		a.logger.Info("seed importer started",
			logger.Duration("interval", a.cfg.SeedInterval))
	}

	if a.watcher != nil {
		if err := a.watcher.Start(); err != nil {
			a.logger.Warn("failed to watch seed file", logger.Error(err))
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	a.logger.Info("✅ tagsearch stopped cleanly")
	return nil
}

func (a *App) close() {
	if a.watcher != nil {
		if err := a.watcher.Stop(); err != nil {
			a.logger.Debug("failed to stop seed watcher", logger.Error(err))
		}
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.store != nil {
		utils.CloseLogged(a.store, "store", a.logger)
		a.logger.Info("✅ Store closed", logger.String("backend", a.cfg.StoreBackend))
	}
}
