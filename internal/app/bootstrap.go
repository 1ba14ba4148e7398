package app

import (
	"context"

	"github.com/MrSnakeDoc/tagsearch/internal/actions"
	"github.com/MrSnakeDoc/tagsearch/internal/config"
	"github.com/MrSnakeDoc/tagsearch/internal/logger"
	"github.com/MrSnakeDoc/tagsearch/internal/redis"
	"github.com/MrSnakeDoc/tagsearch/internal/registry"
	"github.com/MrSnakeDoc/tagsearch/internal/scheduler"
	"github.com/MrSnakeDoc/tagsearch/internal/store"
	"github.com/MrSnakeDoc/tagsearch/internal/utils"
)

// StoreOptions maps the configuration onto store.Open options.
func StoreOptions(cfg *config.Config) store.Options {
	return store.Options{
		Backend:        cfg.StoreBackend,
		FilePath:       cfg.FilePath,
		RedisNamespace: cfg.RedisNamespace,
		Redis: redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		},
	}
}

// OpenRegistry opens the configured store and loads it into a ready
// registry. The caller owns the returned store and must close it.
func OpenRegistry(ctx context.Context, cfg *config.Config, log logger.Logger) (*registry.Registry, store.Store, error) {
	s, err := store.Open(ctx, StoreOptions(cfg), log)
	if err != nil {
		return nil, nil, err
	}

	reg := registry.New(s, log)
	if err := scheduler.NewStoreSyncer(reg, cfg.StoreBackend, log).Sync(ctx); err != nil {
		utils.CloseLogged(s, "store", log)
		return nil, nil, err
	}

	return reg, s, nil
}

// NewActions builds the action handlers from the configured URL template
// and share texts.
func NewActions(cfg *config.Config, reg *registry.Registry, log logger.Logger) *actions.Handler {
	return actions.New(reg, cfg.SearchURL, actions.ShareConfig{
		Subject: cfg.ShareSubject,
		Text:    cfg.ShareText,
	}, log)
}
