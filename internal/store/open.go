package store

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/tagsearch/internal/logger"
	"github.com/MrSnakeDoc/tagsearch/internal/redis"
	"github.com/MrSnakeDoc/tagsearch/internal/store/file"
	"github.com/MrSnakeDoc/tagsearch/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/tagsearch/internal/store/redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend        string               // "redis" | "file" | "memory"
	FilePath       string               // file backend: path of the YAML document
	Redis          redis.ConnectOptions // redis backend: connection + retry policy
	RedisNamespace string               // redis backend: key prefix
}

// Open builds the configured backend. For redis it blocks until the
// server answers or the connect timeout elapses.
func Open(ctx context.Context, opts Options, log logger.Logger) (Store, error) {
	switch opts.Backend {
	case BackendRedis:
		client, err := redis.New(ctx, opts.Redis, log)
		if err != nil {
			return nil, err
		}
		return redisstore.NewStore(client, opts.RedisNamespace), nil

	case BackendFile:
		s, err := file.NewStore(opts.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open file store: %w", err)
		}
		log.Info("using file store", logger.String("path", s.Path()))
		return s, nil

	case BackendMemory:
		log.Warn("using memory store, saved searches will not survive a restart")
		return memory.NewStore(), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
