// Package cli holds the shared plumbing for the flume commands:
// building stores and managers from configuration and rendering
// reports for the terminal.
package cli

import (
	"fmt"
	"strings"

	"log/slog"

	fileadapter "github.com/aretw0/flume/internal/adapters/file"
	redisadapter "github.com/aretw0/flume/internal/adapters/redis"
	"github.com/aretw0/flume/internal/config"
	"github.com/aretw0/flume/internal/logging"
	"github.com/aretw0/flume/pkg/adapters/memory"
	"github.com/aretw0/flume/pkg/ports"
	"github.com/aretw0/flume/pkg/session"
	backend "github.com/redis/go-redis/v9"
)

// NewLogger builds the application logger from config values.
func NewLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if strings.EqualFold(cfg.LogFormat, "json") {
		return logging.NewJSON(level)
	}
	return logging.New(level)
}

// NewStore builds the snapshot store the config selects. The redis
// backend also yields a distributed locker sharing the same client;
// the other backends return a nil locker. The returned closer releases
// backend connections; for backends without any it is a no-op.
func NewStore(cfg config.Config) (ports.SnapshotStore, ports.DistributedLocker, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Backend {
	case config.StoreMemory:
		return memory.NewStore(), nil, noop, nil
	case config.StoreFile:
		return fileadapter.New(cfg.Store.Path), nil, noop, nil
	case config.StoreRedis:
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Store.Redis.Address,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		var opts []redisadapter.Option
		if cfg.Store.Redis.TTL > 0 {
			opts = append(opts, redisadapter.WithTTL(cfg.Store.Redis.TTL))
		}
		store := redisadapter.NewFromClient(client, opts...)
		locker := redisadapter.NewLocker(client, "flume:lock:")
		return store, locker, store.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// NewManager wires store, locker, logger and history cap into a
// session Manager.
func NewManager(cfg config.Config, logger *slog.Logger) (*session.Manager, func() error, error) {
	store, locker, closer, err := NewStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	if cfg.HistoryCap > 0 {
		opts = append(opts, session.WithHistoryCap(cfg.HistoryCap))
	}
	return session.NewManager(store, opts...), closer, nil
}
