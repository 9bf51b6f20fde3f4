package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"scoresight/internal/config"
	"scoresight/internal/db"
)

// Open construye el Store indicado por STORE_DRIVER. La funcion de cierre
// devuelta nunca es nil.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, func(), error) {
	noop := func() {}
	if logger == nil {
		logger = zap.NewNop()
	}
	driver := "sqlite"
	if cfg != nil && strings.TrimSpace(cfg.StoreDriver) != "" {
		driver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	}

	switch driver {
	case "memory":
		return NewMemoryStore(), noop, nil
	case "sqlite":
		path := "scoresight.db"
		if cfg != nil && cfg.SQLitePath != "" {
			path = cfg.SQLitePath
		}
		store, err := OpenSQLite(path)
		if err != nil {
			return nil, noop, err
		}
		logger.Debug("store opened", zap.String("driver", driver), zap.String("path", path))
		return store, closeSQLite(store), nil
	case "redis":
		if cfg == nil || cfg.RedisAddr == "" {
			return nil, noop, fmt.Errorf("redis store: REDIS_ADDR not configured")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(ctxPing).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("redis ping: %w", err)
		}
		logger.Debug("store opened", zap.String("driver", driver), zap.String("addr", cfg.RedisAddr))
		return NewRedisStore(client), func() { client.Close() }, nil
	case "postgres":
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		if err := db.Ping(ctx, pool); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("postgres ping: %w", err)
		}
		store := NewPgStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("ensure client_settings: %w", err)
		}
		logger.Debug("store opened", zap.String("driver", driver))
		return store, pool.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", driver)
	}
}

func closeSQLite(store Store) func() {
	s, ok := store.(*sqliteStore)
	if !ok {
		return func() {}
	}
	return func() {
		if sqlDB, err := s.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
