package main

import (
	"context"
	"errors"
	"fmt"

	"converter-service/internal/adapter/postgres"
	"converter-service/internal/adapter/prefs"
	"converter-service/internal/adapter/sqlite"
	"converter-service/internal/store"
	"converter-service/pkg/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var ErrUnsupportedDriver = errors.New("unsupported storage driver")

// storage is the configured backend: the rate tables plus a preferences
// table in the same database, so sync timestamps outlive the process.
type storage struct {
	tables      store.Tables
	preferences prefs.Preferences
	close       func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case "sqlite", "":
		db, err := sqlite.Open(ctx, cfg.SQLite.Path, logger)
		if err != nil {
			return nil, err
		}
		preferences, err := sqlite.NewPreferencesRepo(ctx, db, logger)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return &storage{
			tables:      sqlite.NewSQLiteRepo(db, logger),
			preferences: preferences,
			close:       func() { _ = db.Close() },
		}, nil
	case "postgres":
		pool, err := postgres.InitDBPool(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		preferences, err := postgres.NewPreferencesRepo(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return &storage{
			tables:      postgres.NewPostgresRepo(pool, logger),
			preferences: preferences,
			close:       pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Storage.Driver)
	}
}

// openPreferences uses Redis when an address is configured and the storage
// backend's preferences table otherwise.
func openPreferences(ctx context.Context, cfg config.RedisConfig, fallback prefs.Preferences, logger *logrus.Logger) (prefs.Preferences, func(), error) {
	if cfg.Addr == "" {
		logger.Info("Redis address not set, keeping sync timestamps in the storage database")
		return fallback, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	logger.Infof("Connected to Redis at %s", cfg.Addr)

	return prefs.NewRedis(client, cfg.Prefix, logger), func() { _ = client.Close() }, nil
}
