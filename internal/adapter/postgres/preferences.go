package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const createPreferencesTable = `CREATE TABLE IF NOT EXISTS preferences (
    name  TEXT PRIMARY KEY,
    value TIMESTAMPTZ NOT NULL
)`

type PreferencesRepo struct {
	pool   Pool
	logger *logrus.Logger
}

func NewPreferencesRepo(ctx context.Context, pool Pool, logger *logrus.Logger) (*PreferencesRepo, error) {
	if _, err := pool.Exec(ctx, createPreferencesTable); err != nil {
		logger.WithError(err).Error("Failed to create preferences table")
		return nil, fmt.Errorf("create preferences table: %w", err)
	}
	return &PreferencesRepo{
		pool:   pool,
		logger: logger,
	}, nil
}

func (r *PreferencesRepo) GetTime(ctx context.Context, key string) (time.Time, bool, error) {
	query, args, err := psql.Select("value").From("preferences").Where("name = ?", key).ToSql()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Error("Failed to read preference")
		return time.Time{}, false, fmt.Errorf("get %s: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			r.logger.WithError(err).WithField("key", key).Error("Failed to read preference")
			return time.Time{}, false, fmt.Errorf("get %s: %w", key, err)
		}
		r.logger.WithField("key", key).Debug("Preference not set")
		return time.Time{}, false, nil
	}

	var t time.Time
	if err := rows.Scan(&t); err != nil {
		return time.Time{}, false, fmt.Errorf("scan %s: %w", key, err)
	}
	return t, true, nil
}

func (r *PreferencesRepo) SetTime(ctx context.Context, key string, t time.Time) error {
	query, args, err := psql.Insert("preferences").
		Columns("name", "value").
		Values(key, t).
		Suffix("ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		r.logger.WithError(err).WithField("key", key).Error("Failed to write preference")
		return fmt.Errorf("set %s: %w", key, err)
	}
	r.logger.WithFields(logrus.Fields{"key": key, "timestamp": t}).Debug("Preference stored")
	return nil
}
