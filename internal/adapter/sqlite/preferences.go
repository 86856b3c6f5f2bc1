package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const createPreferencesTable = `CREATE TABLE IF NOT EXISTS preferences (
    name  TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// PreferencesRepo keeps sync timestamps in the same file as the rate
// tables, so a restart sees the cache exactly as it was left.
type PreferencesRepo struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

func NewPreferencesRepo(ctx context.Context, db *sqlx.DB, logger *logrus.Logger) (*PreferencesRepo, error) {
	if _, err := db.ExecContext(ctx, createPreferencesTable); err != nil {
		logger.WithError(err).Error("Failed to create preferences table")
		return nil, fmt.Errorf("create preferences table: %w", err)
	}
	return &PreferencesRepo{
		db:     db,
		logger: logger,
	}, nil
}

func (r *PreferencesRepo) GetTime(ctx context.Context, key string) (time.Time, bool, error) {
	query, args, err := builder.Select("value").From("preferences").Where("name = ?", key).ToSql()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("build select: %w", err)
	}

	var value string
	if err := r.db.GetContext(ctx, &value, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.WithField("key", key).Debug("Preference not set")
			return time.Time{}, false, nil
		}
		r.logger.WithError(err).WithField("key", key).Error("Failed to read preference")
		return time.Time{}, false, fmt.Errorf("get %s: %w", key, err)
	}

	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Error("Failed to parse preference timestamp")
		return time.Time{}, false, fmt.Errorf("parse %s: %w", key, err)
	}
	return t, true, nil
}

func (r *PreferencesRepo) SetTime(ctx context.Context, key string, t time.Time) error {
	query, args, err := builder.Insert("preferences").
		Columns("name", "value").
		Values(key, t.Format(time.RFC3339Nano)).
		Suffix("ON CONFLICT(name) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithError(err).WithField("key", key).Error("Failed to write preference")
		return fmt.Errorf("set %s: %w", key, err)
	}
	r.logger.WithFields(logrus.Fields{"key": key, "timestamp": t}).Debug("Preference stored")
	return nil
}
