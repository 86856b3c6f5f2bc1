package prefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Redis stores timestamps as RFC3339Nano strings without expiry so they
// survive process restarts.
type Redis struct {
	client redis.UniversalClient
	prefix string
	logger *logrus.Logger
}

func NewRedis(client redis.UniversalClient, prefix string, logger *logrus.Logger) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}

func (r *Redis) GetTime(ctx context.Context, key string) (time.Time, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		r.logger.WithField("key", key).Debug("Preference not set")
		return time.Time{}, false, nil
	}
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Error("Failed to read preference")
		return time.Time{}, false, fmt.Errorf("get %s: %w", key, err)
	}

	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Error("Failed to parse preference timestamp")
		return time.Time{}, false, fmt.Errorf("parse %s: %w", key, err)
	}
	return t, true, nil
}

func (r *Redis) SetTime(ctx context.Context, key string, t time.Time) error {
	if err := r.client.Set(ctx, r.key(key), t.Format(time.RFC3339Nano), 0).Err(); err != nil {
		r.logger.WithError(err).WithField("key", key).Error("Failed to write preference")
		return fmt.Errorf("set %s: %w", key, err)
	}
	r.logger.WithFields(logrus.Fields{"key": key, "timestamp": t}).Debug("Preference stored")
	return nil
}
