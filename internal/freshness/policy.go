// Package freshness decides whether cached data of a category may still be
// served. It is the only writer of the per-category sync timestamps.
package freshness

import (
	"context"
	"time"

	"converter-service/internal/adapter/prefs"
	"converter-service/internal/entity"

	"github.com/sirupsen/logrus"
)

const DefaultTTL = 30 * time.Minute

type Policy struct {
	prefs  prefs.Preferences
	ttl    map[entity.Category]time.Duration
	now    func() time.Time
	logger *logrus.Logger
}

type Option func(*Policy)

// WithTTL overrides the window for one category.
func WithTTL(category entity.Category, ttl time.Duration) Option {
	return func(p *Policy) {
		if ttl > 0 {
			p.ttl[category] = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Policy) {
		p.now = now
	}
}

func NewPolicy(preferences prefs.Preferences, logger *logrus.Logger, opts ...Option) *Policy {
	p := &Policy{
		prefs: preferences,
		ttl: map[entity.Category]time.Duration{
			entity.CategoryRates:        DefaultTTL,
			entity.CategoryCurrencyList: DefaultTTL,
		},
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Policy) TTL(category entity.Category) time.Duration {
	if ttl, ok := p.ttl[category]; ok {
		return ttl
	}
	return DefaultTTL
}

// TimeSinceLastSync reports ok=false when the category was never synced or
// its timestamp cannot be read.
func (p *Policy) TimeSinceLastSync(ctx context.Context, category entity.Category) (time.Duration, bool) {
	last, ok, err := p.prefs.GetTime(ctx, category.PreferenceKey())
	if err != nil {
		p.logger.WithError(err).WithField("category", category).Warn("Failed to read last sync time, treating as stale")
		return 0, false
	}
	if !ok {
		return 0, false
	}
	return p.now().Sub(last), true
}

// IsFresh holds while less than the category TTL has elapsed since the
// last recorded sync. Exactly TTL is stale.
func (p *Policy) IsFresh(ctx context.Context, category entity.Category) bool {
	elapsed, ok := p.TimeSinceLastSync(ctx, category)
	if !ok {
		return false
	}
	return elapsed < p.TTL(category)
}

func (p *Policy) RecordSync(ctx context.Context, category entity.Category) error {
	now := p.now()
	if err := p.prefs.SetTime(ctx, category.PreferenceKey(), now); err != nil {
		p.logger.WithError(err).WithField("category", category).Error("Failed to record sync time")
		return err
	}
	p.logger.WithFields(logrus.Fields{"category": category, "synced_at": now.Format(time.RFC3339)}).Debug("Recorded sync")
	return nil
}
