package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"converter-service/internal/adapter/openexchange"
	"converter-service/internal/entity"
	"converter-service/internal/metrics"
	"converter-service/internal/store"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type RateService struct {
	client  openexchange.RatesClient
	store   *store.Store
	metrics *metrics.Metrics
	logger  *logrus.Logger
	group   singleflight.Group
}

func NewRateService(client openexchange.RatesClient, store *store.Store, m *metrics.Metrics, logger *logrus.Logger) *RateService {
	return &RateService{
		client:  client,
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

// FetchRate returns rates expressed against code. The cache always holds the
// USD-anchored table; other bases are derived from it on every call.
func (r *RateService) FetchRate(ctx context.Context, code string) (*entity.RateSnapshot, error) {
	code = entity.NormalizeCode(code)
	log := r.logger.WithField("base", code)

	cached := r.store.ReadRates(ctx)
	if len(cached) > 0 {
		r.metrics.CacheHit(string(entity.CategoryRates))
		log.Debug("Serving rates from cache")
		return snapshot(code, cached), nil
	}

	r.metrics.CacheMiss(string(entity.CategoryRates))
	log.Info("Rates cache is empty or stale, fetching from remote")

	usdRates, err := r.fetchShared(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot(code, usdRates), nil
}

// RefreshRates fetches and persists the USD table regardless of freshness.
func (r *RateService) RefreshRates(ctx context.Context) (entity.RateTable, error) {
	return r.fetchShared(ctx)
}

func (r *RateService) RatesUpdatedAgo(ctx context.Context) (time.Duration, bool) {
	return r.store.Policy().TimeSinceLastSync(ctx, entity.CategoryRates)
}

// fetchShared collapses concurrent remote fetches into one call. The shared
// call is detached from any single caller's cancellation.
func (r *RateService) fetchShared(ctx context.Context) (entity.RateTable, error) {
	ch := r.group.DoChan(string(entity.CategoryRates), func() (any, error) {
		return r.fetchAndStore(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(entity.RateTable).Clone(), nil
	}
}

func (r *RateService) fetchAndStore(ctx context.Context) (entity.RateTable, error) {
	latest, err := r.client.FetchLatest(ctx, entity.USD)
	r.metrics.RemoteFetch(string(entity.CategoryRates), err)
	if err != nil {
		r.logger.Errorf("Failed to fetch latest rates: %v", err)
		return nil, fmt.Errorf("fetch latest rates: %w", err)
	}

	usdRates, err := convertLatest(latest, r.logger)
	if err != nil {
		r.logger.Errorf("Failed to convert response: %v", err)
		return nil, fmt.Errorf("convert response: %w", err)
	}

	if err := r.store.UpsertRates(ctx, usdRates); err != nil {
		r.logger.WithError(err).Warn("Serving fetched rates without caching them")
	}

	return usdRates, nil
}

func snapshot(code string, usdRates entity.RateTable) *entity.RateSnapshot {
	if code == entity.USD {
		return &entity.RateSnapshot{Base: code, Rates: usdRates}
	}
	return &entity.RateSnapshot{Base: code, Rates: DeriveRates(code, usdRates)}
}

// convertLatest normalizes codes, drops unusable rates and makes sure the
// result is anchored at USD.
func convertLatest(resp *openexchange.LatestRates, logger *logrus.Logger) (entity.RateTable, error) {
	result := make(entity.RateTable, len(resp.Rates))
	skipped := 0
	for code, rate := range resp.Rates {
		code = entity.NormalizeCode(code)
		if code == "" || rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			logger.Debugf("Skipped %q due to unusable rate %v", code, rate)
			skipped++
			continue
		}
		result[code] = rate
	}

	logger.Debugf("Converted %d valid rates out of %d (skipped %d)", len(result), len(resp.Rates), skipped)

	if len(result) == 0 {
		return nil, fmt.Errorf("%w: no usable rates in response", openexchange.ErrFetch)
	}

	base := entity.NormalizeCode(resp.Base)
	if base != "" && base != entity.USD {
		logger.Warnf("Remote returned rates based on %s, re-anchoring at USD", base)
		usd, ok := result[entity.USD]
		if !ok || usd <= 0 {
			return nil, fmt.Errorf("%w: rates based on %s cannot be anchored at USD", openexchange.ErrFetch, base)
		}
		rebased := make(entity.RateTable, len(result))
		for code, rate := range result {
			rebased[code] = rate / usd
		}
		return rebased, nil
	}

	return result, nil
}
