package service

import (
	"context"
	"fmt"
	"strings"

	"converter-service/internal/adapter/openexchange"
	"converter-service/internal/entity"
	"converter-service/internal/metrics"
	"converter-service/internal/store"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type CurrencyListService struct {
	client  openexchange.RatesClient
	store   *store.Store
	metrics *metrics.Metrics
	logger  *logrus.Logger
	group   singleflight.Group
}

func NewCurrencyListService(client openexchange.RatesClient, store *store.Store, m *metrics.Metrics, logger *logrus.Logger) *CurrencyListService {
	return &CurrencyListService{
		client:  client,
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

func (s *CurrencyListService) FetchCurrencyList(ctx context.Context) (entity.CurrencyDirectory, error) {
	cached := s.store.ReadCurrencyDirectory(ctx)
	if len(cached) > 0 {
		s.metrics.CacheHit(string(entity.CategoryCurrencyList))
		s.logger.Debug("Serving currency list from cache")
		return cached, nil
	}

	s.metrics.CacheMiss(string(entity.CategoryCurrencyList))
	s.logger.Info("Currency list cache is empty or stale, fetching from remote")
	return s.fetchShared(ctx)
}

func (s *CurrencyListService) RefreshCurrencyList(ctx context.Context) (entity.CurrencyDirectory, error) {
	return s.fetchShared(ctx)
}

func (s *CurrencyListService) fetchShared(ctx context.Context) (entity.CurrencyDirectory, error) {
	ch := s.group.DoChan(string(entity.CategoryCurrencyList), func() (any, error) {
		return s.fetchAndStore(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		shared := res.Val.(entity.CurrencyDirectory)
		out := make(entity.CurrencyDirectory, len(shared))
		for code, name := range shared {
			out[code] = name
		}
		return out, nil
	}
}

func (s *CurrencyListService) fetchAndStore(ctx context.Context) (entity.CurrencyDirectory, error) {
	names, err := s.client.FetchCurrencies(ctx)
	s.metrics.RemoteFetch(string(entity.CategoryCurrencyList), err)
	if err != nil {
		s.logger.Errorf("Failed to fetch currency list: %v", err)
		return nil, fmt.Errorf("fetch currency list: %w", err)
	}

	directory := make(entity.CurrencyDirectory, len(names))
	for code, name := range names {
		code = entity.NormalizeCode(code)
		if code == "" {
			continue
		}
		directory[code] = strings.TrimSpace(name)
	}

	if err := s.store.UpsertCurrencyDirectory(ctx, directory); err != nil {
		s.logger.WithError(err).Warn("Serving fetched currency list without caching it")
	}

	s.logger.Infof("Fetched %d currency names", len(directory))
	return directory, nil
}
