// Package store is the persistent cache of rates and currency names.
//
// Reads are gated by the freshness policy: a stale category reads as empty,
// never as a partial or outdated table. Storage failures are logged and
// reported as "no data" so callers fall through to the network.
package store

import (
	"context"
	"fmt"

	"converter-service/internal/entity"
	"converter-service/internal/freshness"

	"github.com/sirupsen/logrus"
)

type Store struct {
	tables Tables
	policy *freshness.Policy
	logger *logrus.Logger
}

// New wires the store and makes sure the schema exists. A schema failure
// is logged; later reads then fail open.
func New(ctx context.Context, tables Tables, policy *freshness.Policy, logger *logrus.Logger) *Store {
	s := &Store{
		tables: tables,
		policy: policy,
		logger: logger,
	}
	if err := tables.EnsureSchema(ctx); err != nil {
		logger.WithError(err).Error("Failed to ensure cache schema")
	}
	return s
}

func (s *Store) Policy() *freshness.Policy {
	return s.policy
}

// UpsertRates writes every row and, only if that succeeded, marks rates as
// freshly synced.
func (s *Store) UpsertRates(ctx context.Context, rates entity.RateTable) error {
	if len(rates) == 0 {
		return nil
	}
	if err := s.tables.UpsertRates(ctx, rates); err != nil {
		s.logger.WithError(err).WithField("rows", len(rates)).Error("Failed to upsert rates")
		return fmt.Errorf("upsert rates: %w", err)
	}
	if err := s.policy.RecordSync(ctx, entity.CategoryRates); err != nil {
		return fmt.Errorf("record rates sync: %w", err)
	}
	s.logger.WithField("rows", len(rates)).Info("Cached rates")
	return nil
}

func (s *Store) ReadRates(ctx context.Context) entity.RateTable {
	if !s.policy.IsFresh(ctx, entity.CategoryRates) {
		s.logger.Debug("Cached rates are stale")
		return entity.RateTable{}
	}
	rates, err := s.tables.SelectRates(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read cached rates, treating as cache miss")
		return entity.RateTable{}
	}
	if rates == nil {
		return entity.RateTable{}
	}
	return rates
}

func (s *Store) UpsertCurrencyDirectory(ctx context.Context, currencies entity.CurrencyDirectory) error {
	if len(currencies) == 0 {
		return nil
	}
	if err := s.tables.UpsertCurrencies(ctx, currencies); err != nil {
		s.logger.WithError(err).WithField("rows", len(currencies)).Error("Failed to upsert currencies")
		return fmt.Errorf("upsert currencies: %w", err)
	}
	if err := s.policy.RecordSync(ctx, entity.CategoryCurrencyList); err != nil {
		return fmt.Errorf("record currency list sync: %w", err)
	}
	s.logger.WithField("rows", len(currencies)).Info("Cached currency list")
	return nil
}

func (s *Store) ReadCurrencyDirectory(ctx context.Context) entity.CurrencyDirectory {
	if !s.policy.IsFresh(ctx, entity.CategoryCurrencyList) {
		s.logger.Debug("Cached currency list is stale")
		return entity.CurrencyDirectory{}
	}
	currencies, err := s.tables.SelectCurrencies(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read cached currencies, treating as cache miss")
		return entity.CurrencyDirectory{}
	}
	if currencies == nil {
		return entity.CurrencyDirectory{}
	}
	return currencies
}
