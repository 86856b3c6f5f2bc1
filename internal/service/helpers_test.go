package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"converter-service/internal/adapter/openexchange"
	"converter-service/internal/adapter/prefs"
	"converter-service/internal/entity"
	"converter-service/internal/freshness"
	"converter-service/internal/metrics"
	"converter-service/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
)

type mockRatesClient struct {
	mock.Mock
}

func (m *mockRatesClient) FetchCurrencies(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *mockRatesClient) FetchLatest(ctx context.Context, base string) (*openexchange.LatestRates, error) {
	args := m.Called(ctx, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openexchange.LatestRates), args.Error(1)
}

// fakeTables is a map-backed store.Tables with optional injected failures.
type fakeTables struct {
	mu         sync.Mutex
	rates      entity.RateTable
	currencies entity.CurrencyDirectory
	upserts    int
	failWrites bool
}

func newFakeTables() *fakeTables {
	return &fakeTables{rates: entity.RateTable{}, currencies: entity.CurrencyDirectory{}}
}

func (f *fakeTables) EnsureSchema(context.Context) error { return nil }

func (f *fakeTables) UpsertRates(_ context.Context, rates entity.RateTable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errors.New("disk I/O error")
	}
	f.upserts++
	for code, rate := range rates {
		f.rates[code] = rate
	}
	return nil
}

func (f *fakeTables) SelectRates(context.Context) (entity.RateTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rates.Clone(), nil
}

func (f *fakeTables) UpsertCurrencies(_ context.Context, currencies entity.CurrencyDirectory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errors.New("disk I/O error")
	}
	f.upserts++
	for code, name := range currencies {
		f.currencies[code] = name
	}
	return nil
}

func (f *fakeTables) SelectCurrencies(context.Context) (entity.CurrencyDirectory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(entity.CurrencyDirectory, len(f.currencies))
	for code, name := range f.currencies {
		out[code] = name
	}
	return out, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	client  *mockRatesClient
	tables  *fakeTables
	store   *store.Store
	clock   *clock
	metrics *metrics.Metrics
	logger  *logrus.Logger
	hook    *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	c := &clock{now: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)}
	tables := newFakeTables()
	policy := freshness.NewPolicy(prefs.NewMemory(), logger, freshness.WithClock(c.Now))

	return &fixture{
		client:  new(mockRatesClient),
		tables:  tables,
		store:   store.New(context.Background(), tables, policy, logger),
		clock:   c,
		metrics: metrics.NewMetrics(),
		logger:  logger,
		hook:    hook,
	}
}

func (f *fixture) rateService() *RateService {
	return NewRateService(f.client, f.store, f.metrics, f.logger)
}

func (f *fixture) currencyListService() *CurrencyListService {
	return NewCurrencyListService(f.client, f.store, f.metrics, f.logger)
}
