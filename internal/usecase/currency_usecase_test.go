package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"converter-service/internal/entity"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRateProvider struct {
	mock.Mock
}

func (m *mockRateProvider) FetchRate(ctx context.Context, code string) (*entity.RateSnapshot, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RateSnapshot), args.Error(1)
}

func (m *mockRateProvider) RefreshRates(ctx context.Context) (entity.RateTable, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entity.RateTable), args.Error(1)
}

func (m *mockRateProvider) RatesUpdatedAgo(ctx context.Context) (time.Duration, bool) {
	args := m.Called(ctx)
	return args.Get(0).(time.Duration), args.Bool(1)
}

type mockCurrencyListProvider struct {
	mock.Mock
}

func (m *mockCurrencyListProvider) FetchCurrencyList(ctx context.Context) (entity.CurrencyDirectory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entity.CurrencyDirectory), args.Error(1)
}

func (m *mockCurrencyListProvider) RefreshCurrencyList(ctx context.Context) (entity.CurrencyDirectory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entity.CurrencyDirectory), args.Error(1)
}

func setupTestUsecase() (*CurrencyUsecase, *mockRateProvider, *mockCurrencyListProvider, *test.Hook) {
	rates := new(mockRateProvider)
	currencies := new(mockCurrencyListProvider)
	logger, hook := test.NewNullLogger()
	return NewCurrencyUsecase(rates, currencies, logger), rates, currencies, hook
}

func TestGetRates(t *testing.T) {
	ctx := context.Background()
	uc, rates, _, _ := setupTestUsecase()

	expected := &entity.RateSnapshot{Base: "AED", Rates: entity.RateTable{"AED": 1, "USD": 1 / 3.67}}
	rates.On("FetchRate", ctx, "AED").Return(expected, nil)

	result, err := uc.GetRates(ctx, "aed")
	require.NoError(t, err)
	assert.Equal(t, expected, result)
	rates.AssertExpectations(t)
}

func TestGetRates_InvalidCode(t *testing.T) {
	uc, rates, _, _ := setupTestUsecase()

	for _, code := range []string{"", "US", "USDT", "U5D", "€UR"} {
		_, err := uc.GetRates(context.Background(), code)
		assert.ErrorIs(t, err, ErrInvalidCode, code)
	}
	rates.AssertNotCalled(t, "FetchRate", mock.Anything, mock.Anything)
}

func TestGetRates_ServiceError(t *testing.T) {
	ctx := context.Background()
	uc, rates, _, _ := setupTestUsecase()

	expectedErr := errors.New("remote fetch failed: status 429")
	rates.On("FetchRate", ctx, "EUR").Return(nil, expectedErr)

	_, err := uc.GetRates(ctx, "EUR")
	assert.ErrorIs(t, err, expectedErr)
}

func TestConvert(t *testing.T) {
	ctx := context.Background()
	uc, rates, _, _ := setupTestUsecase()

	rates.On("FetchRate", ctx, "USD").Return(&entity.RateSnapshot{Base: "USD", Rates: entity.RateTable{"USD": 1, "AED": 3.67}}, nil)
	rates.On("RatesUpdatedAgo", ctx).Return(5*time.Minute, true)

	result, err := uc.Convert(ctx, "USD", 10)
	require.NoError(t, err)

	assert.Equal(t, "USD", result.Base)
	assert.Equal(t, 10.0, result.Amount)
	assert.Equal(t, "Updated: 5 mins ago", result.UpdatedAt)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "AED", result.Items[0].Currency)
	assert.InDelta(t, 36.7, result.Items[0].Amount, 1e-9)
	assert.Equal(t, "\U0001F1E6\U0001F1EA", result.Items[0].Flag)
	assert.Equal(t, "USD", result.Items[1].Currency)
	assert.Equal(t, 10.0, result.Items[1].Amount)
}

func TestConvert_InvalidAmount(t *testing.T) {
	uc, rates, _, _ := setupTestUsecase()

	for _, amount := range []float64{0, -1} {
		_, err := uc.Convert(context.Background(), "USD", amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
	rates.AssertNotCalled(t, "FetchRate", mock.Anything, mock.Anything)
}

func TestConvert_EmptyRates(t *testing.T) {
	ctx := context.Background()
	uc, rates, _, _ := setupTestUsecase()

	rates.On("FetchRate", ctx, "XYZ").Return(&entity.RateSnapshot{Base: "XYZ", Rates: entity.RateTable{}}, nil)
	rates.On("RatesUpdatedAgo", ctx).Return(time.Duration(0), false)

	result, err := uc.Convert(ctx, "XYZ", 1)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Empty(t, result.UpdatedAt)
}

func TestGetCurrencyOptions(t *testing.T) {
	ctx := context.Background()
	uc, _, currencies, _ := setupTestUsecase()

	currencies.On("FetchCurrencyList", ctx).Return(entity.CurrencyDirectory{
		"USD": "United States Dollar",
		"AED": "United Arab Emirates Dirham",
		"BTC": "Bitcoin",
	}, nil)

	options, err := uc.GetCurrencyOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []CurrencyOption{
		{Currency: "AED", Name: "United Arab Emirates Dirham", Flag: "\U0001F1E6\U0001F1EA"},
		{Currency: "BTC", Name: "Bitcoin"},
		{Currency: "USD", Name: "United States Dollar", Flag: "\U0001F1FA\U0001F1F8"},
	}, options)
}

func TestRefreshAll(t *testing.T) {
	ctx := context.Background()
	uc, rates, currencies, _ := setupTestUsecase()

	rates.On("RefreshRates", ctx).Return(nil, errors.New("rates down"))
	currencies.On("RefreshCurrencyList", ctx).Return(entity.CurrencyDirectory{"USD": "United States Dollar"}, nil)

	err := uc.RefreshAll(ctx)
	assert.ErrorContains(t, err, "rates down")
	rates.AssertExpectations(t)
	currencies.AssertExpectations(t)
}

func TestStreamRates_Ordering(t *testing.T) {
	ctx := context.Background()
	uc, rates, _, _ := setupTestUsecase()

	release := make(chan time.Time)
	snapshot := &entity.RateSnapshot{Base: "USD", Rates: entity.RateTable{"USD": 1}}
	rates.On("FetchRate", ctx, "USD").WaitUntil(release).Return(snapshot, nil)

	ch := uc.StreamRates(ctx, "USD")

	select {
	case st := <-ch:
		assert.Equal(t, PhaseLoading, st.Phase)
		assert.False(t, st.Terminal())
	default:
		t.Fatal("loading state must be available as soon as the stream is returned")
	}

	close(release)

	var states []State[*entity.RateSnapshot]
	for st := range ch {
		states = append(states, st)
	}
	require.Len(t, states, 1)
	assert.Equal(t, PhaseSuccess, states[0].Phase)
	assert.Equal(t, snapshot, states[0].Data)
}

func TestStreamRates_Error(t *testing.T) {
	ctx := context.Background()
	uc, rates, _, _ := setupTestUsecase()

	rates.On("FetchRate", ctx, "EUR").Return(nil, errors.New("remote fetch failed: status 500"))

	last := Await(uc.StreamRates(ctx, "EUR"))
	assert.Equal(t, PhaseError, last.Phase)
	assert.Equal(t, "remote fetch failed: status 500", last.Message)
	assert.Error(t, last.Err)
	assert.Nil(t, last.Data)
}

func TestStreamCurrencyList(t *testing.T) {
	ctx := context.Background()
	uc, _, currencies, _ := setupTestUsecase()

	dir := entity.CurrencyDirectory{"USD": "United States Dollar"}
	currencies.On("FetchCurrencyList", ctx).Return(dir, nil)

	var phases []Phase
	var last State[entity.CurrencyDirectory]
	for st := range uc.StreamCurrencyList(ctx) {
		phases = append(phases, st.Phase)
		last = st
	}
	assert.Equal(t, []Phase{PhaseLoading, PhaseSuccess}, phases)
	assert.Equal(t, dir, last.Data)
}

func TestHandle(t *testing.T) {
	ctx := context.Background()
	uc, rates, currencies, _ := setupTestUsecase()

	snapshot := &entity.RateSnapshot{Base: "EUR", Rates: entity.RateTable{"EUR": 1}}
	rates.On("FetchRate", ctx, "EUR").Return(snapshot, nil)
	currencies.On("FetchCurrencyList", ctx).Return(entity.CurrencyDirectory{"EUR": "Euro"}, nil)

	st := Await(uc.Handle(ctx, Request{Category: CategoryRates, Base: "EUR"}))
	assert.Equal(t, PhaseSuccess, st.Phase)
	assert.Equal(t, snapshot, st.Data)

	st = Await(uc.Handle(ctx, Request{Category: CategoryCurrencyList}))
	assert.Equal(t, PhaseSuccess, st.Phase)
	assert.Equal(t, entity.CurrencyDirectory{"EUR": "Euro"}, st.Data)

	st = Await(uc.Handle(ctx, Request{Category: "history"}))
	assert.Equal(t, PhaseError, st.Phase)
	assert.ErrorIs(t, st.Err, ErrUnknownCategory)

	st = Await(uc.Handle(ctx, Request{Category: CategoryRates, Base: "EURO"}))
	assert.ErrorIs(t, st.Err, ErrInvalidCode)
}

func TestHandle_RatesDefaultToUSD(t *testing.T) {
	ctx := context.Background()
	uc, rates, _, _ := setupTestUsecase()

	snapshot := &entity.RateSnapshot{Base: "USD", Rates: entity.RateTable{"USD": 1, "AED": 3.67}}
	rates.On("FetchRate", ctx, "USD").Return(snapshot, nil)

	st := Await(uc.Handle(ctx, Request{Category: CategoryRates}))
	assert.Equal(t, PhaseSuccess, st.Phase)
	assert.Equal(t, snapshot, st.Data)
	rates.AssertExpectations(t)
}

func TestUpdatedLabel(t *testing.T) {
	assert.Equal(t, "", UpdatedLabel(0, false))
	assert.Equal(t, "Updated: just now", UpdatedLabel(30*time.Second, true))
	assert.Equal(t, "Updated: just now", UpdatedLabel(119*time.Second, true))
	assert.Equal(t, "Updated: 2 mins ago", UpdatedLabel(2*time.Minute, true))
	assert.Equal(t, "Updated: 29 mins ago", UpdatedLabel(29*time.Minute+59*time.Second, true))
}

func TestFlagEmoji(t *testing.T) {
	assert.Equal(t, "\U0001F1E6\U0001F1EA", FlagEmoji("AED"))
	assert.Equal(t, "\U0001F1FA\U0001F1F8", FlagEmoji("USD"))
	assert.Equal(t, "\U0001F1EF\U0001F1F5", FlagEmoji("JPY"))
	assert.Equal(t, "\U0001F1EA\U0001F1FA", FlagEmoji("EUR"))
	assert.Equal(t, "", FlagEmoji("BTC"))
	assert.Equal(t, "", FlagEmoji("XAU"))
	assert.Equal(t, "", FlagEmoji(""))
}
