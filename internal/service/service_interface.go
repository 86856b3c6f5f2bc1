package service

import (
	"context"
	"time"

	"converter-service/internal/entity"
)

type RateProvider interface {
	FetchRate(ctx context.Context, code string) (*entity.RateSnapshot, error)
	RefreshRates(ctx context.Context) (entity.RateTable, error)
	RatesUpdatedAgo(ctx context.Context) (time.Duration, bool)
}

type CurrencyListProvider interface {
	FetchCurrencyList(ctx context.Context) (entity.CurrencyDirectory, error)
	RefreshCurrencyList(ctx context.Context) (entity.CurrencyDirectory, error)
}
