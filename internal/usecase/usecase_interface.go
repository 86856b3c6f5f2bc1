package usecase

import (
	"context"

	"converter-service/internal/entity"
)

type RateUsecase interface {
	GetRates(ctx context.Context, base string) (*entity.RateSnapshot, error)
	GetCurrencyOptions(ctx context.Context) ([]CurrencyOption, error)
	Convert(ctx context.Context, base string, amount float64) (*ConversionResponse, error)
	RefreshAll(ctx context.Context) error

	StreamRates(ctx context.Context, base string) <-chan State[*entity.RateSnapshot]
	StreamCurrencyList(ctx context.Context) <-chan State[entity.CurrencyDirectory]
	Handle(ctx context.Context, req Request) <-chan State[any]
}
