package store

import (
	"context"

	"converter-service/internal/entity"
)

// Tables is the on-disk backend of the store: a rates table and a
// currencies table keyed by currency code.
type Tables interface {
	// EnsureSchema creates both tables if absent. Safe to call on every start.
	EnsureSchema(ctx context.Context) error

	UpsertRates(ctx context.Context, rates entity.RateTable) error
	SelectRates(ctx context.Context) (entity.RateTable, error)

	UpsertCurrencies(ctx context.Context, currencies entity.CurrencyDirectory) error
	SelectCurrencies(ctx context.Context) (entity.CurrencyDirectory, error)
}
