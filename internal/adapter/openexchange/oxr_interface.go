package openexchange

import "context"

type RatesClient interface {
	FetchCurrencies(ctx context.Context) (map[string]string, error)
	FetchLatest(ctx context.Context, base string) (*LatestRates, error)
}
