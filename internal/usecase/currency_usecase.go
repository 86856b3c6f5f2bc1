package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"

	"converter-service/internal/entity"
	"converter-service/internal/service"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

var (
	ErrInvalidCode     = errors.New("invalid char code format, expected 3 letters")
	ErrInvalidAmount   = errors.New("invalid 'amount', must be a positive number")
	ErrUnknownCategory = errors.New("unknown category")
)

var charCodeRegexp = regexp.MustCompile(`^[A-Z]{3}$`)

type CurrencyUsecase struct {
	rates      service.RateProvider
	currencies service.CurrencyListProvider
	logger     *logrus.Logger
}

func NewCurrencyUsecase(rates service.RateProvider, currencies service.CurrencyListProvider, logger *logrus.Logger) *CurrencyUsecase {
	return &CurrencyUsecase{
		rates:      rates,
		currencies: currencies,
		logger:     logger,
	}
}

func validateCode(code string) (string, error) {
	code = entity.NormalizeCode(code)
	if !charCodeRegexp.MatchString(code) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	return code, nil
}

func (uc *CurrencyUsecase) GetRates(ctx context.Context, base string) (*entity.RateSnapshot, error) {
	code, err := validateCode(base)
	if err != nil {
		uc.logger.Errorf("Bad currency format %s", base)
		return nil, err
	}

	snapshot, err := uc.rates.FetchRate(ctx, code)
	if err != nil {
		uc.logger.WithError(err).Errorf("Failed to get rates for %s", code)
		return nil, err
	}

	uc.logger.Infof("Successfully fetched %d rates for base %s", len(snapshot.Rates), code)
	return snapshot, nil
}

func (uc *CurrencyUsecase) GetCurrencyOptions(ctx context.Context) ([]CurrencyOption, error) {
	directory, err := uc.currencies.FetchCurrencyList(ctx)
	if err != nil {
		uc.logger.WithError(err).Error("Failed to get currency list")
		return nil, err
	}

	options := make([]CurrencyOption, 0, len(directory))
	for _, code := range directory.Codes() {
		options = append(options, CurrencyOption{
			Currency: code,
			Name:     directory[code],
			Flag:     FlagEmoji(code),
		})
	}
	return options, nil
}

// Convert multiplies amount by every rate against base, sorted by code.
func (uc *CurrencyUsecase) Convert(ctx context.Context, base string, amount float64) (*ConversionResponse, error) {
	if amount <= 0 || math.IsInf(amount, 0) || math.IsNaN(amount) {
		return nil, ErrInvalidAmount
	}

	snapshot, err := uc.GetRates(ctx, base)
	if err != nil {
		return nil, err
	}

	items := make([]ConvertedCurrency, 0, len(snapshot.Rates))
	for _, code := range snapshot.Rates.Codes() {
		items = append(items, ConvertedCurrency{
			Currency: code,
			Amount:   amount * snapshot.Rates[code],
			Flag:     FlagEmoji(code),
		})
	}

	ago, ok := uc.rates.RatesUpdatedAgo(ctx)

	return &ConversionResponse{
		Base:      snapshot.Base,
		Flag:      FlagEmoji(snapshot.Base),
		Amount:    amount,
		UpdatedAt: UpdatedLabel(ago, ok),
		Items:     items,
	}, nil
}

// RefreshAll forces a remote sync of both categories.
func (uc *CurrencyUsecase) RefreshAll(ctx context.Context) error {
	uc.logger.Info("Refreshing rates and currency list from remote...")

	var errs error
	if _, err := uc.rates.RefreshRates(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := uc.currencies.RefreshCurrencyList(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

func (uc *CurrencyUsecase) StreamRates(ctx context.Context, base string) <-chan State[*entity.RateSnapshot] {
	return stream(ctx, func(ctx context.Context) (*entity.RateSnapshot, error) {
		return uc.GetRates(ctx, base)
	})
}

func (uc *CurrencyUsecase) StreamCurrencyList(ctx context.Context) <-chan State[entity.CurrencyDirectory] {
	return stream(ctx, uc.currencies.FetchCurrencyList)
}

// Handle serves a caller request as an untyped stream. Rates without a base
// are USD rates.
func (uc *CurrencyUsecase) Handle(ctx context.Context, req Request) <-chan State[any] {
	return stream(ctx, func(ctx context.Context) (any, error) {
		switch req.Category {
		case CategoryRates:
			base := req.Base
			if base == "" {
				base = entity.USD
			}
			return uc.GetRates(ctx, base)
		case CategoryCurrencyList:
			return uc.currencies.FetchCurrencyList(ctx)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, req.Category)
		}
	})
}

func UpdatedLabel(ago time.Duration, ok bool) string {
	if !ok {
		return ""
	}
	minutes := int(ago / time.Minute)
	if minutes > 1 {
		return fmt.Sprintf("Updated: %d mins ago", minutes)
	}
	return "Updated: just now"
}
