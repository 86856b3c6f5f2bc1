package entity

import (
	"sort"
	"strings"
)

// USD is the anchor of every persisted rate table.
const USD = "USD"

// RateTable maps a currency code to its rate relative to some base currency.
type RateTable map[string]float64

// CurrencyDirectory maps a currency code to its display name.
type CurrencyDirectory map[string]string

// RateSnapshot is a rate table together with the base it is expressed in.
type RateSnapshot struct {
	Base  string    `json:"base"`
	Rates RateTable `json:"rates"`
}

type Category string

const (
	CategoryRates        Category = "rates"
	CategoryCurrencyList Category = "currency_list"
)

// PreferenceKey is the key under which the last sync time of the category is kept.
func (c Category) PreferenceKey() string {
	switch c {
	case CategoryRates:
		return "ratesUpdatedAt"
	case CategoryCurrencyList:
		return "currencyListUpdatedAt"
	default:
		return string(c) + "UpdatedAt"
	}
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (t RateTable) Clone() RateTable {
	out := make(RateTable, len(t))
	for code, rate := range t {
		out[code] = rate
	}
	return out
}

// Codes returns the table's currency codes in ascending order.
func (t RateTable) Codes() []string {
	codes := make([]string, 0, len(t))
	for code := range t {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Codes returns the directory's currency codes in ascending order.
func (d CurrencyDirectory) Codes() []string {
	codes := make([]string, 0, len(d))
	for code := range d {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
