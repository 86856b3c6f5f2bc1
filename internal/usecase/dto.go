package usecase

// CurrencyOption is one row of the currency picker.
type CurrencyOption struct {
	Currency string `json:"currency"`
	Name     string `json:"name"`
	Flag     string `json:"flag,omitempty"`
}

type ConvertedCurrency struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
	Flag     string  `json:"flag,omitempty"`
}

type ConversionResponse struct {
	Base      string              `json:"base"`
	Flag      string              `json:"flag,omitempty"`
	Amount    float64             `json:"amount"`
	UpdatedAt string              `json:"updated_at,omitempty"`
	Items     []ConvertedCurrency `json:"items"`
}

type Category string

const (
	CategoryRates        Category = "rates"
	CategoryCurrencyList Category = "currencyList"
)

// Request is the caller-facing query: rates need a base, the currency list
// does not.
type Request struct {
	Category Category `json:"category"`
	Base     string   `json:"base,omitempty"`
}
