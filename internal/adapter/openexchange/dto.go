package openexchange

// LatestRates is the body of latest.json.
type LatestRates struct {
	Disclaimer string             `json:"disclaimer,omitempty"`
	License    string             `json:"license,omitempty"`
	Timestamp  int64              `json:"timestamp"`
	Base       string             `json:"base"`
	Rates      map[string]float64 `json:"rates"`
}

// apiError is the body returned alongside non-2xx statuses.
type apiError struct {
	Error       bool   `json:"error"`
	Status      int    `json:"status"`
	Message     string `json:"message"`
	Description string `json:"description"`
}
