package usecase

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// Currencies whose issuer is not a single ISO 3166 country.
var regionOverrides = map[string]string{
	"EUR": "EU",
}

// FlagEmoji returns the flag of the region issuing the ISO 4217 code, or ""
// when the code has no single issuing region (metals, crypto, unions other
// than the overrides).
func FlagEmoji(code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return ""
	}
	code = unit.String()

	if region, ok := regionOverrides[code]; ok {
		return flag(region)
	}

	region, err := language.ParseRegion(code[:2])
	if err != nil {
		return ""
	}
	if issued, ok := currency.FromRegion(region); !ok || issued != unit {
		return ""
	}
	return flag(region.String())
}

func flag(region string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(region) {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}
