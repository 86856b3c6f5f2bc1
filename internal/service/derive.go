package service

import "converter-service/internal/entity"

// DeriveRates re-anchors a USD-based table at targetBase:
// result[k] = usdRates[k] / usdRates[targetBase].
//
// A target that is missing from the table or has a non-positive rate yields
// an empty table. USD itself returns the input unchanged.
func DeriveRates(targetBase string, usdRates entity.RateTable) entity.RateTable {
	if targetBase == entity.USD {
		return usdRates
	}

	baseRate, ok := usdRates[targetBase]
	if !ok || baseRate <= 0 {
		return entity.RateTable{}
	}

	result := make(entity.RateTable, len(usdRates))
	for code, usdRate := range usdRates {
		result[code] = usdRate / baseRate
	}
	return result
}
