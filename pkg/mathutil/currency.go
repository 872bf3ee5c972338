// Package mathutil provides common mathematical utility functions for money
// amounts expressed as decimals.
package mathutil

import (
	"github.com/iwvelando/stake-distributor/pkg/constants"
	"github.com/shopspring/decimal"
)

// CeilToPlaces rounds a value up (toward positive infinity) to the given
// number of decimal places.
func CeilToPlaces(val decimal.Decimal, places int32) decimal.Decimal {
	return val.RoundCeil(places)
}

// CeilToCents rounds a value up to two decimals, i.e. to represent real currency.
func CeilToCents(val decimal.Decimal) decimal.Decimal {
	return CeilToPlaces(val, constants.StakePrecisionPlaces)
}

// CeilToUnit rounds a value up to the next whole unit.
func CeilToUnit(val decimal.Decimal) decimal.Decimal {
	return val.Ceil()
}

// NonNegative clamps negative values to zero.
func NonNegative(val decimal.Decimal) decimal.Decimal {
	if val.IsNegative() {
		return decimal.Zero
	}
	return val
}

// Sum adds up all values. An empty slice sums to zero.
func Sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// FromFloats converts float64 inputs (config, JSON) into decimals using the
// shortest representation of each float, so 1.1 becomes exactly 1.1.
func FromFloats(values []float64) []decimal.Decimal {
	if values == nil {
		return nil
	}
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}
