// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/stake-distributor/internal/distribution"
	"github.com/shopspring/decimal"
)

// FindDistribution finds a book by name in the results slice.
// Returns a pointer to the distribution if found, nil otherwise.
func FindDistribution(results []distribution.Distribution, name string) *distribution.Distribution {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// Decimals converts string literals to decimals, panicking on bad input.
func Decimals(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}
