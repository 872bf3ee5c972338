package stake

import (
	"github.com/iwvelando/stake-distributor/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// EffectiveProfits returns, for every outcome, the net profit realised if that
// outcome wins: stake*quote minus the total staked across all outcomes.
// quotes and stakes must be index-aligned.
func EffectiveProfits(quotes, stakes []decimal.Decimal) []decimal.Decimal {
	total := mathutil.Sum(stakes)
	profits := make([]decimal.Decimal, len(quotes))
	for i := range quotes {
		profits[i] = stakes[i].Mul(quotes[i]).Sub(total)
	}
	return profits
}

// MeetsTarget reports whether every outcome's effective profit reaches target.
// It stops at the first outcome that falls short.
func MeetsTarget(quotes, stakes []decimal.Decimal, target decimal.Decimal) bool {
	total := mathutil.Sum(stakes)
	for i := range quotes {
		if stakes[i].Mul(quotes[i]).Sub(total).LessThan(target) {
			return false
		}
	}
	return true
}
