// Package odds provides implied-probability arithmetic over decimal quotes.
//
// A quote q pays q units for every unit staked on the winning outcome, so its
// implied probability is 1/q. The book sum of a market is the sum of implied
// probabilities over all of its mutually exclusive outcomes; a guaranteed profit
// floor exists only when the book sum is below one.
package odds

import (
	"github.com/shopspring/decimal"
)

// ImpliedProbability returns 1/quote. Quotes must be positive.
func ImpliedProbability(quote decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Div(quote)
}

// bookFraction returns the book sum as num/den without dividing:
// den is the product of all quotes and num is the sum, over every outcome, of
// the product of the other quotes. Decimal multiplication is exact, so
// comparing num with den decides the margin exactly.
func bookFraction(quotes []decimal.Decimal) (num, den decimal.Decimal) {
	n := len(quotes)
	// suffix[i] is the product of quotes[i:].
	suffix := make([]decimal.Decimal, n+1)
	suffix[n] = decimal.NewFromInt(1)
	for i := n - 1; i >= 0; i-- {
		suffix[i] = suffix[i+1].Mul(quotes[i])
	}

	num = decimal.Zero
	prefix := decimal.NewFromInt(1)
	for i := 0; i < n; i++ {
		num = num.Add(prefix.Mul(suffix[i+1]))
		prefix = prefix.Mul(quotes[i])
	}
	return num, suffix[0]
}

// BookSum returns the sum of implied probabilities of all quotes. The result
// is divided once, so a book summing to exactly one reports exactly one.
func BookSum(quotes []decimal.Decimal) decimal.Decimal {
	if len(quotes) == 0 {
		return decimal.Zero
	}
	num, den := bookFraction(quotes)
	return num.Div(den)
}

// Margin returns 1 - BookSum. Positive margin means the quotes leave room for a
// profit on every outcome simultaneously.
func Margin(quotes []decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Sub(BookSum(quotes))
}

// HasMargin reports whether a positive profit floor is reachable. The
// comparison is exact even when BookSum rounds.
func HasMargin(quotes []decimal.Decimal) bool {
	num, den := bookFraction(quotes)
	return num.LessThan(den)
}

// MinimumTotalStake returns the unrounded lower bound on the total stake
// required to guarantee target on every outcome: target * B / (1 - B) where B
// is the book sum. ok is false when the quotes have no margin.
func MinimumTotalStake(target decimal.Decimal, quotes []decimal.Decimal) (total decimal.Decimal, ok bool) {
	if len(quotes) == 0 {
		return decimal.Zero, true
	}
	if !HasMargin(quotes) {
		return decimal.Zero, false
	}
	if !target.IsPositive() {
		return decimal.Zero, true
	}
	num, den := bookFraction(quotes)
	return target.Mul(num).Div(den.Sub(num)), true
}
