package stake

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidQuote matches any *InvalidQuoteError.
	ErrInvalidQuote = errors.New("stake: quote must be greater than 1")

	// ErrNonConvergence matches any *NonConvergenceError.
	ErrNonConvergence = errors.New("stake: no distribution satisfies the target profit")
)

// InvalidQuoteError reports a quote that leaves no profit margin at all.
type InvalidQuoteError struct {
	Index int
	Quote decimal.Decimal
}

func (e *InvalidQuoteError) Error() string {
	return fmt.Sprintf("stake: quote %s at index %d must be greater than 1", e.Quote, e.Index)
}

// Is lets errors.Is match the ErrInvalidQuote sentinel.
func (e *InvalidQuoteError) Is(target error) bool {
	return target == ErrInvalidQuote
}

// NonConvergenceError reports that the solver gave up. Passes is zero when the
// quotes were rejected up front because their book sum leaves no margin.
type NonConvergenceError struct {
	Passes  int
	BookSum decimal.Decimal
}

func (e *NonConvergenceError) Error() string {
	if e.Passes == 0 {
		return fmt.Sprintf("stake: quotes have no margin for a positive target (book sum %s >= 1)",
			e.BookSum.StringFixed(4))
	}
	return fmt.Sprintf("stake: no valid distribution after %d passes (book sum %s)",
		e.Passes, e.BookSum.StringFixed(4))
}

// Is lets errors.Is match the ErrNonConvergence sentinel.
func (e *NonConvergenceError) Is(target error) bool {
	return target == ErrNonConvergence
}

func validateQuote(index int, quote decimal.Decimal) error {
	if quote.LessThanOrEqual(decimal.NewFromInt(1)) {
		return &InvalidQuoteError{Index: index, Quote: quote}
	}
	return nil
}

func validateQuotes(quotes []decimal.Decimal) error {
	for i, q := range quotes {
		if err := validateQuote(i, q); err != nil {
			return err
		}
	}
	return nil
}
