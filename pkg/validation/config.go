package validation

import (
	"fmt"
	"math"

	"github.com/iwvelando/stake-distributor/pkg/mathutil"
	"github.com/iwvelando/stake-distributor/pkg/odds"
	"github.com/shopspring/decimal"
)

// ValidateQuotes checks that every quote of a book is a finite number greater than 1.
func ValidateQuotes(bookName string, quotes []float64) error {
	for i, q := range quotes {
		if !(q > 1) || math.IsInf(q, 0) {
			return fmt.Errorf("book '%s' quote %d is %g; quotes must be finite and greater than 1", bookName, i+1, q)
		}
	}
	return nil
}

// ValidateTargetProfit checks that a book's target profit is a finite number.
func ValidateTargetProfit(bookName string, targetProfit float64) error {
	if math.IsNaN(targetProfit) || math.IsInf(targetProfit, 0) {
		return fmt.Errorf("book '%s' target profit is %g; it must be a finite number", bookName, targetProfit)
	}
	return nil
}

// ValidateMargin returns a warning when a positive target cannot be reached
// because the book's implied probabilities sum to one or more.
func ValidateMargin(bookName string, targetProfit float64, quotes []float64) string {
	if targetProfit <= 0 || len(quotes) == 0 {
		return ""
	}
	values := mathutil.FromFloats(quotes)
	if odds.HasMargin(values) {
		return ""
	}
	return fmt.Sprintf("Book '%s' has no margin (book sum %s >= 1) - target profit %g is unreachable",
		bookName, odds.BookSum(values).StringFixed(4), targetProfit)
}

// ConfigValidator performs comprehensive configuration validation
type ConfigValidator struct {
	Books []BookConfig
}

// BookConfig is the subset of a book definition needed for validation.
type BookConfig struct {
	Name         string
	Active       bool
	TargetProfit float64
	Quotes       []float64
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	if len(cv.Books) == 0 {
		return append(warnings, "No books configured - nothing to distribute")
	}

	active := 0
	for _, book := range cv.Books {
		if !book.Active {
			continue
		}
		active++

		if len(book.Quotes) == 0 {
			warnings = append(warnings, fmt.Sprintf("Book '%s' has no quotes - distribution will be empty", book.Name))
			continue
		}
		if err := ValidateTargetProfit(book.Name, book.TargetProfit); err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		if err := ValidateQuotes(book.Name, book.Quotes); err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		if warning := ValidateMargin(book.Name, book.TargetProfit, book.Quotes); warning != "" {
			warnings = append(warnings, warning)
		}
		if book.TargetProfit < 0 {
			warnings = append(warnings, fmt.Sprintf("Book '%s' targets a loss of %s",
				book.Name, decimal.NewFromFloat(-book.TargetProfit).StringFixed(2)))
		}
	}

	if active == 0 {
		warnings = append(warnings, "All books are inactive - nothing to distribute")
	}

	return warnings
}
