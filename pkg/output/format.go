// Package output provides utilities for formatting and displaying stake distributions.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/stake-distributor/internal/distribution"
	"github.com/iwvelando/stake-distributor/pkg/format"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable rather than machine-readable table for each book.
func PrettyFormat(w io.Writer, results []distribution.Distribution) {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		_, _ = fmt.Fprintf(w, "--- Stakes for book %s ---\n", result.Name)
		_, _ = p.Fprintf(w, "Target profit: %s | Rounding: %s | Book sum: %.4f | Passes: %d\n",
			format.Currency(result.TargetProfit), result.Rounding, result.BookSum.InexactFloat64(), result.Passes)
		_, _ = fmt.Fprintf(w, "Outcome | Quote | Stake | Profit\n")
		_, _ = fmt.Fprintf(w, "_______ | _____ | _____ | ______\n")
		for j := range result.Stakes {
			_, _ = p.Fprintf(w, "%d | %s | %s | %s\n", j+1, quoteString(result.Quotes[j]),
				format.Currency(result.Stakes[j]), format.Currency(result.EffectiveProfits[j]))
		}
		_, _ = fmt.Fprintf(w, "Total stake: %s", format.Currency(result.TotalStake))
		if result.MinimumTotalStake.Valid && result.MinimumTotalStake.Decimal.IsPositive() {
			_, _ = fmt.Fprintf(w, " (unrounded minimum %s)", format.Currency(result.MinimumTotalStake.Decimal))
		}
		_, _ = fmt.Fprintf(w, "\n")
		if len(results) > 1 && i < len(results)-1 {
			_, _ = fmt.Fprintf(w, "\n")
		}
	}
}

// quoteString prints a quote with thousands separators and only the places it carries.
func quoteString(quote decimal.Decimal) string {
	places := -quote.Exponent()
	if places < 0 {
		places = 0
	}
	return format.Amount(quote, places)
}

// CsvFormat writes one row per outcome in comma-separated value format,
// followed by a total row for each book.
func CsvFormat(w io.Writer, results []distribution.Distribution) {
	_, _ = fmt.Fprintf(w, `"book","outcome","quote","stake","effective profit"`+"\n")
	for _, result := range results {
		for j := range result.Stakes {
			_, _ = fmt.Fprintf(w, `"%s","%d","%s","%s","%s"`+"\n",
				escape(result.Name), j+1, result.Quotes[j].String(),
				result.Stakes[j].StringFixed(2), result.EffectiveProfits[j].StringFixed(2))
		}
		_, _ = fmt.Fprintf(w, `"%s","total","","%s",""`+"\n",
			escape(result.Name), result.TotalStake.StringFixed(2))
	}
}

// CsvString returns the CsvFormat output as a string.
func CsvString(results []distribution.Distribution) string {
	var sb strings.Builder
	CsvFormat(&sb, results)
	return sb.String()
}

func escape(field string) string {
	return strings.ReplaceAll(field, `"`, `""`)
}
