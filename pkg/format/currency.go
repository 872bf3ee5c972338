package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount decimal.Decimal) string {
	formatted := formatPositive(amount.Abs(), 2)
	if amount.IsNegative() {
		return "-$" + formatted
	}
	return "$" + formatted
}

// Amount returns a number with thousands separators, printed with the given
// number of decimal places (e.g., Amount(1234.5, 2) is "1,234.50", Amount(11, 0) is "11").
func Amount(amount decimal.Decimal, places int32) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return sign + formatPositive(amount.Abs(), places)
}

func formatPositive(value decimal.Decimal, places int32) string {
	formatted := value.StringFixed(places)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if len(parts) == 2 {
		return intPart + "." + parts[1]
	}
	return intPart
}
