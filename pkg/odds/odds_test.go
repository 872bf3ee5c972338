package odds

import (
	"testing"

	"github.com/shopspring/decimal"
)

func quotes(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func TestImpliedProbability(t *testing.T) {
	tests := []struct {
		quote    string
		expected string
	}{
		{"2", "0.5"},
		{"4", "0.25"},
		{"2.5", "0.4"},
		{"1.25", "0.8"},
	}

	for _, tt := range tests {
		t.Run(tt.quote, func(t *testing.T) {
			got := ImpliedProbability(decimal.RequireFromString(tt.quote))
			if !got.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("ImpliedProbability(%s) = %s, expected %s", tt.quote, got, tt.expected)
			}
		})
	}
}

func TestBookSumAndMargin(t *testing.T) {
	tests := []struct {
		name      string
		quotes    []decimal.Decimal
		bookSum   string
		hasMargin bool
	}{
		{"empty book", nil, "0", true},
		{"two even quotes at 2.5", quotes("2.5", "2.5"), "0.8", true},
		{"fair coin", quotes("2", "2"), "1", false},
		{"overround three way", quotes("1.5", "4", "6"), "1.0833333333333333", false},
		{"three way at exactly one", quotes("3", "3", "3"), "1", false},
		{"four way at exactly one", quotes("4", "4", "4", "4"), "1", false},
		{"thin margin", quotes("2.01", "2.01"), "0.9950248756218905", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := BookSum(tt.quotes)
			if !sum.Equal(decimal.RequireFromString(tt.bookSum)) {
				t.Errorf("BookSum = %s, expected %s", sum, tt.bookSum)
			}
			if HasMargin(tt.quotes) != tt.hasMargin {
				t.Errorf("HasMargin = %v, expected %v", HasMargin(tt.quotes), tt.hasMargin)
			}
			if !Margin(tt.quotes).Equal(decimal.NewFromInt(1).Sub(sum)) {
				t.Errorf("Margin inconsistent with BookSum")
			}
		})
	}
}

func TestMinimumTotalStake(t *testing.T) {
	total, ok := MinimumTotalStake(decimal.NewFromInt(100), quotes("2.5", "2.5"))
	if !ok {
		t.Fatal("expected a reachable floor")
	}
	if !total.Equal(decimal.NewFromInt(400)) {
		t.Errorf("MinimumTotalStake = %s, expected 400", total)
	}

	for _, book := range [][]decimal.Decimal{quotes("2", "2"), quotes("3", "3", "3"), quotes("4", "4", "4", "4")} {
		if _, ok := MinimumTotalStake(decimal.NewFromInt(10), book); ok {
			t.Errorf("expected no reachable floor without margin for %v", book)
		}
	}

	total, ok = MinimumTotalStake(decimal.NewFromInt(-5), quotes("3", "3"))
	if !ok || !total.IsZero() {
		t.Errorf("non-positive target should need no stake, got %s ok=%v", total, ok)
	}

	total, ok = MinimumTotalStake(decimal.NewFromInt(100), quotes("3", "4", "5", "20", "34"))
	if !ok {
		t.Fatal("expected a reachable floor")
	}
	if total.GreaterThan(decimal.RequireFromString("628.60")) || total.LessThan(decimal.NewFromInt(628)) {
		t.Errorf("MinimumTotalStake = %s, expected just under 628.60", total)
	}
}
