package format

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0", "$0.00"},
		{"11", "$11.00"},
		{"628.6", "$628.60"},
		{"1234.567", "$1,234.57"},
		{"-1234.5", "-$1,234.50"},
		{"1234567.89", "$1,234,567.89"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Currency(decimal.RequireFromString(tt.input))
			if got != tt.expected {
				t.Errorf("Currency(%s) = %s, expected %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		input    string
		places   int32
		expected string
	}{
		{"11", 0, "11"},
		{"245", 0, "245"},
		{"1234", 0, "1,234"},
		{"242.87", 2, "242.87"},
		{"-5", 2, "-5.00"},
		{"100000.1", 2, "100,000.10"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Amount(decimal.RequireFromString(tt.input), tt.places)
			if got != tt.expected {
				t.Errorf("Amount(%s, %d) = %s, expected %s", tt.input, tt.places, got, tt.expected)
			}
		})
	}
}
