package format

import (
	"testing"

	"github.com/iwvelando/bizplan-forecast/pkg/mathutil"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected string
	}{
		{"Zero", "0", "$0.00"},
		{"Small", "12.5", "$12.50"},
		{"Thousands", "1234.56", "$1,234.56"},
		{"Millions", "1105381.45", "$1,105,381.45"},
		{"Negative", "-6000", "-$6,000.00"},
		{"Rounds half up", "0.125", "$0.13"},
		{"Rounds to zero", "-0.001", "$0.00"},
		{"Long fraction", "-9.0909090909090909090909090909", "-$9.09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Currency(mathutil.MustParse(tt.amount)); got != tt.expected {
				t.Errorf("Currency(%s) = %s, expected %s", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestNumericCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected string
	}{
		{"Exactly three digits", "999.99", "999.99"},
		{"Four digits", "1000", "1,000.00"},
		{"Negative", "-1234567.891", "-1,234,567.89"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NumericCurrency(mathutil.MustParse(tt.amount)); got != tt.expected {
				t.Errorf("NumericCurrency(%s) = %s, expected %s", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestPercentAndRatio(t *testing.T) {
	if got := Percent(mathutil.MustParse("32.8")); got != "32.80%" {
		t.Errorf("Percent() = %s, expected 32.80%%", got)
	}
	if got := Ratio(mathutil.MustParse("1.0666666")); got != "1.07" {
		t.Errorf("Ratio() = %s, expected 1.07", got)
	}
}
