package mathutil

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Round up at midpoint", "1.235", "1.24"},
		{"Round down below midpoint", "1.234", "1.23"},
		{"No rounding needed", "1.23", "1.23"},
		{"Large number", "12345.678", "12345.68"},
		{"Negative number round away at midpoint", "-1.235", "-1.24"},
		{"Negative number round down", "-1.234", "-1.23"},
		{"Zero", "0", "0"},
		{"Very small positive", "0.001", "0"},
		{"Nearly two cents", "0.019", "0.02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(MustParse(tt.input))
			if !result.Equal(MustParse(tt.expected)) {
				t.Errorf("Round(%s) = %s, expected %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestDiv(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected string
	}{
		{"Exact division", "10", "4", "2.5"},
		{"Division by zero yields zero", "10", "0", "0"},
		{"Repeating division keeps 28 places", "1", "3", "0.3333333333333333333333333333"},
		{"Half-up at last place", "2", "3", "0.6666666666666666666666666667"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Div(MustParse(tt.a), MustParse(tt.b))
			if !result.Equal(MustParse(tt.expected)) {
				t.Errorf("Div(%s, %s) = %s, expected %s", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestApplyPercentage(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		percentage string
		expected   string
	}{
		{"Corporate tax", "400", "18", "72"},
		{"Employer charges", "4000", "45", "1800"},
		{"Zero percentage", "1000", "0", "0"},
		{"Fractional percentage", "1000", "2.5", "25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ApplyPercentage(MustParse(tt.value), MustParse(tt.percentage))
			if !result.Equal(MustParse(tt.expected)) {
				t.Errorf("ApplyPercentage(%s, %s) = %s, expected %s", tt.value, tt.percentage, result, tt.expected)
			}
		})
	}
}

func TestCalculatePercentage(t *testing.T) {
	if got := CalculatePercentage(MustParse("400"), MustParse("1000")); !got.Equal(MustParse("40")) {
		t.Errorf("CalculatePercentage() = %s, expected 40", got)
	}
	if got := CalculatePercentage(MustParse("400"), decimal.Zero); !got.IsZero() {
		t.Errorf("CalculatePercentage() with zero total = %s, expected 0", got)
	}
	if got := CalculatePercentage(MustParse("400"), MustParse("-10")); !got.IsZero() {
		t.Errorf("CalculatePercentage() with negative total = %s, expected 0", got)
	}
}

func TestPowInt(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		exp      int
		expected string
	}{
		{"Zero exponent", "1.1", 0, "1"},
		{"One year of inflation", "1.1", 1, "1.1"},
		{"Two years of inflation", "1.1", 2, "1.21"},
		{"Three years of inflation", "1.1", 3, "1.331"},
		{"Negative exponent treated as zero", "1.1", -2, "1"},
		{"Monthly rate over a year", "1.01", 12, "1.126825030131969720661201"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PowInt(MustParse(tt.base), tt.exp)
			if !result.Equal(MustParse(tt.expected)) {
				t.Errorf("PowInt(%s, %d) = %s, expected %s", tt.base, tt.exp, result, tt.expected)
			}
		})
	}
}

func TestNonNegative(t *testing.T) {
	if got := NonNegative(MustParse("-5")); !got.IsZero() {
		t.Errorf("NonNegative(-5) = %s, expected 0", got)
	}
	if got := NonNegative(MustParse("5")); !got.Equal(MustParse("5")) {
		t.Errorf("NonNegative(5) = %s, expected 5", got)
	}
}

func TestMinSum(t *testing.T) {
	a, b := MustParse("1.5"), MustParse("2.5")
	if !Min(a, b).Equal(a) {
		t.Errorf("Min() = %s, expected %s", Min(a, b), a)
	}
	if got := Sum(a, b, MustParse("-1")); !got.Equal(MustParse("3")) {
		t.Errorf("Sum() = %s, expected 3", got)
	}
	if !WithinTolerance(a, MustParse("1.505"), MustParse("0.01")) {
		t.Errorf("WithinTolerance() expected true")
	}
}
