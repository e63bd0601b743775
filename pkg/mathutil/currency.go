// Package mathutil provides the decimal arithmetic used by every calculator.
//
// All monetary values are shopspring decimals. Multiplication, addition and
// subtraction are exact; division and powers are rounded half-up to
// constants.DivisionPrecision places.
package mathutil

import (
	"github.com/iwvelando/bizplan-forecast/pkg/constants"
	"github.com/shopspring/decimal"
)

var (
	// Hundred is the percentage divisor.
	Hundred = decimal.NewFromInt(constants.PercentageMultiplier)

	// Twelve is the number of months in a year as a decimal.
	Twelve = decimal.NewFromInt(constants.MonthsPerYear)

	// One is the multiplicative identity.
	One = decimal.NewFromInt(1)
)

// Div divides a by b, rounding half-up to the configured precision. Division by
// zero yields zero.
func Div(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.DivRound(b, constants.DivisionPrecision)
}

// Round rounds a value to two decimals, i.e. to represent real currency.
func Round(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.CurrencyPlaces)
}

// ApplyPercentage applies a percentage to a value, e.g. ApplyPercentage(200, 18) = 36.
func ApplyPercentage(value, percentage decimal.Decimal) decimal.Decimal {
	return value.Mul(percentage).DivRound(Hundred, constants.DivisionPrecision)
}

// PercentToRate converts a percentage to a fraction, e.g. 12 -> 0.12.
func PercentToRate(percentage decimal.Decimal) decimal.Decimal {
	return percentage.DivRound(Hundred, constants.DivisionPrecision)
}

// CalculatePercentage calculates what percentage value is of total. A
// non-positive total yields zero.
func CalculatePercentage(value, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return Div(value.Mul(Hundred), total)
}

// PowInt raises base to a non-negative integer exponent by repeated squaring,
// rounding each intermediate product to the configured precision. Negative
// exponents are treated as zero.
func PowInt(base decimal.Decimal, exp int) decimal.Decimal {
	result := One
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base).Round(constants.DivisionPrecision)
		}
		base = base.Mul(base).Round(constants.DivisionPrecision)
		exp >>= 1
	}
	return result
}

// NonNegative clamps a value at zero.
func NonNegative(val decimal.Decimal) decimal.Decimal {
	if val.IsNegative() {
		return decimal.Zero
	}
	return val
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance decimal.Decimal) bool {
	return val1.Sub(val2).Abs().LessThanOrEqual(tolerance)
}

// Min returns the minimum of two values
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// MustParse parses a decimal literal and panics on error. This is intended for
// constants and tests where the literal is known to be valid.
func MustParse(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
