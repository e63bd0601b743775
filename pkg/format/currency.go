// Package format renders decimal amounts for humans.
package format

import (
	"strings"

	"github.com/iwvelando/bizplan-forecast/pkg/constants"
	"github.com/shopspring/decimal"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount decimal.Decimal) string {
	rounded := amount.Round(constants.CurrencyPlaces)
	formatted := formatPositiveCurrency(rounded.Abs())
	if rounded.IsNegative() {
		return "-$" + formatted
	}
	return "$" + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(constants.CurrencyPlaces)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	return sign + formatPositiveCurrency(rounded.Abs())
}

// Percent renders a percentage value with two decimals and a percent sign.
func Percent(value decimal.Decimal) string {
	return value.StringFixed(constants.CurrencyPlaces) + "%"
}

// Ratio renders a plain ratio with two decimals.
func Ratio(value decimal.Decimal) string {
	return value.StringFixed(constants.CurrencyPlaces)
}

func formatPositiveCurrency(value decimal.Decimal) string {
	formatted := value.StringFixed(constants.CurrencyPlaces)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

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

	return intPart + "." + decPart
}
