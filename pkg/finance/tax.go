package finance

import (
	"github.com/iwvelando/bizplan-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// TaxSettings holds the corporate income tax rate in percent.
type TaxSettings struct {
	CorporateRate decimal.Decimal
}

// ComputeTax applies the corporate rate to positive pre-tax income. Losses are
// not carried forward.
func ComputeTax(ebt, corporateRate decimal.Decimal) decimal.Decimal {
	if !ebt.IsPositive() {
		return decimal.Zero
	}
	return mathutil.ApplyPercentage(ebt, corporateRate)
}
