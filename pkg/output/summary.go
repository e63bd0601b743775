package output

import (
	"github.com/iwvelando/bizplan-forecast/internal/forecast"
	"github.com/shopspring/decimal"
)

// AnnualTotals sums the flows of one calendar year and keeps the balances of
// its last projected month.
type AnnualTotals struct {
	Year        int
	Months      int
	Revenue     decimal.Decimal
	GrossProfit decimal.Decimal
	EBITDA      decimal.Decimal
	NetIncome   decimal.Decimal
	NetCashFlow decimal.Decimal
	ClosingCash decimal.Decimal
	ClosingDebt decimal.Decimal
}

// AnnualSummary groups month outputs by calendar year. Outputs are expected
// in month order, as returned by the projection.
func AnnualSummary(outputs []forecast.FinancialOutput) []AnnualTotals {
	var totals []AnnualTotals
	for _, out := range outputs {
		if len(totals) == 0 || totals[len(totals)-1].Year != out.Year {
			totals = append(totals, AnnualTotals{Year: out.Year})
		}
		t := &totals[len(totals)-1]
		t.Months++
		t.Revenue = t.Revenue.Add(out.Revenue)
		t.GrossProfit = t.GrossProfit.Add(out.GrossProfit)
		t.EBITDA = t.EBITDA.Add(out.EBITDA)
		t.NetIncome = t.NetIncome.Add(out.NetIncome)
		t.NetCashFlow = t.NetCashFlow.Add(out.NetCashFlow)
		t.ClosingCash = out.CumulativeCash
		t.ClosingDebt = out.CumulativeDebt
	}
	return totals
}
