package output

import (
	"github.com/iwvelando/bizplan-forecast/internal/forecast"
	"github.com/shopspring/decimal"
)

type valueKind int

const (
	kindMoney valueKind = iota
	kindPercent
	kindRatio
)

// column is one exported metric of a FinancialOutput.
type column struct {
	header string
	kind   valueKind
	value  func(forecast.FinancialOutput) decimal.Decimal
}

// columns is the fixed export order shared by every tabular format.
var columns = []column{
	{"revenue", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.Revenue }},
	{"cogs", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.COGS }},
	{"gross profit", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.GrossProfit }},
	{"opex", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.Opex }},
	{"payroll", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.Payroll }},
	{"ebitda", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.EBITDA }},
	{"depreciation", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.Depreciation }},
	{"ebit", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.EBIT }},
	{"interest", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.Interest }},
	{"ebt", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.EBT }},
	{"tax", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.Tax }},
	{"net income", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.NetIncome }},
	{"bfr level", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.BFRLevel }},
	{"bfr change", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.BFRChange }},
	{"operating cash flow", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.OperatingCashFlow }},
	{"investing cash flow", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.InvestingCashFlow }},
	{"financing cash flow", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.FinancingCashFlow }},
	{"net cash flow", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.NetCashFlow }},
	{"cumulative cash", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.CumulativeCash }},
	{"cumulative assets", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.CumulativeAssets }},
	{"cumulative debt", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.CumulativeDebt }},
	{"equity", kindMoney, func(o forecast.FinancialOutput) decimal.Decimal { return o.Equity }},
	{"gross margin %", kindPercent, func(o forecast.FinancialOutput) decimal.Decimal { return o.GrossMargin }},
	{"ebitda margin %", kindPercent, func(o forecast.FinancialOutput) decimal.Decimal { return o.EBITDAMargin }},
	{"net margin %", kindPercent, func(o forecast.FinancialOutput) decimal.Decimal { return o.NetMargin }},
	{"roa", kindRatio, func(o forecast.FinancialOutput) decimal.Decimal { return o.ROA }},
	{"roe", kindRatio, func(o forecast.FinancialOutput) decimal.Decimal { return o.ROE }},
	{"current ratio", kindRatio, func(o forecast.FinancialOutput) decimal.Decimal { return o.CurrentRatio }},
	{"debt to equity", kindRatio, func(o forecast.FinancialOutput) decimal.Decimal { return o.DebtToEquity }},
	{"dscr", kindRatio, func(o forecast.FinancialOutput) decimal.Decimal { return o.DSCR }},
}

// places is the number of decimals an exported value keeps.
func (k valueKind) places() int32 {
	if k == kindMoney {
		return 2
	}
	return 4
}

// Headers returns the full tabular header: scenario, date, month index, every
// metric and the notes.
func Headers() []string {
	headers := make([]string, 0, len(columns)+4)
	headers = append(headers, "scenario", "date", "month index")
	for _, c := range columns {
		headers = append(headers, c.header)
	}
	return append(headers, "notes")
}
