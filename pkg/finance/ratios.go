package finance

import (
	"github.com/iwvelando/bizplan-forecast/pkg/constants"
	"github.com/iwvelando/bizplan-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
)

var (
	currentAssetsShare      = mathutil.MustParse(constants.CurrentAssetsShare)
	currentLiabilitiesShare = mathutil.MustParse(constants.CurrentLiabilitiesShare)
)

// RatioInputs are the monthly and cumulative figures ratios are derived from.
type RatioInputs struct {
	Revenue           decimal.Decimal
	GrossProfit       decimal.Decimal
	EBITDA            decimal.Decimal
	NetIncome         decimal.Decimal
	OperatingCashFlow decimal.Decimal
	Interest          decimal.Decimal
	CumulativeAssets  decimal.Decimal
	CumulativeDebt    decimal.Decimal
}

// Ratios is the derived ratio set of a month. Margins are percentages; the
// rest, ROA and ROE included, are plain ratios.
type Ratios struct {
	Equity       decimal.Decimal
	GrossMargin  decimal.Decimal
	EBITDAMargin decimal.Decimal
	NetMargin    decimal.Decimal
	ROA          decimal.Decimal
	ROE          decimal.Decimal
	CurrentRatio decimal.Decimal
	DebtToEquity decimal.Decimal
	DSCR         decimal.Decimal
}

// ComputeRatios derives the ratio set. Every ratio with a non-positive
// denominator is zero.
func ComputeRatios(in RatioInputs) Ratios {
	var r Ratios
	r.Equity = in.CumulativeAssets.Sub(in.CumulativeDebt)

	r.GrossMargin = mathutil.CalculatePercentage(in.GrossProfit, in.Revenue)
	r.EBITDAMargin = mathutil.CalculatePercentage(in.EBITDA, in.Revenue)
	r.NetMargin = mathutil.CalculatePercentage(in.NetIncome, in.Revenue)
	if in.CumulativeAssets.IsPositive() {
		r.ROA = mathutil.Div(in.NetIncome, in.CumulativeAssets)
	}
	if r.Equity.IsPositive() {
		r.ROE = mathutil.Div(in.NetIncome, r.Equity)
	}

	// Fixed shares of assets and debt stand in for the current balances.
	currentLiabilities := in.CumulativeDebt.Mul(currentLiabilitiesShare)
	if currentLiabilities.IsPositive() {
		r.CurrentRatio = mathutil.Div(in.CumulativeAssets.Mul(currentAssetsShare), currentLiabilities)
	}
	if r.Equity.IsPositive() {
		r.DebtToEquity = mathutil.Div(in.CumulativeDebt, r.Equity)
	}
	// Interest only; scheduled principal is not part of the denominator.
	if in.Interest.IsPositive() {
		r.DSCR = mathutil.Div(in.OperatingCashFlow, in.Interest)
	}
	return r
}
