// Package finance provides the monthly financial calculators of a business plan.
package finance

import (
	"fmt"

	"github.com/iwvelando/bizplan-forecast/pkg/datetime"
	"github.com/iwvelando/bizplan-forecast/pkg/loans"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Inputs is the read-only set of plan inputs every month is computed from.
type Inputs struct {
	Catalog          Catalog
	SalesProjections []SalesProjection
	Opex             []OpexLine
	PayrollRoles     []PayrollRole
	Headcount        HeadcountPlan
	Capex            []CapexAsset
	Loans            *loans.Portfolio
	InflationRate    decimal.Decimal
	Tax              TaxSettings
	WorkingCapital   WorkingCapitalAssumptions
}

// LineItems are the figures of one month that do not depend on earlier months.
type LineItems struct {
	Period     datetime.Period
	MonthIndex int

	Revenue      decimal.Decimal
	COGS         decimal.Decimal
	GrossProfit  decimal.Decimal
	Opex         decimal.Decimal
	Payroll      decimal.Decimal
	EBITDA       decimal.Decimal
	Depreciation decimal.Decimal
	EBIT         decimal.Decimal
	Interest     decimal.Decimal
	EBT          decimal.Decimal
	Tax          decimal.Decimal
	NetIncome    decimal.Decimal

	// WorkingCapital carries the BFR level; its Change is left to the caller
	// since it may depend on the previous month.
	WorkingCapital WorkingCapital

	CapitalOutlay   decimal.Decimal
	LoanDisbursed   decimal.Decimal
	PrincipalRepaid decimal.Decimal
}

// ForecastEngine coordinates the per-month calculators.
type ForecastEngine struct {
	revenue        *RevenueCalculator
	opex           *OpexCalculator
	payroll        *PayrollCalculator
	depreciation   *DepreciationCalculator
	workingCapital *WorkingCapitalCalculator
	logger         *zap.Logger
}

// NewForecastEngine creates a new forecast engine
func NewForecastEngine(logger *zap.Logger) *ForecastEngine {
	if logger == nil {
		// Create a no-op logger if none provided
		logger = zap.NewNop()
	}

	return &ForecastEngine{
		revenue:        NewRevenueCalculator(logger),
		opex:           NewOpexCalculator(logger),
		payroll:        NewPayrollCalculator(logger),
		depreciation:   NewDepreciationCalculator(logger),
		workingCapital: NewWorkingCapitalCalculator(logger),
		logger:         logger,
	}
}

// WorkingCapitalChange exposes the configured BFR change rule.
func (fe *ForecastEngine) WorkingCapitalChange(level, previousLevel decimal.Decimal, mode string) decimal.Decimal {
	return fe.workingCapital.Change(level, previousLevel, mode)
}

// ProcessMonth computes the line items of the month monthIndex months after
// start. It reads in and never modifies it, so months may be processed in any
// order or concurrently.
func (fe *ForecastEngine) ProcessMonth(in *Inputs, start datetime.Period, monthIndex int) (LineItems, error) {
	if fe.revenue == nil || fe.opex == nil || fe.payroll == nil || fe.depreciation == nil || fe.workingCapital == nil {
		return LineItems{}, fmt.Errorf("forecast engine not properly initialized")
	}
	if in == nil {
		return LineItems{}, fmt.Errorf("inputs cannot be nil")
	}
	if monthIndex < 0 {
		return LineItems{}, fmt.Errorf("month index %d is negative", monthIndex)
	}

	period := start.Offset(monthIndex)
	items := LineItems{Period: period, MonthIndex: monthIndex}

	items.Revenue, items.COGS = fe.revenue.Compute(in.Catalog, in.SalesProjections, period)
	items.GrossProfit = items.Revenue.Sub(items.COGS)
	items.Opex = fe.opex.Compute(in.Opex, items.Revenue, period, in.InflationRate, monthIndex)
	items.Payroll = fe.payroll.Compute(in.PayrollRoles, in.Headcount, period)
	items.EBITDA = items.GrossProfit.Sub(items.Opex).Sub(items.Payroll)
	items.Depreciation = fe.depreciation.Compute(in.Capex, period)
	items.EBIT = items.EBITDA.Sub(items.Depreciation)
	items.Interest = in.Loans.Interest(period)
	items.EBT = items.EBIT.Sub(items.Interest)
	items.Tax = ComputeTax(items.EBT, in.Tax.CorporateRate)
	items.NetIncome = items.EBT.Sub(items.Tax)

	items.WorkingCapital = fe.workingCapital.Level(items.Revenue, items.COGS, in.WorkingCapital)

	items.CapitalOutlay = fe.depreciation.Acquired(in.Capex, period)
	items.LoanDisbursed = in.Loans.Disbursed(period)
	items.PrincipalRepaid = in.Loans.PrincipalRepaid(period)

	fe.logger.Debug("processed month",
		zap.String("op", "finance.ForecastEngine.ProcessMonth"),
		zap.String("date", period.String()),
		zap.String("revenue", items.Revenue.String()),
		zap.String("netIncome", items.NetIncome.String()),
	)
	return items, nil
}
