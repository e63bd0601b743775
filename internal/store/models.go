// Package store persists projection outputs in a relational database.
package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/bizplan-forecast/internal/forecast"
	"github.com/shopspring/decimal"
)

// FinancialOutputRecord is one persisted month of one scenario. A scenario
// run supersedes every earlier row with the same project and scenario.
type FinancialOutputRecord struct {
	ID           uint      `gorm:"primaryKey"`
	ProjectID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_financial_outputs_month,priority:1"`
	ScenarioID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_financial_outputs_month,priority:2"`
	ScenarioName string    `gorm:"not null"`
	Year         int       `gorm:"not null;uniqueIndex:idx_financial_outputs_month,priority:3"`
	Month        int       `gorm:"not null;uniqueIndex:idx_financial_outputs_month,priority:4"`
	MonthIndex   int       `gorm:"not null"`

	Revenue      decimal.Decimal `gorm:"type:numeric;not null"`
	COGS         decimal.Decimal `gorm:"column:cogs;type:numeric;not null"`
	GrossProfit  decimal.Decimal `gorm:"type:numeric;not null"`
	Opex         decimal.Decimal `gorm:"type:numeric;not null"`
	Payroll      decimal.Decimal `gorm:"type:numeric;not null"`
	EBITDA       decimal.Decimal `gorm:"column:ebitda;type:numeric;not null"`
	Depreciation decimal.Decimal `gorm:"type:numeric;not null"`
	EBIT         decimal.Decimal `gorm:"column:ebit;type:numeric;not null"`
	Interest     decimal.Decimal `gorm:"type:numeric;not null"`
	EBT          decimal.Decimal `gorm:"column:ebt;type:numeric;not null"`
	Tax          decimal.Decimal `gorm:"type:numeric;not null"`
	NetIncome    decimal.Decimal `gorm:"type:numeric;not null"`

	BFRLevel  decimal.Decimal `gorm:"column:bfr_level;type:numeric;not null"`
	BFRChange decimal.Decimal `gorm:"column:bfr_change;type:numeric;not null"`

	OperatingCashFlow decimal.Decimal `gorm:"type:numeric;not null"`
	InvestingCashFlow decimal.Decimal `gorm:"type:numeric;not null"`
	FinancingCashFlow decimal.Decimal `gorm:"type:numeric;not null"`
	NetCashFlow       decimal.Decimal `gorm:"type:numeric;not null"`

	CumulativeCash   decimal.Decimal `gorm:"type:numeric;not null"`
	CumulativeAssets decimal.Decimal `gorm:"type:numeric;not null"`
	CumulativeDebt   decimal.Decimal `gorm:"type:numeric;not null"`
	Equity           decimal.Decimal `gorm:"type:numeric;not null"`

	GrossMargin  decimal.Decimal `gorm:"type:numeric;not null"`
	EBITDAMargin decimal.Decimal `gorm:"column:ebitda_margin;type:numeric;not null"`
	NetMargin    decimal.Decimal `gorm:"type:numeric;not null"`
	ROA          decimal.Decimal `gorm:"column:roa;type:numeric;not null"`
	ROE          decimal.Decimal `gorm:"column:roe;type:numeric;not null"`
	CurrentRatio decimal.Decimal `gorm:"type:numeric;not null"`
	DebtToEquity decimal.Decimal `gorm:"type:numeric;not null"`
	DSCR         decimal.Decimal `gorm:"column:dscr;type:numeric;not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName pins the table name.
func (FinancialOutputRecord) TableName() string {
	return "financial_outputs"
}

// NewRecord converts a projected month into a row owned by the given project
// and scenario.
func NewRecord(projectID, scenarioID uuid.UUID, o forecast.FinancialOutput) FinancialOutputRecord {
	return FinancialOutputRecord{
		ProjectID:    projectID,
		ScenarioID:   scenarioID,
		ScenarioName: o.ScenarioName,
		Year:         o.Year,
		Month:        o.Month,
		MonthIndex:   o.MonthIndex,

		Revenue:      o.Revenue,
		COGS:         o.COGS,
		GrossProfit:  o.GrossProfit,
		Opex:         o.Opex,
		Payroll:      o.Payroll,
		EBITDA:       o.EBITDA,
		Depreciation: o.Depreciation,
		EBIT:         o.EBIT,
		Interest:     o.Interest,
		EBT:          o.EBT,
		Tax:          o.Tax,
		NetIncome:    o.NetIncome,

		BFRLevel:  o.BFRLevel,
		BFRChange: o.BFRChange,

		OperatingCashFlow: o.OperatingCashFlow,
		InvestingCashFlow: o.InvestingCashFlow,
		FinancingCashFlow: o.FinancingCashFlow,
		NetCashFlow:       o.NetCashFlow,

		CumulativeCash:   o.CumulativeCash,
		CumulativeAssets: o.CumulativeAssets,
		CumulativeDebt:   o.CumulativeDebt,
		Equity:           o.Equity,

		GrossMargin:  o.GrossMargin,
		EBITDAMargin: o.EBITDAMargin,
		NetMargin:    o.NetMargin,
		ROA:          o.ROA,
		ROE:          o.ROE,
		CurrentRatio: o.CurrentRatio,
		DebtToEquity: o.DebtToEquity,
		DSCR:         o.DSCR,
	}
}

// Output converts a row back into a projected month.
func (r FinancialOutputRecord) Output() forecast.FinancialOutput {
	return forecast.FinancialOutput{
		ProjectID:    r.ProjectID,
		ScenarioID:   r.ScenarioID,
		ScenarioName: r.ScenarioName,
		Year:         r.Year,
		Month:        r.Month,
		MonthIndex:   r.MonthIndex,

		Revenue:      r.Revenue,
		COGS:         r.COGS,
		GrossProfit:  r.GrossProfit,
		Opex:         r.Opex,
		Payroll:      r.Payroll,
		EBITDA:       r.EBITDA,
		Depreciation: r.Depreciation,
		EBIT:         r.EBIT,
		Interest:     r.Interest,
		EBT:          r.EBT,
		Tax:          r.Tax,
		NetIncome:    r.NetIncome,

		BFRLevel:  r.BFRLevel,
		BFRChange: r.BFRChange,

		OperatingCashFlow: r.OperatingCashFlow,
		InvestingCashFlow: r.InvestingCashFlow,
		FinancingCashFlow: r.FinancingCashFlow,
		NetCashFlow:       r.NetCashFlow,

		CumulativeCash:   r.CumulativeCash,
		CumulativeAssets: r.CumulativeAssets,
		CumulativeDebt:   r.CumulativeDebt,
		Equity:           r.Equity,

		GrossMargin:  r.GrossMargin,
		EBITDAMargin: r.EBITDAMargin,
		NetMargin:    r.NetMargin,
		ROA:          r.ROA,
		ROE:          r.ROE,
		CurrentRatio: r.CurrentRatio,
		DebtToEquity: r.DebtToEquity,
		DSCR:         r.DSCR,
	}
}
