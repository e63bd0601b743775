package finance

import (
	"fmt"

	"github.com/iwvelando/bizplan-forecast/pkg/constants"
	"github.com/iwvelando/bizplan-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var daysPerMonth = decimal.NewFromInt(constants.DaysPerMonth)

// WorkingCapitalAssumptions drive the BFR estimate. Day counts are applied to
// average daily revenue or cost over a 30-day month.
type WorkingCapitalAssumptions struct {
	DSO              decimal.Decimal
	InventoryDays    decimal.Decimal
	DPO              decimal.Decimal
	ClientAdvances   decimal.Decimal
	SupplierAdvances decimal.Decimal
	// ChangeMode is "level" (default) or "delta".
	ChangeMode string
}

// WorkingCapital is the BFR position of a month.
type WorkingCapital struct {
	Receivables decimal.Decimal
	Inventory   decimal.Decimal
	Payables    decimal.Decimal
	Level       decimal.Decimal
	Change      decimal.Decimal
}

// WorkingCapitalCalculator estimates the working-capital requirement.
type WorkingCapitalCalculator struct {
	logger *zap.Logger
}

// NewWorkingCapitalCalculator creates a working-capital calculator with the given logger.
func NewWorkingCapitalCalculator(logger *zap.Logger) *WorkingCapitalCalculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkingCapitalCalculator{logger: logger}
}

// Level returns the BFR level for a month's revenue and COGS.
func (wc *WorkingCapitalCalculator) Level(revenue, cogs decimal.Decimal, a WorkingCapitalAssumptions) WorkingCapital {
	var position WorkingCapital
	position.Receivables = mathutil.Div(revenue.Mul(a.DSO), daysPerMonth)
	position.Inventory = mathutil.Div(cogs.Mul(a.InventoryDays), daysPerMonth)
	position.Payables = mathutil.Div(cogs.Mul(a.DPO), daysPerMonth)
	position.Level = position.Receivables.
		Add(position.Inventory).
		Sub(position.Payables).
		Add(a.ClientAdvances).
		Sub(a.SupplierAdvances)
	return position
}

// Change returns the BFR change booked against operating cash flow. In level
// mode the whole level is booked every month; in delta mode only the movement
// from the previous month's level.
func (wc *WorkingCapitalCalculator) Change(level, previousLevel decimal.Decimal, mode string) decimal.Decimal {
	switch mode {
	case constants.WorkingCapitalChangeDelta:
		return level.Sub(previousLevel)
	case "", constants.WorkingCapitalChangeLevel:
	default:
		wc.logger.Debug(fmt.Sprintf("unknown working capital change mode %q, booking the level", mode),
			zap.String("op", "finance.WorkingCapitalCalculator.Change"),
		)
	}
	return level
}

// Compute returns the full BFR position including its change.
func (wc *WorkingCapitalCalculator) Compute(revenue, cogs decimal.Decimal, a WorkingCapitalAssumptions, previousLevel decimal.Decimal) WorkingCapital {
	position := wc.Level(revenue, cogs, a)
	position.Change = wc.Change(position.Level, previousLevel, a.ChangeMode)
	return position
}
