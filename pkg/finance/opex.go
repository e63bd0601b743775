package finance

import (
	"github.com/iwvelando/bizplan-forecast/pkg/constants"
	"github.com/iwvelando/bizplan-forecast/pkg/datetime"
	"github.com/iwvelando/bizplan-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OpexLine is an operating expense. Fixed lines charge Amount according to
// their periodicity; variable lines charge RevenuePercentage of the month's
// revenue.
type OpexLine struct {
	Name              string
	Amount            decimal.Decimal
	Periodicity       string
	StartDate         datetime.Period // zero value: no lower bound
	EndDate           datetime.Period // zero value: no upper bound
	Variable          bool
	RevenuePercentage decimal.Decimal
}

// Active reports whether the period lies inside the line's activity window.
func (l OpexLine) Active(period datetime.Period) bool {
	if !l.StartDate.IsZero() && period.Before(l.StartDate) {
		return false
	}
	if !l.EndDate.IsZero() && period.After(l.EndDate) {
		return false
	}
	return true
}

// DueIn reports whether a fixed line charges in the given calendar month and
// whether its periodicity is recognised at all.
func (l OpexLine) DueIn(month int) (due bool, known bool) {
	switch l.Periodicity {
	case "", constants.PeriodicityMonthly:
		return true, true
	case constants.PeriodicityQuarterly:
		return (month-1)%constants.MonthsPerQuarter == 0, true
	case constants.PeriodicityAnnual:
		return month == 1, true
	default:
		return false, false
	}
}

// InflationFactor returns (1 + rate)^(completed years since the horizon start).
func InflationFactor(inflationRate decimal.Decimal, elapsedMonths int) decimal.Decimal {
	if elapsedMonths < 0 {
		return mathutil.One
	}
	years := elapsedMonths / constants.MonthsPerYear
	return mathutil.PowInt(mathutil.One.Add(mathutil.PercentToRate(inflationRate)), years)
}

// OpexCalculator sums operating expenses for a month.
type OpexCalculator struct {
	logger *zap.Logger
}

// NewOpexCalculator creates an OPEX calculator with the given logger.
func NewOpexCalculator(logger *zap.Logger) *OpexCalculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpexCalculator{logger: logger}
}

// Compute returns total operating expenses for the period. inflationRate is an
// annual percentage and elapsedMonths counts months since the horizon start.
func (oc *OpexCalculator) Compute(lines []OpexLine, revenue decimal.Decimal, period datetime.Period, inflationRate decimal.Decimal, elapsedMonths int) decimal.Decimal {
	factor := InflationFactor(inflationRate, elapsedMonths)
	total := decimal.Zero

	for _, line := range lines {
		if !line.Active(period) {
			continue
		}

		var amount decimal.Decimal
		if line.Variable {
			amount = mathutil.ApplyPercentage(revenue, line.RevenuePercentage)
		} else {
			due, known := line.DueIn(period.Month)
			if !known {
				oc.logger.Debug("skipping opex line with unknown periodicity",
					zap.String("op", "finance.OpexCalculator.Compute"),
					zap.String("line", line.Name),
					zap.String("periodicity", line.Periodicity),
				)
				continue
			}
			if !due {
				continue
			}
			amount = line.Amount
		}

		total = total.Add(amount.Mul(factor))
	}

	return total.Round(constants.DivisionPrecision)
}
