package finance

import (
	"fmt"

	"github.com/iwvelando/bizplan-forecast/pkg/constants"
	"github.com/iwvelando/bizplan-forecast/pkg/datetime"
	"github.com/iwvelando/bizplan-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	two           = decimal.NewFromInt(2)
	monthsPerYear = decimal.NewFromInt(constants.MonthsPerYear)
)

// CapexAsset is a capitalized purchase depreciated over its useful life.
type CapexAsset struct {
	Name             string
	AcquisitionDate  datetime.Period
	Amount           decimal.Decimal
	SalvageValue     decimal.Decimal
	UsefulLifeMonths int
	Method           string
}

// DepreciableBase is the amount net of salvage value, never negative.
func (a CapexAsset) DepreciableBase() decimal.Decimal {
	return mathutil.NonNegative(a.Amount.Sub(a.SalvageValue))
}

// MonthlyDepreciation returns the constant monthly charge of the asset.
//
// The declining method uses a double-declining rate on the depreciable base
// but keeps the charge flat for the whole life instead of recomputing it
// against the remaining book value.
func (a CapexAsset) MonthlyDepreciation() decimal.Decimal {
	if a.UsefulLifeMonths <= 0 {
		return decimal.Zero
	}
	life := decimal.NewFromInt(int64(a.UsefulLifeMonths))
	base := a.DepreciableBase()

	if a.Method == constants.DepreciationDeclining {
		years := mathutil.Div(life, monthsPerYear)
		return mathutil.Div(base.Mul(mathutil.Div(two, years)), monthsPerYear)
	}
	return mathutil.Div(base, life)
}

// DepreciatesIn reports whether the period falls within the asset's useful life.
func (a CapexAsset) DepreciatesIn(period datetime.Period) bool {
	elapsed := a.AcquisitionDate.MonthsUntil(period)
	return elapsed >= 0 && elapsed < a.UsefulLifeMonths
}

// DepreciationCalculator sums depreciation across assets for a month.
type DepreciationCalculator struct {
	logger *zap.Logger
}

// NewDepreciationCalculator creates a depreciation calculator with the given logger.
func NewDepreciationCalculator(logger *zap.Logger) *DepreciationCalculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepreciationCalculator{logger: logger}
}

// Compute returns total depreciation for the period. Assets that cannot
// depreciate are logged in their acquisition month.
func (dc *DepreciationCalculator) Compute(assets []CapexAsset, period datetime.Period) decimal.Decimal {
	total := decimal.Zero
	for _, asset := range assets {
		if asset.AcquisitionDate.Equal(period) {
			dc.check(asset)
		}
		if !asset.DepreciatesIn(period) {
			continue
		}
		total = total.Add(asset.MonthlyDepreciation())
	}
	return total
}

func (dc *DepreciationCalculator) check(asset CapexAsset) {
	switch {
	case asset.UsefulLifeMonths <= 0:
		dc.logger.Debug(fmt.Sprintf("asset %s has a useful life of %d months and is not depreciated", asset.Name, asset.UsefulLifeMonths),
			zap.String("op", "finance.DepreciationCalculator.Compute"),
		)
	case asset.DepreciableBase().IsZero():
		dc.logger.Debug(fmt.Sprintf("asset %s has no depreciable base", asset.Name),
			zap.String("op", "finance.DepreciationCalculator.Compute"),
		)
	}
	switch asset.Method {
	case "", constants.DepreciationLinear, constants.DepreciationDeclining:
	default:
		dc.logger.Debug(fmt.Sprintf("asset %s uses unknown method %q, depreciating linearly", asset.Name, asset.Method),
			zap.String("op", "finance.DepreciationCalculator.Compute"),
		)
	}
}

// Acquired returns the capital outlay of assets acquired in exactly the period.
func (dc *DepreciationCalculator) Acquired(assets []CapexAsset, period datetime.Period) decimal.Decimal {
	total := decimal.Zero
	for _, asset := range assets {
		if asset.AcquisitionDate.Equal(period) {
			total = total.Add(mathutil.NonNegative(asset.Amount))
		}
	}
	return total
}
