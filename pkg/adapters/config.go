// Package adapters converts a loaded business plan into engine inputs.
package adapters

import (
	"fmt"

	"github.com/iwvelando/bizplan-forecast/internal/config"
	"github.com/iwvelando/bizplan-forecast/pkg/constants"
	"github.com/iwvelando/bizplan-forecast/pkg/datetime"
	"github.com/iwvelando/bizplan-forecast/pkg/finance"
	"github.com/iwvelando/bizplan-forecast/pkg/loans"
	"github.com/iwvelando/bizplan-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ScenarioFactors are linear multipliers applied to raw inputs before a run.
type ScenarioFactors struct {
	Revenue    decimal.Decimal // unit prices
	DirectCost decimal.Decimal // unit costs
	Opex       decimal.Decimal // fixed amounts and revenue percentages
	Capex      decimal.Decimal // acquisition amounts and salvage values
}

// UnitFactors leaves every input unchanged.
func UnitFactors() ScenarioFactors {
	return ScenarioFactors{Revenue: mathutil.One, DirectCost: mathutil.One, Opex: mathutil.One, Capex: mathutil.One}
}

// FactorsFromScenario reads the scenario's factors, defaulting unset ones to 1.
func FactorsFromScenario(scenario config.Scenario) ScenarioFactors {
	factors := UnitFactors()
	if scenario.RevenueFactor != nil {
		factors.Revenue = *scenario.RevenueFactor
	}
	if scenario.DirectCostFactor != nil {
		factors.DirectCost = *scenario.DirectCostFactor
	}
	if scenario.OpexFactor != nil {
		factors.Opex = *scenario.OpexFactor
	}
	if scenario.CapexFactor != nil {
		factors.Capex = *scenario.CapexFactor
	}
	return factors
}

// ScaleProducts returns scaled copies of the products.
func (f ScenarioFactors) ScaleProducts(products []finance.Product) []finance.Product {
	scaled := make([]finance.Product, len(products))
	for i, product := range products {
		product.UnitPrice = product.UnitPrice.Mul(f.Revenue)
		product.UnitCost = product.UnitCost.Mul(f.DirectCost)
		scaled[i] = product
	}
	return scaled
}

// ScaleOpex returns scaled copies of the OPEX lines.
func (f ScenarioFactors) ScaleOpex(lines []finance.OpexLine) []finance.OpexLine {
	scaled := make([]finance.OpexLine, len(lines))
	for i, line := range lines {
		line.Amount = line.Amount.Mul(f.Opex)
		line.RevenuePercentage = line.RevenuePercentage.Mul(f.Opex)
		scaled[i] = line
	}
	return scaled
}

// ScaleCapex returns scaled copies of the assets.
func (f ScenarioFactors) ScaleCapex(assets []finance.CapexAsset) []finance.CapexAsset {
	scaled := make([]finance.CapexAsset, len(assets))
	for i, asset := range assets {
		asset.Amount = asset.Amount.Mul(f.Capex)
		asset.SalvageValue = asset.SalvageValue.Mul(f.Capex)
		scaled[i] = asset
	}
	return scaled
}

// HorizonEnd is the last month of the plan's horizon.
func HorizonEnd(project config.Project) (datetime.Period, error) {
	start, err := project.Start()
	if err != nil {
		return datetime.Period{}, err
	}
	if start.IsZero() || project.HorizonYears <= 0 || project.HorizonYears > constants.MaxHorizonYears {
		return datetime.Period{}, fmt.Errorf("invalid projection horizon of %d years from %q",
			project.HorizonYears, project.StartDate)
	}
	return start.Offset(project.HorizonYears*constants.MonthsPerYear - 1), nil
}

// ToInputs builds the engine inputs of one scenario: the plan's own inputs plus
// the scenario's extra loans and assets, with the scenario factors applied. A
// malformed date anywhere in the plan is returned as an error.
func ToInputs(logger *zap.Logger, conf config.Configuration, scenario config.Scenario) (*finance.Inputs, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	through, err := HorizonEnd(conf.Project)
	if err != nil {
		return nil, err
	}

	products := make([]finance.Product, 0, len(conf.Products))
	for _, product := range conf.Products {
		products = append(products, product.ToProduct())
	}

	projections := make([]finance.SalesProjection, 0, len(conf.SalesProjections))
	for _, projection := range conf.SalesProjections {
		converted, err := projection.ToSalesProjection()
		if err != nil {
			return nil, err
		}
		projections = append(projections, converted)
	}

	opex := make([]finance.OpexLine, 0, len(conf.Opex))
	for _, line := range conf.Opex {
		converted, err := line.ToOpexLine()
		if err != nil {
			return nil, err
		}
		opex = append(opex, converted)
	}

	roles := make([]finance.PayrollRole, 0, len(conf.PayrollRoles))
	for _, role := range conf.PayrollRoles {
		roles = append(roles, role.ToPayrollRole())
	}

	headcount := make([]finance.HeadcountEntry, 0, len(conf.Headcount))
	for _, entry := range conf.Headcount {
		converted, err := entry.ToHeadcountEntry()
		if err != nil {
			return nil, err
		}
		headcount = append(headcount, converted)
	}

	var capex []finance.CapexAsset
	for _, asset := range append(append([]config.CapexAsset(nil), conf.Capex...), scenario.Capex...) {
		converted, err := asset.ToCapexAsset()
		if err != nil {
			return nil, err
		}
		capex = append(capex, converted)
	}

	var loanList []loans.Loan
	for _, loan := range append(append([]config.Loan(nil), conf.Loans...), scenario.Loans...) {
		converted, err := loan.ToLoan()
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		loanList = append(loanList, converted)
	}

	factors := FactorsFromScenario(scenario)
	logger.Debug(fmt.Sprintf("building inputs for scenario %s", scenario.Name),
		zap.String("op", "adapters.ToInputs"),
		zap.String("revenueFactor", factors.Revenue.String()),
		zap.String("directCostFactor", factors.DirectCost.String()),
		zap.String("opexFactor", factors.Opex.String()),
		zap.String("capexFactor", factors.Capex.String()),
	)

	return &finance.Inputs{
		Catalog:          finance.NewCatalog(factors.ScaleProducts(products)),
		SalesProjections: projections,
		Opex:             factors.ScaleOpex(opex),
		PayrollRoles:     roles,
		Headcount:        finance.NewHeadcountPlan(headcount),
		Capex:            factors.ScaleCapex(capex),
		Loans:            loans.NewPortfolio(logger, loanList, through),
		InflationRate:    conf.Assumptions.InflationRate,
		Tax:              finance.TaxSettings{CorporateRate: conf.Tax.CorporateRate},
		WorkingCapital:   conf.WorkingCapital.ToAssumptions(),
	}, nil
}
