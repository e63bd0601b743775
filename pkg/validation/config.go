// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/bizplan-forecast/pkg/constants"
	"github.com/iwvelando/bizplan-forecast/pkg/datetime"
)

// HorizonEnd returns the last month of a horizon of the given length.
func HorizonEnd(startDate string, horizonYears int) (string, error) {
	return datetime.OffsetDate(startDate, datetime.DateTimeLayout, horizonYears*constants.MonthsPerYear-1)
}

// ValidateLoanMaturity checks if a loan's last payment falls after the horizon end.
func ValidateLoanMaturity(loanName, disbursementDate, horizonEnd string, termMonths int) (string, error) {
	maturityDate, err := datetime.OffsetDate(disbursementDate, datetime.DateTimeLayout, termMonths-1)
	if err != nil {
		return "", err
	}

	if maturityDate > horizonEnd {
		return fmt.Sprintf("Loan '%s' matures after the horizon end (%s > %s) - debt will remain outstanding",
			loanName, maturityDate, horizonEnd), nil
	}

	return "", nil
}

// ValidateWindow checks an activity window against the horizon. Empty bounds
// are open.
func ValidateWindow(name, startDate, endDate, horizonStart, horizonEnd string) []string {
	var warnings []string

	if startDate != "" && startDate > horizonEnd {
		warnings = append(warnings, fmt.Sprintf("%s starts after the horizon end (%s > %s)",
			name, startDate, horizonEnd))
	}

	if endDate != "" && endDate < horizonStart {
		warnings = append(warnings, fmt.Sprintf("%s ends before the horizon start (%s < %s)",
			name, endDate, horizonStart))
	}

	if startDate != "" && endDate != "" && endDate < startDate {
		warnings = append(warnings, fmt.Sprintf("%s ends before it starts (%s < %s)",
			name, endDate, startDate))
	}

	return warnings
}

// ConfigValidator collects the parts of a plan that are checked for
// consistency. It holds plain values so it does not depend on the config package.
type ConfigValidator struct {
	StartDate          string
	HorizonYears       int
	WorkingCapitalMode string
	Products           []ProductConfig
	SalesProjections   []ReferenceConfig
	RoleIDs            []string
	Headcount          []ReferenceConfig
	Opex               []OpexConfig
	Capex              []CapexConfig
	Loans              []LoanConfig
	Scenarios          []ScenarioConfig
}

// ProductConfig is the validated subset of a product.
type ProductConfig struct {
	ID             string
	SeasonalityLen int
}

// ReferenceConfig is an entry that points at a product or role.
type ReferenceConfig struct {
	Ref  string
	Date string
}

// OpexConfig is the validated subset of an OPEX line.
type OpexConfig struct {
	Name        string
	Periodicity string
	StartDate   string
	EndDate     string
	Variable    bool
}

// CapexConfig is the validated subset of a capital asset.
type CapexConfig struct {
	Name             string
	AcquisitionDate  string
	UsefulLifeMonths int
	Method           string
}

// LoanConfig is the validated subset of a loan.
type LoanConfig struct {
	Name             string
	DisbursementDate string
	Term             int
}

// ScenarioConfig is the validated subset of a scenario.
type ScenarioConfig struct {
	Name   string
	Active bool
	Loans  []LoanConfig
	Capex  []CapexConfig
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	// The horizon itself is rejected by the engine; nothing here can be
	// placed relative to it.
	if cv.HorizonYears <= 0 || cv.HorizonYears > constants.MaxHorizonYears {
		return warnings
	}
	horizonEnd, err := HorizonEnd(cv.StartDate, cv.HorizonYears)
	if err != nil {
		return warnings
	}
	horizonStart := cv.StartDate

	switch cv.WorkingCapitalMode {
	case "", constants.WorkingCapitalChangeLevel, constants.WorkingCapitalChangeDelta:
	default:
		warnings = append(warnings, fmt.Sprintf("Unknown working capital change mode '%s', using '%s'",
			cv.WorkingCapitalMode, constants.WorkingCapitalChangeLevel))
	}

	products := make(map[string]struct{}, len(cv.Products))
	for _, product := range cv.Products {
		if _, dup := products[product.ID]; dup {
			warnings = append(warnings, fmt.Sprintf("Product '%s' is defined more than once, the last definition wins", product.ID))
		}
		products[product.ID] = struct{}{}
		if product.SeasonalityLen != 0 && product.SeasonalityLen != constants.MonthsPerYear {
			warnings = append(warnings, fmt.Sprintf("Product '%s' has %d seasonality values instead of %d, seasonality ignored",
				product.ID, product.SeasonalityLen, constants.MonthsPerYear))
		}
	}

	for _, projection := range cv.SalesProjections {
		if _, ok := products[projection.Ref]; !ok {
			warnings = append(warnings, fmt.Sprintf("Sales projection for %s references unknown product '%s'",
				projection.Date, projection.Ref))
		}
		warnings = append(warnings, ValidateWindow(fmt.Sprintf("Sales projection for product '%s'", projection.Ref),
			projection.Date, projection.Date, horizonStart, horizonEnd)...)
	}

	roles := make(map[string]struct{}, len(cv.RoleIDs))
	for _, id := range cv.RoleIDs {
		roles[id] = struct{}{}
	}
	for _, entry := range cv.Headcount {
		if _, ok := roles[entry.Ref]; !ok {
			warnings = append(warnings, fmt.Sprintf("Headcount for %s references unknown role '%s'",
				entry.Date, entry.Ref))
		}
	}

	for _, line := range cv.Opex {
		if !line.Variable {
			switch line.Periodicity {
			case "", constants.PeriodicityMonthly, constants.PeriodicityQuarterly, constants.PeriodicityAnnual:
			default:
				warnings = append(warnings, fmt.Sprintf("Opex line '%s' has unknown periodicity '%s' and will be ignored",
					line.Name, line.Periodicity))
			}
		}
		warnings = append(warnings, ValidateWindow(fmt.Sprintf("Opex line '%s'", line.Name),
			line.StartDate, line.EndDate, horizonStart, horizonEnd)...)
	}

	warnings = append(warnings, validateCapex("Capex", cv.Capex, horizonStart, horizonEnd)...)
	warnings = append(warnings, validateLoans("Loan", cv.Loans, horizonEnd)...)

	scenarios := make(map[string]struct{}, len(cv.Scenarios))
	for _, scenario := range cv.Scenarios {
		if _, dup := scenarios[scenario.Name]; dup {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' is defined more than once", scenario.Name))
		}
		scenarios[scenario.Name] = struct{}{}
		if !scenario.Active {
			continue
		}
		warnings = append(warnings, validateCapex(fmt.Sprintf("Scenario '%s' capex", scenario.Name), scenario.Capex, horizonStart, horizonEnd)...)
		warnings = append(warnings, validateLoans(fmt.Sprintf("Scenario '%s' loan", scenario.Name), scenario.Loans, horizonEnd)...)
	}

	return warnings
}

func validateCapex(prefix string, assets []CapexConfig, horizonStart, horizonEnd string) []string {
	var warnings []string
	for _, asset := range assets {
		switch asset.Method {
		case "", constants.DepreciationLinear, constants.DepreciationDeclining:
		default:
			warnings = append(warnings, fmt.Sprintf("%s '%s' has unknown depreciation method '%s', using linear",
				prefix, asset.Name, asset.Method))
		}
		if asset.UsefulLifeMonths <= 0 {
			warnings = append(warnings, fmt.Sprintf("%s '%s' has no useful life and will not depreciate", prefix, asset.Name))
		}
		warnings = append(warnings, ValidateWindow(fmt.Sprintf("%s '%s'", prefix, asset.Name),
			asset.AcquisitionDate, asset.AcquisitionDate, horizonStart, horizonEnd)...)
	}
	return warnings
}

func validateLoans(prefix string, loans []LoanConfig, horizonEnd string) []string {
	var warnings []string
	for _, loan := range loans {
		warning, err := ValidateLoanMaturity(fmt.Sprintf("%s %s", prefix, loan.Name), loan.DisbursementDate, horizonEnd, loan.Term)
		if err == nil && warning != "" {
			warnings = append(warnings, warning)
		}
	}
	return warnings
}
