// Package config defines conversion utilities for configuration objects.
package config

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iwvelando/bizplan-forecast/pkg/datetime"
	"github.com/iwvelando/bizplan-forecast/pkg/finance"
	"github.com/iwvelando/bizplan-forecast/pkg/loans"
)

// projectNamespace seeds the IDs derived for projects that do not set one.
var projectNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/iwvelando/bizplan-forecast/project"))

// UUID returns the configured project ID or, when none is set, one derived
// from the project name so that repeated runs of a plan share an ID.
func (p Project) UUID() (uuid.UUID, error) {
	if strings.TrimSpace(p.ID) == "" {
		return uuid.NewSHA1(projectNamespace, []byte(p.Name)), nil
	}
	id, err := uuid.Parse(strings.TrimSpace(p.ID))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid project id %q: %w", p.ID, err)
	}
	return id, nil
}

// Start parses the project start date. A missing start date is reported as
// the zero period.
func (p Project) Start() (datetime.Period, error) {
	if strings.TrimSpace(p.StartDate) == "" {
		return datetime.Period{}, nil
	}
	return datetime.ParsePeriod(p.StartDate)
}

// UUID returns the configured scenario ID or one derived from the project ID
// and scenario name.
func (s Scenario) UUID(projectID uuid.UUID) (uuid.UUID, error) {
	if strings.TrimSpace(s.ID) == "" {
		return uuid.NewSHA1(projectID, []byte(s.Name)), nil
	}
	id, err := uuid.Parse(strings.TrimSpace(s.ID))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q for scenario %s: %w", s.ID, s.Name, err)
	}
	return id, nil
}

// parseOptionalPeriod returns the zero period for an empty string.
func parseOptionalPeriod(date string) (datetime.Period, error) {
	if strings.TrimSpace(date) == "" {
		return datetime.Period{}, nil
	}
	return datetime.ParsePeriod(date)
}

// ToProduct converts the product to its engine form.
func (p Product) ToProduct() finance.Product {
	return finance.Product{
		ID:          p.ID,
		Name:        p.Name,
		UnitPrice:   p.UnitPrice,
		UnitCost:    p.UnitCost,
		Seasonality: p.Seasonality,
	}
}

// ToSalesProjection converts the sales projection to its engine form.
func (s SalesProjection) ToSalesProjection() (finance.SalesProjection, error) {
	period, err := datetime.ParsePeriod(s.Date)
	if err != nil {
		return finance.SalesProjection{}, fmt.Errorf("sales projection for product %s: %w", s.Product, err)
	}
	return finance.SalesProjection{ProductID: s.Product, Period: period, Volume: s.Volume}, nil
}

// ToOpexLine converts the OPEX line to its engine form.
func (o OpexLine) ToOpexLine() (finance.OpexLine, error) {
	start, err := parseOptionalPeriod(o.StartDate)
	if err != nil {
		return finance.OpexLine{}, fmt.Errorf("opex line %s start date: %w", o.Name, err)
	}
	end, err := parseOptionalPeriod(o.EndDate)
	if err != nil {
		return finance.OpexLine{}, fmt.Errorf("opex line %s end date: %w", o.Name, err)
	}
	return finance.OpexLine{
		Name:              o.Name,
		Amount:            o.Amount,
		Periodicity:       strings.ToLower(strings.TrimSpace(o.Periodicity)),
		StartDate:         start,
		EndDate:           end,
		Variable:          o.Variable,
		RevenuePercentage: o.RevenuePercentage,
	}, nil
}

// ToPayrollRole converts the role to its engine form.
func (r PayrollRole) ToPayrollRole() finance.PayrollRole {
	return finance.PayrollRole{
		ID:                 r.ID,
		Name:               r.Name,
		GrossSalary:        r.GrossSalary,
		EmployerChargeRate: r.EmployerChargeRate,
		Benefits:           r.Benefits,
	}
}

// ToHeadcountEntry converts the headcount entry to its engine form.
func (h Headcount) ToHeadcountEntry() (finance.HeadcountEntry, error) {
	period, err := datetime.ParsePeriod(h.Date)
	if err != nil {
		return finance.HeadcountEntry{}, fmt.Errorf("headcount for role %s: %w", h.Role, err)
	}
	return finance.HeadcountEntry{RoleID: h.Role, Period: period, Count: h.Count}, nil
}

// ToCapexAsset converts the asset to its engine form.
func (c CapexAsset) ToCapexAsset() (finance.CapexAsset, error) {
	period, err := datetime.ParsePeriod(c.AcquisitionDate)
	if err != nil {
		return finance.CapexAsset{}, fmt.Errorf("capex %s: %w", c.Name, err)
	}
	return finance.CapexAsset{
		Name:             c.Name,
		AcquisitionDate:  period,
		Amount:           c.Amount,
		SalvageValue:     c.SalvageValue,
		UsefulLifeMonths: c.UsefulLifeMonths,
		Method:           strings.ToLower(strings.TrimSpace(c.Method)),
	}, nil
}

// ToLoan converts the loan to its engine form.
func (l Loan) ToLoan() (loans.Loan, error) {
	period, err := datetime.ParsePeriod(l.DisbursementDate)
	if err != nil {
		return loans.Loan{}, fmt.Errorf("loan %s: %w", l.Name, err)
	}
	return loans.Loan{
		Name:             l.Name,
		DisbursementDate: period,
		Principal:        l.Principal,
		InterestRate:     l.InterestRate,
		Term:             l.Term,
	}, nil
}

// ToAssumptions converts the BFR settings to their engine form.
func (w WorkingCapital) ToAssumptions() finance.WorkingCapitalAssumptions {
	return finance.WorkingCapitalAssumptions{
		DSO:              w.DSO,
		InventoryDays:    w.InventoryDays,
		DPO:              w.DPO,
		ClientAdvances:   w.ClientAdvances,
		SupplierAdvances: w.SupplierAdvances,
		ChangeMode:       strings.ToLower(strings.TrimSpace(w.ChangeMode)),
	}
}
