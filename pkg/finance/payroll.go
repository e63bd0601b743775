package finance

import (
	"fmt"

	"github.com/iwvelando/bizplan-forecast/pkg/datetime"
	"github.com/iwvelando/bizplan-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PayrollRole is a job position with its monthly cost per head.
type PayrollRole struct {
	ID                 string
	Name               string
	GrossSalary        decimal.Decimal
	EmployerChargeRate decimal.Decimal // percent of gross salary
	Benefits           decimal.Decimal
}

// LoadedCost returns the fully-loaded monthly cost of one head.
func (r PayrollRole) LoadedCost() decimal.Decimal {
	return r.GrossSalary.Add(mathutil.ApplyPercentage(r.GrossSalary, r.EmployerChargeRate)).Add(r.Benefits)
}

// HeadcountEntry is the planned number of heads for a role in one month.
type HeadcountEntry struct {
	RoleID string
	Period datetime.Period
	Count  int
}

type headcountKey struct {
	role   string
	period datetime.Period
}

// HeadcountPlan is a sparse (role, period) -> count index. Duplicate entries
// for the same key are summed.
type HeadcountPlan map[headcountKey]int

// NewHeadcountPlan indexes headcount entries.
func NewHeadcountPlan(entries []HeadcountEntry) HeadcountPlan {
	plan := make(HeadcountPlan, len(entries))
	for _, entry := range entries {
		plan[headcountKey{role: entry.RoleID, period: entry.Period}] += entry.Count
	}
	return plan
}

// Lookup returns the headcount for a role in a period, if one was planned.
func (h HeadcountPlan) Lookup(roleID string, period datetime.Period) (int, bool) {
	count, ok := h[headcountKey{role: roleID, period: period}]
	return count, ok
}

// PayrollCalculator sums loaded payroll costs for a month.
type PayrollCalculator struct {
	logger *zap.Logger
}

// NewPayrollCalculator creates a payroll calculator with the given logger.
func NewPayrollCalculator(logger *zap.Logger) *PayrollCalculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayrollCalculator{logger: logger}
}

// Compute returns the payroll cost of every role staffed in the period. Roles
// without a headcount entry cost nothing.
func (pc *PayrollCalculator) Compute(roles []PayrollRole, plan HeadcountPlan, period datetime.Period) decimal.Decimal {
	total := decimal.Zero
	for _, role := range roles {
		count, ok := plan.Lookup(role.ID, period)
		if !ok {
			continue
		}
		if count <= 0 {
			pc.logger.Debug(fmt.Sprintf("ignoring headcount of %d", count),
				zap.String("op", "finance.PayrollCalculator.Compute"),
				zap.String("role", role.ID),
				zap.String("date", period.String()),
			)
			continue
		}
		total = total.Add(role.LoadedCost().Mul(decimal.NewFromInt(int64(count))))
	}
	return total
}
