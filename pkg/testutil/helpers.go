// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/google/uuid"
	"github.com/iwvelando/bizplan-forecast/internal/forecast"
	"github.com/iwvelando/bizplan-forecast/pkg/datetime"
	"github.com/shopspring/decimal"
)

// FindScenario finds a projection by scenario name in the results slice.
// Returns a pointer to the projection if found, nil otherwise.
func FindScenario(results []forecast.Projection, name string) *forecast.Projection {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// OutputAt returns the output of the given "2006-01" date, if projected.
func OutputAt(projection *forecast.Projection, date string) (forecast.FinancialOutput, bool) {
	if projection == nil {
		return forecast.FinancialOutput{}, false
	}
	for _, out := range projection.Outputs {
		if out.Period().String() == date {
			return out, true
		}
	}
	return forecast.FinancialOutput{}, false
}

// SampleProjection builds a deterministic projection without running the
// engine. Month i has revenue 1000·(i+1), half of it as COGS, a flat 200 of
// OPEX, 25 % tax on the remaining profit and no investing or financing flows.
func SampleProjection(name string, start datetime.Period, months int) forecast.Projection {
	projectID := uuid.NewSHA1(uuid.NameSpaceURL, []byte("testutil"))
	scenarioID := uuid.NewSHA1(projectID, []byte(name))

	outputs := make([]forecast.FinancialOutput, 0, months)
	cash := decimal.Zero
	for i := 0; i < months; i++ {
		period := start.Offset(i)
		revenue := decimal.NewFromInt(int64(1000 * (i + 1)))
		cogs := revenue.Div(decimal.NewFromInt(2))
		gross := revenue.Sub(cogs)
		opex := decimal.NewFromInt(200)
		ebitda := gross.Sub(opex)
		tax := ebitda.Mul(decimal.RequireFromString("0.25"))
		net := ebitda.Sub(tax)
		cash = cash.Add(net)

		outputs = append(outputs, forecast.FinancialOutput{
			ProjectID:         projectID,
			ScenarioID:        scenarioID,
			ScenarioName:      name,
			Year:              period.Year,
			Month:             period.Month,
			MonthIndex:        i,
			Revenue:           revenue,
			COGS:              cogs,
			GrossProfit:       gross,
			Opex:              opex,
			EBITDA:            ebitda,
			EBIT:              ebitda,
			EBT:               ebitda,
			Tax:               tax,
			NetIncome:         net,
			OperatingCashFlow: net,
			NetCashFlow:       net,
			CumulativeCash:    cash,
			Equity:            decimal.Zero,
			GrossMargin:       decimal.NewFromInt(50),
		})
	}

	notes := map[string][]string{
		start.String(): {"loan Bank disbursed: 1000.00"},
	}
	return forecast.Projection{
		Name:       name,
		ScenarioID: scenarioID,
		Outputs:    outputs,
		Notes:      notes,
	}
}
