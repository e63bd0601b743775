// Package optimizer searches for the financing a plan needs to keep its cash
// above a floor.
package optimizer

import (
	"fmt"

	"github.com/iwvelando/bizplan-forecast/internal/config"
	"github.com/iwvelando/bizplan-forecast/internal/forecast"
	"github.com/iwvelando/bizplan-forecast/pkg/adapters"
	"github.com/iwvelando/bizplan-forecast/pkg/format"
	"github.com/iwvelando/bizplan-forecast/pkg/mathutil"
	"github.com/iwvelando/bizplan-forecast/pkg/optimization"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FundingLoanName names the loan the search adds to each scenario.
const FundingLoanName = "Funding requirement"

// MaxIterations bounds the bisection of one scenario.
const MaxIterations = 64

var defaultTolerance = mathutil.One

// Runner searches every active scenario of a plan.
type Runner struct {
	logger  *zap.Logger
	conf    *config.Configuration
	funding config.FundingConfig
	project forecast.Project
	opts    forecast.Options
}

type evaluation struct {
	value       decimal.Decimal
	minCash     decimal.Decimal
	minCashDate string
	floor       decimal.Decimal
}

func (e evaluation) feasible() bool {
	return e.minCash.GreaterThanOrEqual(e.floor)
}

func (e evaluation) headroom() decimal.Decimal {
	return e.minCash.Sub(e.floor)
}

// Result summarizes the search keyed by scenario name.
type Result struct {
	Summaries map[string]optimization.Summary
}

// Empty indicates whether any scenario was searched.
func (r Result) Empty() bool {
	return len(r.Summaries) == 0
}

// Ordered returns the summaries in the order of the given projections.
func (r Result) Ordered(projections []forecast.Projection) []optimization.Summary {
	var ordered []optimization.Summary
	for _, p := range projections {
		if summary, ok := r.Summaries[p.Name]; ok {
			ordered = append(ordered, summary)
		}
	}
	return ordered
}

// NewRunner constructs a Runner for the provided configuration. The plan must
// carry a funding section.
func NewRunner(logger *zap.Logger, conf *config.Configuration, opts forecast.Options) (*Runner, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if conf.Funding == nil {
		return nil, fmt.Errorf("configuration has no funding section")
	}
	if err := conf.Funding.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	project, err := forecast.ProjectFromConfig(*conf)
	if err != nil {
		return nil, err
	}

	funding := *conf.Funding
	if !funding.Tolerance.IsPositive() {
		funding.Tolerance = defaultTolerance
	}

	if funding.Term < project.Months() {
		logger.Warn(fmt.Sprintf("funding term of %d months ends before the %d month horizon; the found principal may not be minimal", funding.Term, project.Months()),
			zap.String("op", "optimizer.NewRunner"),
		)
	}

	return &Runner{logger: logger, conf: conf, funding: funding, project: project, opts: opts}, nil
}

// Run searches every active scenario. The configuration is not modified.
func (r *Runner) Run() (*Result, error) {
	summaries := make(map[string]optimization.Summary)

	for _, scenario := range r.conf.ActiveScenarios() {
		summary, err := r.searchScenario(scenario)
		if err != nil {
			return nil, err
		}
		summaries[scenario.Name] = summary

		r.logger.Info("funding requirement computed",
			zap.String("op", "optimizer.Run"),
			zap.String("scenario", scenario.Name),
			zap.String("principal", summary.Value.String()),
			zap.String("floor", summary.Floor.String()),
			zap.String("minCash", summary.MinimumCash.String()),
			zap.String("minCashDate", summary.MinimumCashDate),
			zap.Int("iterations", summary.Iterations),
			zap.Bool("converged", summary.Converged),
		)
	}

	return &Result{Summaries: summaries}, nil
}

func (r *Runner) searchScenario(scenario config.Scenario) (optimization.Summary, error) {
	floor := r.funding.CashFloor
	maxPrincipal := r.funding.MaxPrincipal

	baseline, err := r.evaluate(scenario, decimal.Zero)
	if err != nil {
		return optimization.Summary{}, err
	}
	if baseline.feasible() {
		summary := r.summary(scenario, baseline, baseline, 0, true)
		summary.Notes = []string{"no additional funding needed"}
		return summary, nil
	}

	upper, err := r.evaluate(scenario, maxPrincipal)
	if err != nil {
		return optimization.Summary{}, err
	}
	if !upper.feasible() {
		summary := r.summary(scenario, baseline, upper, 0, false)
		summary.Notes = []string{fmt.Sprintf(
			"unable to satisfy minimum cash %s within bounds %s to %s",
			format.Currency(floor),
			format.Currency(decimal.Zero),
			format.Currency(maxPrincipal),
		)}
		return summary, nil
	}

	// Only feasible evaluations replace best, so the result always holds the
	// floor. It is the smallest such principal while the loan outlives the horizon.
	best := upper
	lower := decimal.Zero
	upperValue := maxPrincipal
	iterations := 0
	for iterations < MaxIterations && upperValue.Sub(lower).GreaterThan(r.funding.Tolerance) {
		mid := mathutil.Round(lower.Add(upperValue.Sub(lower).Div(decimal.NewFromInt(2))))
		if mid.Equal(lower) || mid.Equal(upperValue) {
			break
		}
		evalMid, err := r.evaluate(scenario, mid)
		if err != nil {
			return optimization.Summary{}, err
		}
		iterations++
		if evalMid.feasible() {
			best = evalMid
			upperValue = mid
		} else {
			lower = mid
		}
	}

	return r.summary(scenario, baseline, best, iterations, true), nil
}

func (r *Runner) summary(scenario config.Scenario, baseline, final evaluation, iterations int, converged bool) optimization.Summary {
	return optimization.Summary{
		Scenario:            scenario.Name,
		TargetName:          FundingLoanName,
		Value:               final.value,
		ValueDisplay:        format.Currency(final.value),
		Floor:               final.floor,
		BaselineMinimumCash: baseline.minCash,
		MinimumCash:         final.minCash,
		MinimumCashDate:     final.minCashDate,
		Headroom:            final.headroom(),
		Iterations:          iterations,
		Converged:           converged,
	}
}

// FundingLoan is the loan added to a scenario for a candidate principal.
func (r *Runner) FundingLoan(principal decimal.Decimal) config.Loan {
	return config.Loan{
		Name:             FundingLoanName,
		DisbursementDate: r.project.StartDate.String(),
		Principal:        principal,
		InterestRate:     r.funding.InterestRate,
		Term:             r.funding.Term,
	}
}

func (r *Runner) evaluate(scenario config.Scenario, principal decimal.Decimal) (evaluation, error) {
	candidate := scenario
	if principal.IsPositive() {
		candidate.Loans = append(append([]config.Loan(nil), scenario.Loans...), r.FundingLoan(principal))
	}

	scenarioID, err := scenario.UUID(r.project.ID)
	if err != nil {
		return evaluation{}, err
	}
	inputs, err := adapters.ToInputs(r.logger, *r.conf, candidate)
	if err != nil {
		return evaluation{}, err
	}

	outputs, err := forecast.GetProjection(r.logger, forecast.Context{
		Project:      r.project,
		ScenarioID:   scenarioID,
		ScenarioName: scenario.Name,
		Inputs:       inputs,
	}, r.opts)
	if err != nil {
		return evaluation{}, fmt.Errorf("optimizer forecast evaluation failed: %w", err)
	}

	minCash, date := minimumCash(outputs)
	r.logger.Debug(fmt.Sprintf("principal %s gives minimum cash %s in %s", principal, minCash, date),
		zap.String("op", "optimizer.evaluate"),
		zap.String("scenario", scenario.Name),
	)
	return evaluation{
		value:       principal,
		minCash:     minCash,
		minCashDate: date,
		floor:       r.funding.CashFloor,
	}, nil
}

// minimumCash returns the lowest cumulative cash of a projection and its date.
// Ties keep the earliest month.
func minimumCash(outputs []forecast.FinancialOutput) (decimal.Decimal, string) {
	if len(outputs) == 0 {
		return decimal.Zero, ""
	}
	lowest := outputs[0]
	for _, out := range outputs[1:] {
		if out.CumulativeCash.LessThan(lowest.CumulativeCash) {
			lowest = out
		}
	}
	return lowest.CumulativeCash, lowest.Period().String()
}
