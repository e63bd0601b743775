// Package forecast defines the data structures related to a given projection
// and includes functions for computing the projections of a business plan.
package forecast

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/iwvelando/bizplan-forecast/internal/config"
	"github.com/iwvelando/bizplan-forecast/pkg/adapters"
	"github.com/iwvelando/bizplan-forecast/pkg/constants"
	"github.com/iwvelando/bizplan-forecast/pkg/datetime"
	"github.com/iwvelando/bizplan-forecast/pkg/finance"
	"github.com/iwvelando/bizplan-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidHorizon is returned when no month of the projection can be resolved.
var ErrInvalidHorizon = errors.New("invalid projection horizon")

// Project identifies the modeled business and its horizon.
type Project struct {
	ID           uuid.UUID
	Name         string
	StartDate    datetime.Period
	HorizonYears int
}

// Months is the number of months in the horizon.
func (p Project) Months() int {
	return p.HorizonYears * constants.MonthsPerYear
}

// Validate fails when the horizon cannot be resolved into months or is longer
// than constants.MaxHorizonYears.
func (p Project) Validate() error {
	if p.HorizonYears <= 0 {
		return fmt.Errorf("%w: horizon of %d years", ErrInvalidHorizon, p.HorizonYears)
	}
	if p.HorizonYears > constants.MaxHorizonYears {
		return fmt.Errorf("%w: horizon of %d years exceeds the %d year limit",
			ErrInvalidHorizon, p.HorizonYears, constants.MaxHorizonYears)
	}
	if p.StartDate.IsZero() {
		return fmt.Errorf("%w: missing start date", ErrInvalidHorizon)
	}
	return nil
}

// Context is everything a single projection run reads. It is never modified
// by the run.
type Context struct {
	Project      Project
	ScenarioID   uuid.UUID
	ScenarioName string
	Inputs       *finance.Inputs
}

// Options tune how a projection is computed without changing its results.
type Options struct {
	// Workers bounds how many months have their line items computed
	// concurrently. Values below 1 mean 1.
	Workers int
}

// FinancialOutput is the projected income statement, cash flow, working
// capital and ratio set of one month.
type FinancialOutput struct {
	ProjectID    uuid.UUID `json:"projectId"`
	ScenarioID   uuid.UUID `json:"scenarioId"`
	ScenarioName string    `json:"scenarioName"`
	Year         int       `json:"year"`
	Month        int       `json:"month"`
	MonthIndex   int       `json:"monthIndex"`

	Revenue      decimal.Decimal `json:"revenue"`
	COGS         decimal.Decimal `json:"cogs"`
	GrossProfit  decimal.Decimal `json:"grossProfit"`
	Opex         decimal.Decimal `json:"opex"`
	Payroll      decimal.Decimal `json:"payroll"`
	EBITDA       decimal.Decimal `json:"ebitda"`
	Depreciation decimal.Decimal `json:"depreciation"`
	EBIT         decimal.Decimal `json:"ebit"`
	Interest     decimal.Decimal `json:"interest"`
	EBT          decimal.Decimal `json:"ebt"`
	Tax          decimal.Decimal `json:"tax"`
	NetIncome    decimal.Decimal `json:"netIncome"`

	BFRLevel  decimal.Decimal `json:"bfrLevel"`
	BFRChange decimal.Decimal `json:"bfrChange"`

	OperatingCashFlow decimal.Decimal `json:"operatingCashFlow"`
	InvestingCashFlow decimal.Decimal `json:"investingCashFlow"`
	FinancingCashFlow decimal.Decimal `json:"financingCashFlow"`
	NetCashFlow       decimal.Decimal `json:"netCashFlow"`

	CumulativeCash   decimal.Decimal `json:"cumulativeCash"`
	CumulativeAssets decimal.Decimal `json:"cumulativeAssets"`
	CumulativeDebt   decimal.Decimal `json:"cumulativeDebt"`
	Equity           decimal.Decimal `json:"equity"`

	GrossMargin  decimal.Decimal `json:"grossMargin"`
	EBITDAMargin decimal.Decimal `json:"ebitdaMargin"`
	NetMargin    decimal.Decimal `json:"netMargin"`
	ROA          decimal.Decimal `json:"roa"`
	ROE          decimal.Decimal `json:"roe"`
	CurrentRatio decimal.Decimal `json:"currentRatio"`
	DebtToEquity decimal.Decimal `json:"debtToEquity"`
	DSCR         decimal.Decimal `json:"dscr"`
}

// Period returns the calendar month of the output.
func (o FinancialOutput) Period() datetime.Period {
	return datetime.NewPeriod(o.Year, o.Month)
}

// Projection holds the outputs of one scenario.
type Projection struct {
	Name       string
	ScenarioID uuid.UUID
	Outputs    []FinancialOutput
	Notes      map[string][]string
}

// carry is the state threaded from one month to the next.
type carry struct {
	cash        decimal.Decimal
	assets      decimal.Decimal
	debt        decimal.Decimal
	previousBFR decimal.Decimal
}

// GetProjection computes one output per month of the horizon.
//
// Line items that only depend on their own month are computed first, possibly
// concurrently. Cumulative balances and ratios are then folded in month order.
func GetProjection(logger *zap.Logger, pc Context, opts Options) ([]FinancialOutput, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := pc.Project.Validate(); err != nil {
		return nil, err
	}
	if pc.Inputs == nil {
		return nil, fmt.Errorf("scenario %s has no inputs", pc.ScenarioName)
	}

	engine := finance.NewForecastEngine(logger)
	items, err := computeLineItems(engine, pc, opts)
	if err != nil {
		return nil, err
	}

	outputs := make([]FinancialOutput, 0, len(items))
	var state carry
	for _, item := range items {
		var out FinancialOutput
		out, state = fold(engine, pc, item, state)
		outputs = append(outputs, out)
	}

	logger.Debug(fmt.Sprintf("projected %d months for scenario %s", len(outputs), pc.ScenarioName),
		zap.String("op", "forecast.GetProjection"),
		zap.String("cumulativeCash", state.cash.String()),
	)
	return outputs, nil
}

func computeLineItems(engine *finance.ForecastEngine, pc Context, opts Options) ([]finance.LineItems, error) {
	months := pc.Project.Months()
	items := make([]finance.LineItems, months)

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < months; i++ {
		i := i
		g.Go(func() error {
			item, err := engine.ProcessMonth(pc.Inputs, pc.Project.StartDate, i)
			if err != nil {
				return fmt.Errorf("month %d: %w", i, err)
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func fold(engine *finance.ForecastEngine, pc Context, item finance.LineItems, state carry) (FinancialOutput, carry) {
	level := item.WorkingCapital.Level
	change := engine.WorkingCapitalChange(level, state.previousBFR, pc.Inputs.WorkingCapital.ChangeMode)

	operating := item.NetIncome.Add(item.Depreciation).Sub(change)
	investing := item.CapitalOutlay.Neg()
	financing := item.LoanDisbursed.Sub(item.PrincipalRepaid)
	net := mathutil.Sum(operating, investing, financing)

	next := carry{
		cash:        state.cash.Add(net),
		assets:      state.assets.Add(investing.Neg()).Sub(item.Depreciation),
		debt:        mathutil.NonNegative(state.debt.Add(item.LoanDisbursed).Sub(item.PrincipalRepaid)),
		previousBFR: level,
	}

	ratios := finance.ComputeRatios(finance.RatioInputs{
		Revenue:           item.Revenue,
		GrossProfit:       item.GrossProfit,
		EBITDA:            item.EBITDA,
		NetIncome:         item.NetIncome,
		OperatingCashFlow: operating,
		Interest:          item.Interest,
		CumulativeAssets:  next.assets,
		CumulativeDebt:    next.debt,
	})

	out := FinancialOutput{
		ProjectID:    pc.Project.ID,
		ScenarioID:   pc.ScenarioID,
		ScenarioName: pc.ScenarioName,
		Year:         item.Period.Year,
		Month:        item.Period.Month,
		MonthIndex:   item.MonthIndex,

		Revenue:      item.Revenue,
		COGS:         item.COGS,
		GrossProfit:  item.GrossProfit,
		Opex:         item.Opex,
		Payroll:      item.Payroll,
		EBITDA:       item.EBITDA,
		Depreciation: item.Depreciation,
		EBIT:         item.EBIT,
		Interest:     item.Interest,
		EBT:          item.EBT,
		Tax:          item.Tax,
		NetIncome:    item.NetIncome,

		BFRLevel:  level,
		BFRChange: change,

		OperatingCashFlow: operating,
		InvestingCashFlow: investing,
		FinancingCashFlow: financing,
		NetCashFlow:       net,

		CumulativeCash:   next.cash,
		CumulativeAssets: next.assets,
		CumulativeDebt:   next.debt,
		Equity:           ratios.Equity,

		GrossMargin:  ratios.GrossMargin,
		EBITDAMargin: ratios.EBITDAMargin,
		NetMargin:    ratios.NetMargin,
		ROA:          ratios.ROA,
		ROE:          ratios.ROE,
		CurrentRatio: ratios.CurrentRatio,
		DebtToEquity: ratios.DebtToEquity,
		DSCR:         ratios.DSCR,
	}
	return out, next
}

// ProjectFromConfig resolves the project descriptor of a plan.
func ProjectFromConfig(conf config.Configuration) (Project, error) {
	id, err := conf.Project.UUID()
	if err != nil {
		return Project{}, err
	}
	start, err := conf.Project.Start()
	if err != nil {
		return Project{}, fmt.Errorf("%w: %v", ErrInvalidHorizon, err)
	}
	project := Project{
		ID:           id,
		Name:         conf.Project.Name,
		StartDate:    start,
		HorizonYears: conf.Project.HorizonYears,
	}
	return project, project.Validate()
}

// GetForecast processes the projections for all active scenarios.
func GetForecast(logger *zap.Logger, conf config.Configuration, opts Options) ([]Projection, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	project, err := ProjectFromConfig(conf)
	if err != nil {
		return nil, err
	}

	var results []Projection
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "forecast.GetForecast"),
			)
			continue
		}

		scenarioID, err := scenario.UUID(project.ID)
		if err != nil {
			return results, err
		}

		inputs, err := adapters.ToInputs(logger, conf, scenario)
		if err != nil {
			return results, err
		}

		pc := Context{
			Project:      project,
			ScenarioID:   scenarioID,
			ScenarioName: scenario.Name,
			Inputs:       inputs,
		}
		outputs, err := GetProjection(logger, pc, opts)
		if err != nil {
			return results, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}

		results = append(results, Projection{
			Name:       scenario.Name,
			ScenarioID: scenarioID,
			Outputs:    outputs,
			Notes:      buildNotes(pc),
		})
	}

	return results, nil
}

// buildNotes records loan disbursements and maturities and asset purchases
// falling within the horizon, keyed by date.
func buildNotes(pc Context) map[string][]string {
	notes := make(map[string][]string)
	start := pc.Project.StartDate
	end := start.Offset(pc.Project.Months() - 1)
	within := func(p datetime.Period) bool {
		return !p.Before(start) && !p.After(end)
	}

	for _, schedule := range pc.Inputs.Loans.Schedules() {
		if len(schedule.Payments) == 0 {
			continue
		}
		loan := schedule.Loan
		if within(loan.DisbursementDate) {
			notes[loan.DisbursementDate.String()] = append(notes[loan.DisbursementDate.String()],
				fmt.Sprintf("loan %s disbursed: %s", loan.Name, mathutil.Round(loan.Principal).StringFixed(constants.CurrencyPlaces)))
		}
		if maturity := schedule.MaturityDate(); within(maturity) {
			notes[maturity.String()] = append(notes[maturity.String()],
				fmt.Sprintf("loan %s final payment", loan.Name))
		}
	}

	for _, asset := range pc.Inputs.Capex {
		if within(asset.AcquisitionDate) {
			notes[asset.AcquisitionDate.String()] = append(notes[asset.AcquisitionDate.String()],
				fmt.Sprintf("asset %s acquired: %s", asset.Name, mathutil.Round(asset.Amount).StringFixed(constants.CurrencyPlaces)))
		}
	}

	for date := range notes {
		sort.Strings(notes[date])
	}
	return notes
}
