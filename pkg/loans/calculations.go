// Package loans provides amortizing-loan schedules and portfolio lookups.
package loans

import (
	"fmt"

	"github.com/iwvelando/bizplan-forecast/pkg/constants"
	"github.com/iwvelando/bizplan-forecast/pkg/datetime"
	"github.com/iwvelando/bizplan-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var monthsPerYearPercent = decimal.NewFromInt(constants.PercentageMultiplier * constants.MonthsPerYear)

// Loan is an amortizing loan disbursed at the start of DisbursementDate and
// repaid with equal monthly payments over Term months, the first one due in the
// disbursement month.
type Loan struct {
	Name             string
	DisbursementDate datetime.Period
	Principal        decimal.Decimal
	InterestRate     decimal.Decimal // annual nominal, percent
	Term             int             // months
}

// Payment holds the values for a given payment.
type Payment struct {
	Payment            decimal.Decimal
	OpeningPrincipal   decimal.Decimal
	Principal          decimal.Decimal
	Interest           decimal.Decimal
	RemainingPrincipal decimal.Decimal
}

// MonthlyRate converts an annual nominal percentage into a monthly fraction.
func MonthlyRate(annualInterestRate decimal.Decimal) decimal.Decimal {
	return mathutil.Div(annualInterestRate, monthsPerYearPercent)
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the
// standard annuity formula P·r·(1+r)^n / ((1+r)^n − 1).
func CalculateMonthlyPayment(principal, annualInterestRate decimal.Decimal, termMonths int) decimal.Decimal {
	if termMonths <= 0 || !principal.IsPositive() {
		return decimal.Zero
	}

	rate := MonthlyRate(annualInterestRate)
	if rate.IsZero() {
		// For zero interest, simply divide the principal by term
		return mathutil.Div(principal, decimal.NewFromInt(int64(termMonths)))
	}

	power := mathutil.PowInt(mathutil.One.Add(rate), termMonths)
	return mathutil.Div(principal.Mul(rate).Mul(power), power.Sub(mathutil.One))
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate decimal.Decimal) decimal.Decimal {
	return remainingPrincipal.Mul(MonthlyRate(annualInterestRate)).Round(constants.DivisionPrecision)
}

// SimulateOutstanding rebuilds the opening principal at the given elapsed month
// by walking the amortization formula from disbursement. It is the reference
// the precomputed Schedule must agree with.
func SimulateOutstanding(loan Loan, elapsed int) decimal.Decimal {
	if elapsed < 0 || elapsed >= loan.Term || !loan.Principal.IsPositive() {
		return decimal.Zero
	}
	payment := CalculateMonthlyPayment(loan.Principal, loan.InterestRate, loan.Term)
	balance := loan.Principal
	for month := 0; month < elapsed; month++ {
		interest := CalculateInterestPayment(balance, loan.InterestRate)
		balance = mathutil.NonNegative(balance.Sub(payment.Sub(interest)))
	}
	return balance
}

// Schedule is the amortization table of one loan indexed by elapsed month.
type Schedule struct {
	Loan           Loan
	MonthlyPayment decimal.Decimal
	Payments       []Payment
}

// At returns the payment for the given elapsed month since disbursement.
func (s *Schedule) At(elapsed int) (Payment, bool) {
	if s == nil || elapsed < 0 || elapsed >= len(s.Payments) {
		return Payment{}, false
	}
	return s.Payments[elapsed], true
}

// ForPeriod returns the payment falling due in the given period.
func (s *Schedule) ForPeriod(period datetime.Period) (Payment, bool) {
	if s == nil {
		return Payment{}, false
	}
	return s.At(s.Loan.DisbursementDate.MonthsUntil(period))
}

// MaturityDate is the period of the last scheduled payment.
func (s *Schedule) MaturityDate() datetime.Period {
	return s.Loan.DisbursementDate.Offset(s.Loan.Term - 1)
}

// AmortizationScheduleGenerator provides utilities for generating loan amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule creates a complete amortization schedule for a loan. Loans
// without a positive principal or term yield an empty schedule.
func (g *AmortizationScheduleGenerator) GenerateSchedule(loan Loan) *Schedule {
	return g.GenerateScheduleThrough(loan, loan.DisbursementDate.Offset(loan.Term-1))
}

// GenerateScheduleThrough creates the amortization schedule of a loan up to and
// including the given period. Payments after it are never looked up, so they
// are not computed; the ones kept match the complete schedule.
func (g *AmortizationScheduleGenerator) GenerateScheduleThrough(loan Loan, through datetime.Period) *Schedule {
	schedule := &Schedule{Loan: loan}
	if loan.Term <= 0 || !loan.Principal.IsPositive() {
		g.logger.Debug(fmt.Sprintf("loan %s has no principal or term, skipping schedule", loan.Name),
			zap.String("op", "loans.GenerateSchedule"),
		)
		return schedule
	}

	months := loan.Term
	if reach := loan.DisbursementDate.MonthsUntil(through) + 1; reach < months {
		months = reach
	}
	if months <= 0 {
		g.logger.Debug(fmt.Sprintf("loan %s is disbursed after %s, skipping schedule", loan.Name, through),
			zap.String("op", "loans.GenerateSchedule"),
		)
		return schedule
	}

	schedule.MonthlyPayment = CalculateMonthlyPayment(loan.Principal, loan.InterestRate, loan.Term)
	schedule.Payments = make([]Payment, months)

	balance := loan.Principal
	for month := 0; month < months; month++ {
		var payment Payment
		payment.OpeningPrincipal = balance
		payment.Interest = CalculateInterestPayment(balance, loan.InterestRate)
		payment.Principal = mathutil.Min(schedule.MonthlyPayment.Sub(payment.Interest), balance)
		payment.Payment = payment.Principal.Add(payment.Interest)
		payment.RemainingPrincipal = mathutil.NonNegative(balance.Sub(payment.Principal))
		schedule.Payments[month] = payment
		balance = payment.RemainingPrincipal
	}

	g.logger.Debug(fmt.Sprintf("generated %d of %d scheduled months for loan %s with payment %s",
		months, loan.Term, loan.Name, mathutil.Round(schedule.MonthlyPayment)),
		zap.String("op", "loans.GenerateSchedule"),
	)
	return schedule
}

// Portfolio answers per-period questions over a set of precomputed schedules.
type Portfolio struct {
	schedules []*Schedule
}

// NewPortfolio precomputes the schedule of every loan once, up to the last
// period of the horizon.
func NewPortfolio(logger *zap.Logger, loans []Loan, through datetime.Period) *Portfolio {
	generator := NewAmortizationScheduleGenerator(logger)
	portfolio := &Portfolio{schedules: make([]*Schedule, 0, len(loans))}
	for _, loan := range loans {
		portfolio.schedules = append(portfolio.schedules, generator.GenerateScheduleThrough(loan, through))
	}
	return portfolio
}

// Schedules returns the precomputed schedules in loan order.
func (p *Portfolio) Schedules() []*Schedule {
	if p == nil {
		return nil
	}
	return p.schedules
}

// Interest returns the interest expense due across all loans in the period.
func (p *Portfolio) Interest(period datetime.Period) decimal.Decimal {
	total := decimal.Zero
	for _, s := range p.Schedules() {
		if payment, ok := s.ForPeriod(period); ok {
			total = total.Add(payment.Interest)
		}
	}
	return total
}

// PrincipalRepaid returns the principal repaid across all loans in the period.
func (p *Portfolio) PrincipalRepaid(period datetime.Period) decimal.Decimal {
	total := decimal.Zero
	for _, s := range p.Schedules() {
		if payment, ok := s.ForPeriod(period); ok {
			total = total.Add(payment.Principal)
		}
	}
	return total
}

// Disbursed returns the principal disbursed in exactly the given period.
func (p *Portfolio) Disbursed(period datetime.Period) decimal.Decimal {
	total := decimal.Zero
	for _, s := range p.Schedules() {
		if len(s.Payments) > 0 && s.Loan.DisbursementDate.Equal(period) {
			total = total.Add(s.Loan.Principal)
		}
	}
	return total
}

// Outstanding returns the opening principal of every loan active in the period.
func (p *Portfolio) Outstanding(period datetime.Period) decimal.Decimal {
	total := decimal.Zero
	for _, s := range p.Schedules() {
		if payment, ok := s.ForPeriod(period); ok {
			total = total.Add(payment.OpeningPrincipal)
		}
	}
	return total
}
