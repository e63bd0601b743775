package loans

import (
	"testing"

	"github.com/iwvelando/bizplan-forecast/pkg/datetime"
	"github.com/iwvelando/bizplan-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var epsilon = mathutil.MustParse("0.000001")

func TestCalculateMonthlyPayment(t *testing.T) {
	tests := []struct {
		name               string
		principal          string
		annualInterestRate string
		termMonths         int
		expected           string // rounded to cents
	}{
		{
			name:               "One-year loan at 12%",
			principal:          "1200000",
			annualInterestRate: "12",
			termMonths:         12,
			expected:           "106618.55",
		},
		{
			name:               "Standard 30-year mortgage",
			principal:          "240000",
			annualInterestRate: "6",
			termMonths:         360,
			expected:           "1438.92",
		},
		{
			name:               "Zero interest loan",
			principal:          "12000",
			annualInterestRate: "0",
			termMonths:         12,
			expected:           "1000",
		},
		{
			name:               "Zero term",
			principal:          "12000",
			annualInterestRate: "5",
			termMonths:         0,
			expected:           "0",
		},
		{
			name:               "Zero principal",
			principal:          "0",
			annualInterestRate: "5",
			termMonths:         60,
			expected:           "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateMonthlyPayment(mathutil.MustParse(tt.principal), mathutil.MustParse(tt.annualInterestRate), tt.termMonths)
			if !mathutil.Round(result).Equal(mathutil.MustParse(tt.expected)) {
				t.Errorf("CalculateMonthlyPayment() = %s, expected %s", mathutil.Round(result), tt.expected)
			}
		})
	}
}

func TestCalculateInterestPayment(t *testing.T) {
	tests := []struct {
		name               string
		remainingPrincipal string
		annualInterestRate string
		expected           string
	}{
		{"Standard mortgage interest", "200000", "6", "1000"},
		{"Car loan interest", "15000", "4.5", "56.25"},
		{"Zero interest", "10000", "0", "0"},
		{"High interest", "5000", "24", "100"},
		{"First month of the reference loan", "1200000", "12", "12000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateInterestPayment(mathutil.MustParse(tt.remainingPrincipal), mathutil.MustParse(tt.annualInterestRate))
			if !mathutil.Round(result).Equal(mathutil.MustParse(tt.expected)) {
				t.Errorf("CalculateInterestPayment() = %s, expected %s", result, tt.expected)
			}
		})
	}
}

func referenceLoan() Loan {
	return Loan{
		Name:             "Bank",
		DisbursementDate: datetime.MustParsePeriod("2025-01"),
		Principal:        mathutil.MustParse("1200000"),
		InterestRate:     mathutil.MustParse("12"),
		Term:             12,
	}
}

func TestGenerateScheduleReferenceLoan(t *testing.T) {
	generator := NewAmortizationScheduleGenerator(zap.NewNop())
	schedule := generator.GenerateSchedule(referenceLoan())

	if len(schedule.Payments) != 12 {
		t.Fatalf("expected 12 payments, got %d", len(schedule.Payments))
	}

	first, ok := schedule.At(0)
	if !ok {
		t.Fatal("expected a payment at elapsed month 0")
	}
	if !first.Interest.Equal(mathutil.MustParse("12000")) {
		t.Errorf("first interest = %s, expected 12000", first.Interest)
	}
	if !first.OpeningPrincipal.Equal(mathutil.MustParse("1200000")) {
		t.Errorf("first opening principal = %s, expected 1200000", first.OpeningPrincipal)
	}
	if !mathutil.Round(first.Principal).Equal(mathutil.MustParse("94618.55")) {
		t.Errorf("first principal = %s, expected 94618.55", mathutil.Round(first.Principal))
	}

	last := schedule.Payments[len(schedule.Payments)-1]
	if !mathutil.WithinTolerance(last.RemainingPrincipal, decimal.Zero, epsilon) {
		t.Errorf("remaining principal after term = %s, expected ~0", last.RemainingPrincipal)
	}

	if schedule.MaturityDate().String() != "2025-12" {
		t.Errorf("maturity = %s, expected 2025-12", schedule.MaturityDate())
	}
}

func TestGenerateScheduleThrough(t *testing.T) {
	generator := NewAmortizationScheduleGenerator(zap.NewNop())
	jan := datetime.MustParsePeriod("2025-01")
	loan := Loan{
		Name:             "Mortgage",
		DisbursementDate: jan.Offset(-6),
		Principal:        mathutil.MustParse("250000"),
		InterestRate:     mathutil.MustParse("4.5"),
		Term:             240,
	}

	full := generator.GenerateSchedule(loan)
	capped := generator.GenerateScheduleThrough(loan, jan.Offset(35))

	if len(capped.Payments) != 42 {
		t.Fatalf("expected 42 payments through the horizon, got %d", len(capped.Payments))
	}
	if !capped.MonthlyPayment.Equal(full.MonthlyPayment) {
		t.Errorf("monthly payment = %s, expected %s", capped.MonthlyPayment, full.MonthlyPayment)
	}
	for i, payment := range capped.Payments {
		expected := full.Payments[i]
		if !payment.OpeningPrincipal.Equal(expected.OpeningPrincipal) ||
			!payment.Interest.Equal(expected.Interest) ||
			!payment.Principal.Equal(expected.Principal) ||
			!payment.RemainingPrincipal.Equal(expected.RemainingPrincipal) {
			t.Fatalf("payment %d = %+v, expected %+v", i, payment, expected)
		}
	}
	if capped.MaturityDate() != full.MaturityDate() {
		t.Errorf("maturity = %s, expected %s", capped.MaturityDate(), full.MaturityDate())
	}

	tests := []struct {
		name     string
		loan     Loan
		through  datetime.Period
		payments int
	}{
		{"Term shorter than horizon", referenceLoan(), jan.Offset(35), 12},
		{"Very long term", Loan{Name: "Long", DisbursementDate: jan, Principal: mathutil.MustParse("1000"), InterestRate: mathutil.MustParse("5"), Term: 2_000_000}, jan.Offset(35), 36},
		{"Disbursed after horizon", Loan{Name: "Late", DisbursementDate: jan.Offset(40), Principal: mathutil.MustParse("1000"), Term: 12}, jan.Offset(35), 0},
		{"Disbursed in last month", Loan{Name: "Last", DisbursementDate: jan.Offset(35), Principal: mathutil.MustParse("1000"), Term: 12}, jan.Offset(35), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := generator.GenerateScheduleThrough(tt.loan, tt.through)
			if len(schedule.Payments) != tt.payments {
				t.Errorf("expected %d payments, got %d", tt.payments, len(schedule.Payments))
			}
		})
	}
}

func TestGenerateScheduleNeverNegative(t *testing.T) {
	loans := []Loan{
		referenceLoan(),
		{Name: "Mortgage", DisbursementDate: datetime.MustParsePeriod("2025-03"), Principal: mathutil.MustParse("240000"), InterestRate: mathutil.MustParse("6.5"), Term: 360},
		{Name: "Interest free", DisbursementDate: datetime.MustParsePeriod("2025-03"), Principal: mathutil.MustParse("10000"), InterestRate: decimal.Zero, Term: 7},
		{Name: "Tiny", DisbursementDate: datetime.MustParsePeriod("2025-03"), Principal: mathutil.MustParse("0.03"), InterestRate: mathutil.MustParse("3"), Term: 5},
	}

	generator := NewAmortizationScheduleGenerator(nil)
	for _, loan := range loans {
		t.Run(loan.Name, func(t *testing.T) {
			schedule := generator.GenerateSchedule(loan)
			for i, payment := range schedule.Payments {
				if payment.RemainingPrincipal.IsNegative() {
					t.Errorf("month %d remaining principal negative: %s", i, payment.RemainingPrincipal)
				}
				if payment.OpeningPrincipal.IsNegative() {
					t.Errorf("month %d opening principal negative: %s", i, payment.OpeningPrincipal)
				}
			}
			last := schedule.Payments[len(schedule.Payments)-1]
			if !mathutil.WithinTolerance(last.RemainingPrincipal, decimal.Zero, epsilon) {
				t.Errorf("remaining principal after term = %s, expected ~0", last.RemainingPrincipal)
			}
		})
	}
}

func TestScheduleMatchesSimulation(t *testing.T) {
	loans := []Loan{
		referenceLoan(),
		{Name: "Long", DisbursementDate: datetime.MustParsePeriod("2024-07"), Principal: mathutil.MustParse("350000"), InterestRate: mathutil.MustParse("4.25"), Term: 120},
		{Name: "Zero rate", DisbursementDate: datetime.MustParsePeriod("2024-07"), Principal: mathutil.MustParse("9000"), InterestRate: decimal.Zero, Term: 9},
	}

	generator := NewAmortizationScheduleGenerator(zap.NewNop())
	for _, loan := range loans {
		t.Run(loan.Name, func(t *testing.T) {
			schedule := generator.GenerateSchedule(loan)
			for elapsed := 0; elapsed < loan.Term; elapsed++ {
				simulated := SimulateOutstanding(loan, elapsed)
				if !simulated.Equal(schedule.Payments[elapsed].OpeningPrincipal) {
					t.Fatalf("elapsed %d: schedule %s != simulation %s",
						elapsed, schedule.Payments[elapsed].OpeningPrincipal, simulated)
				}
			}
		})
	}
}

func TestSimulateOutstandingOutsideTerm(t *testing.T) {
	loan := referenceLoan()
	if got := SimulateOutstanding(loan, -1); !got.IsZero() {
		t.Errorf("SimulateOutstanding(-1) = %s, expected 0", got)
	}
	if got := SimulateOutstanding(loan, loan.Term); !got.IsZero() {
		t.Errorf("SimulateOutstanding(term) = %s, expected 0", got)
	}
}

func TestGenerateScheduleInvalidLoans(t *testing.T) {
	generator := NewAmortizationScheduleGenerator(zap.NewNop())
	tests := []Loan{
		{Name: "No term", Principal: mathutil.MustParse("1000"), InterestRate: mathutil.MustParse("5"), Term: 0},
		{Name: "Negative principal", Principal: mathutil.MustParse("-1000"), InterestRate: mathutil.MustParse("5"), Term: 12},
	}
	for _, loan := range tests {
		t.Run(loan.Name, func(t *testing.T) {
			schedule := generator.GenerateSchedule(loan)
			if len(schedule.Payments) != 0 {
				t.Errorf("expected empty schedule, got %d payments", len(schedule.Payments))
			}
			if _, ok := schedule.At(0); ok {
				t.Errorf("expected no payment at elapsed month 0")
			}
		})
	}
}

func TestPortfolio(t *testing.T) {
	jan := datetime.MustParsePeriod("2025-01")
	loans := []Loan{
		referenceLoan(),
		{Name: "Equipment", DisbursementDate: jan.Offset(2), Principal: mathutil.MustParse("12000"), InterestRate: decimal.Zero, Term: 12},
	}
	portfolio := NewPortfolio(zap.NewNop(), loans, jan.Offset(23))

	tests := []struct {
		name            string
		period          datetime.Period
		disbursed       string
		interest        string
		principalRepaid string
		outstanding     string
	}{
		{
			name:            "Before any disbursement",
			period:          jan.Offset(-1),
			disbursed:       "0",
			interest:        "0",
			principalRepaid: "0",
			outstanding:     "0",
		},
		{
			name:            "Reference loan disbursement month",
			period:          jan,
			disbursed:       "1200000",
			interest:        "12000",
			principalRepaid: "94618.55",
			outstanding:     "1200000",
		},
		{
			name:            "Both loans active",
			period:          jan.Offset(2),
			disbursed:       "12000",
			interest:        "10098.17",
			principalRepaid: "97520.38",
			outstanding:     "1021816.72",
		},
		{
			name:            "After reference loan maturity",
			period:          jan.Offset(12),
			disbursed:       "0",
			interest:        "0",
			principalRepaid: "1000",
			outstanding:     "2000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mathutil.Round(portfolio.Disbursed(tt.period)); !got.Equal(mathutil.MustParse(tt.disbursed)) {
				t.Errorf("Disbursed() = %s, expected %s", got, tt.disbursed)
			}
			if got := mathutil.Round(portfolio.Interest(tt.period)); !got.Equal(mathutil.MustParse(tt.interest)) {
				t.Errorf("Interest() = %s, expected %s", got, tt.interest)
			}
			if got := mathutil.Round(portfolio.PrincipalRepaid(tt.period)); !got.Equal(mathutil.MustParse(tt.principalRepaid)) {
				t.Errorf("PrincipalRepaid() = %s, expected %s", got, tt.principalRepaid)
			}
			if got := mathutil.Round(portfolio.Outstanding(tt.period)); !got.Equal(mathutil.MustParse(tt.outstanding)) {
				t.Errorf("Outstanding() = %s, expected %s", got, tt.outstanding)
			}
		})
	}
}
