// Package optimization provides shared data structures for optimization results.
package optimization

import "github.com/shopspring/decimal"

// Summary captures the funding search of one scenario.
type Summary struct {
	Scenario            string          `json:"scenario"`
	TargetName          string          `json:"targetName"`
	Value               decimal.Decimal `json:"value"`
	Floor               decimal.Decimal `json:"floor"`
	BaselineMinimumCash decimal.Decimal `json:"baselineMinimumCash"`
	MinimumCash         decimal.Decimal `json:"minimumCash"`
	MinimumCashDate     string          `json:"minimumCashDate"`
	Headroom            decimal.Decimal `json:"headroom"`
	Iterations          int             `json:"iterations"`
	Converged           bool            `json:"converged"`
	Notes               []string        `json:"notes,omitempty"`
	ValueDisplay        string          `json:"valueDisplay,omitempty"`
}

// Feasible reports whether the cash floor holds with the found value.
func (s Summary) Feasible() bool {
	return !s.Headroom.IsNegative()
}
