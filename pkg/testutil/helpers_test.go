package testutil

import (
	"testing"

	"github.com/iwvelando/bizplan-forecast/internal/forecast"
	"github.com/iwvelando/bizplan-forecast/pkg/datetime"
	"github.com/shopspring/decimal"
)

func TestFindScenario(t *testing.T) {
	start := datetime.NewPeriod(2025, 1)
	results := []forecast.Projection{
		SampleProjection("Scenario A", start, 1),
		SampleProjection("Scenario B", start, 1),
		SampleProjection("Another Scenario", start, 1),
	}

	tests := []struct {
		name         string
		scenarioName string
		expectFound  bool
	}{
		{"Find first scenario", "Scenario A", true},
		{"Find middle scenario", "Scenario B", true},
		{"Find last scenario", "Another Scenario", true},
		{"Scenario not found", "Missing Scenario", false},
		{"Empty scenario name", "", false},
		{"Case sensitive search", "scenario a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindScenario(results, tt.scenarioName)
			if tt.expectFound {
				if result == nil {
					t.Fatalf("Expected to find scenario %q, but got nil", tt.scenarioName)
				}
				if result.Name != tt.scenarioName {
					t.Errorf("Expected scenario name %q, got %q", tt.scenarioName, result.Name)
				}
			} else if result != nil {
				t.Errorf("Expected nil for scenario %q, but found %q", tt.scenarioName, result.Name)
			}
		})
	}
}

func TestFindScenarioEmptySlice(t *testing.T) {
	if result := FindScenario(nil, "Any Scenario"); result != nil {
		t.Errorf("Expected nil for nil slice, but got %v", result)
	}
}

func TestFindScenarioReturnsPointer(t *testing.T) {
	results := []forecast.Projection{SampleProjection("Test", datetime.NewPeriod(2025, 1), 1)}

	result := FindScenario(results, "Test")
	if result == nil {
		t.Fatal("Expected to find scenario")
	}
	result.Notes["2099-01"] = []string{"modified"}
	if _, ok := results[0].Notes["2099-01"]; !ok {
		t.Error("Expected modification through the returned pointer to be visible")
	}
}

func TestOutputAt(t *testing.T) {
	projection := SampleProjection("Base", datetime.NewPeriod(2025, 11), 3)

	out, ok := OutputAt(&projection, "2026-01")
	if !ok {
		t.Fatal("Expected an output for 2026-01")
	}
	if out.MonthIndex != 2 {
		t.Errorf("MonthIndex = %d, expected 2", out.MonthIndex)
	}
	if _, ok := OutputAt(&projection, "2026-02"); ok {
		t.Error("Expected no output past the horizon")
	}
	if _, ok := OutputAt(nil, "2025-11"); ok {
		t.Error("Expected no output for a nil projection")
	}
}

func TestSampleProjectionCashIsRunningSum(t *testing.T) {
	projection := SampleProjection("Base", datetime.NewPeriod(2025, 1), 12)

	sum := decimal.Zero
	for i, out := range projection.Outputs {
		sum = sum.Add(out.NetCashFlow)
		if !out.CumulativeCash.Equal(sum) {
			t.Fatalf("month %d: cumulative cash %s, expected %s", i, out.CumulativeCash, sum)
		}
	}
	// (500·1 − 200)·0.75
	if first := projection.Outputs[0]; !first.NetIncome.Equal(decimal.NewFromInt(225)) {
		t.Errorf("first net income = %s, expected 225", first.NetIncome)
	}
}
