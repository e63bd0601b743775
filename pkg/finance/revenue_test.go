package finance

import (
	"testing"

	"github.com/iwvelando/bizplan-forecast/pkg/datetime"
	"github.com/iwvelando/bizplan-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func seasonal(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = mathutil.MustParse(v)
	}
	return out
}

func TestRevenueCalculatorCompute(t *testing.T) {
	jan := datetime.MustParsePeriod("2025-01")
	jul := datetime.MustParsePeriod("2025-07")

	catalog := NewCatalog([]Product{
		{ID: "widget", Name: "Widget", UnitPrice: mathutil.MustParse("100"), UnitCost: mathutil.MustParse("60")},
		{
			ID: "ice", Name: "Ice cream", UnitPrice: mathutil.MustParse("5"), UnitCost: mathutil.MustParse("2"),
			Seasonality: seasonal("0.5", "0.5", "0.8", "1", "1.2", "1.5", "2", "2", "1.2", "0.8", "0.5", "0.5"),
		},
		{
			ID: "broken", Name: "Broken seasonality", UnitPrice: mathutil.MustParse("10"), UnitCost: mathutil.MustParse("1"),
			Seasonality: seasonal("3", "3"),
		},
	})

	tests := []struct {
		name        string
		projections []SalesProjection
		period      datetime.Period
		revenue     string
		cogs        string
	}{
		{
			name:        "Single product",
			projections: []SalesProjection{{ProductID: "widget", Period: jan, Volume: mathutil.MustParse("10")}},
			period:      jan,
			revenue:     "1000",
			cogs:        "600",
		},
		{
			name: "Projections for other months ignored",
			projections: []SalesProjection{
				{ProductID: "widget", Period: jan, Volume: mathutil.MustParse("10")},
				{ProductID: "widget", Period: jul, Volume: mathutil.MustParse("99")},
			},
			period:  jan,
			revenue: "1000",
			cogs:    "600",
		},
		{
			name:        "Seasonality applied by calendar month",
			projections: []SalesProjection{{ProductID: "ice", Period: jul, Volume: mathutil.MustParse("100")}},
			period:      jul,
			revenue:     "1000",
			cogs:        "400",
		},
		{
			name:        "Malformed seasonality defaults to one",
			projections: []SalesProjection{{ProductID: "broken", Period: jan, Volume: mathutil.MustParse("4")}},
			period:      jan,
			revenue:     "40",
			cogs:        "4",
		},
		{
			name: "Unknown product contributes nothing",
			projections: []SalesProjection{
				{ProductID: "ghost", Period: jan, Volume: mathutil.MustParse("10")},
				{ProductID: "widget", Period: jan, Volume: mathutil.MustParse("1")},
			},
			period:  jan,
			revenue: "100",
			cogs:    "60",
		},
		{
			name: "Duplicate projections are summed",
			projections: []SalesProjection{
				{ProductID: "widget", Period: jan, Volume: mathutil.MustParse("1")},
				{ProductID: "widget", Period: jan, Volume: mathutil.MustParse("2")},
			},
			period:  jan,
			revenue: "300",
			cogs:    "180",
		},
		{
			name:        "Negative volume clamped",
			projections: []SalesProjection{{ProductID: "widget", Period: jan, Volume: mathutil.MustParse("-5")}},
			period:      jan,
			revenue:     "0",
			cogs:        "0",
		},
	}

	calculator := NewRevenueCalculator(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			revenue, cogs := calculator.Compute(catalog, tt.projections, tt.period)
			if !revenue.Equal(mathutil.MustParse(tt.revenue)) {
				t.Errorf("revenue = %s, expected %s", revenue, tt.revenue)
			}
			if !cogs.Equal(mathutil.MustParse(tt.cogs)) {
				t.Errorf("cogs = %s, expected %s", cogs, tt.cogs)
			}
		})
	}
}

func TestCatalogLookup(t *testing.T) {
	catalog := NewCatalog([]Product{{ID: "a", Name: "A"}})
	if _, ok := catalog.Lookup("a"); !ok {
		t.Errorf("expected product a to be found")
	}
	if _, ok := catalog.Lookup("b"); ok {
		t.Errorf("expected product b to be missing")
	}
}
