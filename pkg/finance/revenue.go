package finance

import (
	"github.com/iwvelando/bizplan-forecast/pkg/datetime"
	"github.com/iwvelando/bizplan-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Product is a sellable product or service.
type Product struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	UnitCost  decimal.Decimal
	// Seasonality holds one multiplier per calendar month, January first.
	// Anything other than 12 values means no seasonality.
	Seasonality []decimal.Decimal
}

// SeasonalityFactor returns the multiplier for a calendar month (1-12),
// defaulting to 1.
func (p Product) SeasonalityFactor(month int) decimal.Decimal {
	if len(p.Seasonality) != 12 || month < 1 || month > 12 {
		return mathutil.One
	}
	return p.Seasonality[month-1]
}

// SalesProjection is a planned sales volume of one product in one month.
type SalesProjection struct {
	ProductID string
	Period    datetime.Period
	Volume    decimal.Decimal
}

// Catalog indexes products by ID.
type Catalog map[string]Product

// NewCatalog builds a catalog; later duplicates of an ID replace earlier ones.
func NewCatalog(products []Product) Catalog {
	catalog := make(Catalog, len(products))
	for _, product := range products {
		catalog[product.ID] = product
	}
	return catalog
}

// Lookup returns the product with the given ID, if any.
func (c Catalog) Lookup(id string) (Product, bool) {
	product, ok := c[id]
	return product, ok
}

// RevenueCalculator aggregates sales projections into revenue and cost of
// goods sold.
type RevenueCalculator struct {
	logger *zap.Logger
}

// NewRevenueCalculator creates a revenue calculator with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewRevenueCalculator(logger *zap.Logger) *RevenueCalculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RevenueCalculator{logger: logger}
}

// Compute returns revenue and COGS for the period. Projections referencing an
// unknown product contribute nothing.
func (rc *RevenueCalculator) Compute(catalog Catalog, projections []SalesProjection, period datetime.Period) (decimal.Decimal, decimal.Decimal) {
	revenue := decimal.Zero
	cogs := decimal.Zero

	for _, projection := range projections {
		if !projection.Period.Equal(period) {
			continue
		}

		product, ok := catalog.Lookup(projection.ProductID)
		if !ok {
			rc.logger.Debug("sales projection references unknown product",
				zap.String("op", "finance.RevenueCalculator.Compute"),
				zap.String("product", projection.ProductID),
				zap.String("date", period.String()),
			)
			continue
		}

		units := projection.Volume.Mul(product.SeasonalityFactor(period.Month))
		revenue = revenue.Add(mathutil.NonNegative(units.Mul(product.UnitPrice)))
		cogs = cogs.Add(mathutil.NonNegative(units.Mul(product.UnitCost)))
	}

	return revenue, cogs
}
