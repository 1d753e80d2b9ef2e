package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/jvacosta/dailyfish-backend/pkg/enums"
)

// ComputeStatus derives the listing status from remaining stock. Out of stock
// wins over low stock when the thresholds overlap.
func ComputeStatus(stockKg, lowStockThreshold decimal.Decimal) enums.ProductStatus {
	if stockKg.LessThanOrEqual(decimal.Zero) {
		return enums.ProductStatusOutOfStock
	}
	if stockKg.LessThanOrEqual(lowStockThreshold) {
		return enums.ProductStatusLowStock
	}
	return enums.ProductStatusActive
}

// IsAvailable reports whether any quantity can still be sold.
func IsAvailable(stockKg decimal.Decimal) bool {
	return stockKg.GreaterThan(decimal.Zero)
}
