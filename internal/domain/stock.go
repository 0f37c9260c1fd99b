package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// MaxStockQuantity is the largest stock or quantity an INTEGER column holds
const MaxStockQuantity = math.MaxInt32

// MaxSaleTotal is the largest total a NUMERIC(10,2) column holds
var MaxSaleTotal = decimal.RequireFromString("99999999.99")

// IsLowStock classifies a stock level against its threshold. The boundary
// (stock == threshold) counts as low.
func IsLowStock(stockQuantity, lowStockThreshold int) bool {
	return stockQuantity <= lowStockThreshold
}

// ApplyStockDelta is the single transition for product stock. A negative delta
// debits stock and fails with *InsufficientStockError when it would drive stock
// below zero. A positive delta fails with a quantity *ValidationError when the
// result would exceed MaxStockQuantity. Stock is unchanged on failure.
func ApplyStockDelta(current, delta int) (int, error) {
	if delta > 0 {
		if current > MaxStockQuantity-delta {
			return current, NewValidationError("quantity",
				fmt.Sprintf("stock cannot exceed %d units", MaxStockQuantity))
		}
		return current + delta, nil
	}

	if current+delta < 0 {
		return current, &InsufficientStockError{Available: current, Requested: -delta}
	}
	return current + delta, nil
}
