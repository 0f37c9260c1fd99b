package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a glasses model tracked in inventory
type Product struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	ModelName         string          `json:"model_name" db:"model_name"`
	Brand             string          `json:"brand" db:"brand"`
	PurchasePrice     decimal.Decimal `json:"purchase_price" db:"purchase_price"`
	SellingPrice      decimal.Decimal `json:"selling_price" db:"selling_price"`
	StockQuantity     int             `json:"stock_quantity" db:"stock_quantity"`
	LowStockThreshold int             `json:"low_stock_threshold" db:"low_stock_threshold"`
	Description       *string         `json:"description,omitempty" db:"description"`
	FrameType         *string         `json:"frame_type,omitempty" db:"frame_type"`
	FrameMaterial     *string         `json:"frame_material,omitempty" db:"frame_material"`
	LensType          *string         `json:"lens_type,omitempty" db:"lens_type"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// IsLowStock reports whether the product is at or below its alert threshold
func (p *Product) IsLowStock() bool {
	return IsLowStock(p.StockQuantity, p.LowStockThreshold)
}

// ProductSummary is the product projection embedded in sale listings
type ProductSummary struct {
	ID        uuid.UUID `json:"id"`
	ModelName string    `json:"model_name"`
	Brand     string    `json:"brand"`
}

// ProductListItem is a catalog row with its sales count
type ProductListItem struct {
	Product
	SalesCount int `json:"sales_count"`
}

// ProductDetail is a product together with its sales, newest first
type ProductDetail struct {
	Product
	Sales []*Sale `json:"sales"`
}
