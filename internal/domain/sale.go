package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimal places stored for money columns
const CurrencyPlaces = 2

// Sale is a recorded transaction that debited a product's stock
type Sale struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	ProductID    uuid.UUID       `json:"product_id" db:"product_id"`
	SaleDate     time.Time       `json:"sale_date" db:"sale_date"`
	Quantity     int             `json:"quantity" db:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price" db:"total_price"`
	CustomerName *string         `json:"customer_name,omitempty" db:"customer_name"`
	Notes        *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`

	// Product is populated by listing queries only
	Product *ProductSummary `json:"product,omitempty" db:"-"`
}

// SaleTotal computes quantity * unitPrice at currency precision
func SaleTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(CurrencyPlaces)
}

// DateOf truncates t to midnight in loc
func DateOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
