package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"glasses-inventory/internal/domain"
	"glasses-inventory/internal/metrics"
	"glasses-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	MaxCustomerNameLength = 255
	MaxNotesLength        = 1000
)

// MaxPrice is the largest unit price a NUMERIC(8,2) column can hold
var MaxPrice = decimal.RequireFromString("9999.99")

// RecordSaleInput carries a sale as entered at the counter
type RecordSaleInput struct {
	ProductID    uuid.UUID
	Quantity     int
	UnitPrice    decimal.Decimal
	SaleDate     time.Time
	CustomerName *string
	Notes        *string
}

// InventoryService defines the stock accounting operations
type InventoryService interface {
	RecordSale(ctx context.Context, input RecordSaleInput) (*domain.Sale, error)
	DeleteSale(ctx context.Context, saleID uuid.UUID) error
	ReduceStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error)
	RestockProduct(ctx context.Context, productID uuid.UUID, quantity int) (*domain.Product, error)
	GetSale(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error)
	ListSales(ctx context.Context, page int) (*Page[*domain.Sale], error)
}

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	saleRepo      repository.SaleRepository
	metrics       *metrics.InventoryMetrics
	logger        *zap.Logger
	clock         Clock
	salesPageSize int
}

// NewInventoryService creates a new instance of InventoryService
func NewInventoryService(
	inventoryRepo repository.InventoryRepository,
	saleRepo repository.SaleRepository,
	m *metrics.InventoryMetrics,
	logger *zap.Logger,
	clock Clock,
	salesPageSize int,
) InventoryService {
	if salesPageSize <= 0 {
		salesPageSize = DefaultSalesPageSize
	}
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		saleRepo:      saleRepo,
		metrics:       m,
		logger:        logger,
		clock:         clock,
		salesPageSize: salesPageSize,
	}
}

// RecordSale validates the input, prices the sale and debits stock in one step
func (s *inventoryService) RecordSale(ctx context.Context, input RecordSaleInput) (*domain.Sale, error) {
	today := s.clock.Today()

	if err := validateSaleInput(input, today); err != nil {
		s.metrics.SaleRejected(metrics.ReasonValidation)
		return nil, err
	}

	saleDate := time.Date(input.SaleDate.Year(), input.SaleDate.Month(), input.SaleDate.Day(), 0, 0, 0, 0, time.UTC)

	sale := &domain.Sale{
		ID:           uuid.New(),
		ProductID:    input.ProductID,
		SaleDate:     saleDate,
		Quantity:     input.Quantity,
		UnitPrice:    input.UnitPrice.Round(domain.CurrencyPlaces),
		CustomerName: trimOptional(input.CustomerName),
		Notes:        trimOptional(input.Notes),
		CreatedAt:    s.clock.Now().UTC(),
	}
	sale.TotalPrice = domain.SaleTotal(sale.Quantity, sale.UnitPrice)

	product, err := s.inventoryRepo.RecordSale(ctx, sale)
	if err != nil {
		s.metrics.SaleRejected(rejectionReason(err))

		var serr *domain.InsufficientStockError
		if errors.As(err, &serr) {
			s.logger.Info("Sale rejected, insufficient stock",
				zap.String("product_id", input.ProductID.String()),
				zap.Int("available", serr.Available),
				zap.Int("requested", serr.Requested),
			)
			return nil, serr.AsValidationError()
		}
		return nil, err
	}

	sale.Product = &domain.ProductSummary{ID: product.ID, ModelName: product.ModelName, Brand: product.Brand}
	s.metrics.SaleRecorded(sale.Quantity)

	s.logger.Info("Sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("product_id", product.ID.String()),
		zap.Int("quantity", sale.Quantity),
		zap.String("total_price", sale.TotalPrice.StringFixed(domain.CurrencyPlaces)),
		zap.Int("stock_after", product.StockQuantity),
	)

	if product.IsLowStock() {
		s.logger.Warn("Product reached low stock",
			zap.String("product_id", product.ID.String()),
			zap.Int("stock_quantity", product.StockQuantity),
			zap.Int("low_stock_threshold", product.LowStockThreshold),
		)
	}

	return sale, nil
}

// DeleteSale removes a sale and credits its quantity back to the product
func (s *inventoryService) DeleteSale(ctx context.Context, saleID uuid.UUID) error {
	sale, product, err := s.inventoryRepo.DeleteSale(ctx, saleID)
	if err != nil {
		return err
	}

	s.metrics.SaleDeleted(sale.Quantity)

	s.logger.Info("Sale deleted, stock restored",
		zap.String("sale_id", sale.ID.String()),
		zap.String("product_id", product.ID.String()),
		zap.Int("quantity", sale.Quantity),
		zap.Int("stock_after", product.StockQuantity),
	)

	return nil
}

// ReduceStock debits stock only when enough is available
func (s *inventoryService) ReduceStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	if err := validateQuantity(quantity); err != nil {
		return false, err
	}
	return s.inventoryRepo.ReduceStock(ctx, productID, quantity)
}

// RestockProduct credits received units to the product
func (s *inventoryService) RestockProduct(ctx context.Context, productID uuid.UUID, quantity int) (*domain.Product, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	product, err := s.inventoryRepo.Restock(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}

	s.metrics.Restocked(quantity)

	s.logger.Info("Product restocked",
		zap.String("product_id", product.ID.String()),
		zap.Int("quantity", quantity),
		zap.Int("stock_after", product.StockQuantity),
	)

	return product, nil
}

func (s *inventoryService) GetSale(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	return sale, nil
}

// ListSales returns a page of sales, newest first
func (s *inventoryService) ListSales(ctx context.Context, page int) (*Page[*domain.Sale], error) {
	page = normalizePage(page)

	sales, total, err := s.saleRepo.List(ctx, page, s.salesPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}

	return NewPage(sales, page, s.salesPageSize, total), nil
}

func validateSaleInput(input RecordSaleInput, today time.Time) error {
	if input.ProductID == uuid.Nil {
		return domain.NewValidationError("product_id", "product is required")
	}
	if err := validateQuantity(input.Quantity); err != nil {
		return err
	}
	if input.UnitPrice.IsNegative() {
		return domain.NewValidationError("unit_price", "unit price cannot be negative")
	}
	if input.UnitPrice.GreaterThan(MaxPrice) {
		return domain.NewValidationError("unit_price", "unit price cannot exceed "+MaxPrice.StringFixed(2))
	}
	if domain.SaleTotal(input.Quantity, input.UnitPrice).GreaterThan(domain.MaxSaleTotal) {
		return domain.NewValidationError("total_price", "sale total cannot exceed "+domain.MaxSaleTotal.StringFixed(2))
	}
	if input.SaleDate.IsZero() {
		return domain.NewValidationError("sale_date", "sale date is required")
	}

	saleDay := time.Date(input.SaleDate.Year(), input.SaleDate.Month(), input.SaleDate.Day(), 0, 0, 0, 0, today.Location())
	if saleDay.After(today) {
		return domain.NewValidationError("sale_date", "sale date cannot be in the future")
	}

	if input.CustomerName != nil && utf8.RuneCountInString(*input.CustomerName) > MaxCustomerNameLength {
		return domain.NewValidationError("customer_name", fmt.Sprintf("customer name cannot exceed %d characters", MaxCustomerNameLength))
	}
	if input.Notes != nil && utf8.RuneCountInString(*input.Notes) > MaxNotesLength {
		return domain.NewValidationError("notes", fmt.Sprintf("notes cannot exceed %d characters", MaxNotesLength))
	}

	return nil
}

func validateQuantity(quantity int) error {
	if quantity <= 0 {
		return domain.NewValidationError("quantity", "quantity must be at least 1")
	}
	if quantity > domain.MaxStockQuantity {
		return domain.NewValidationError("quantity", fmt.Sprintf("quantity cannot exceed %d", domain.MaxStockQuantity))
	}
	return nil
}

func rejectionReason(err error) string {
	var serr *domain.InsufficientStockError
	switch {
	case errors.As(err, &serr):
		return metrics.ReasonInsufficientStock
	case errors.Is(err, domain.ErrNotFound):
		return metrics.ReasonNotFound
	case errors.Is(err, domain.ErrConflict):
		return metrics.ReasonConflict
	case domain.IsValidation(err):
		return metrics.ReasonValidation
	default:
		return "error"
	}
}

// trimOptional drops blank optional text
func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
