package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"glasses-inventory/internal/domain"
	"glasses-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	MaxNameLength    = 255
	MaxThreshold     = 100
	MinThreshold     = 1
	defaultSortField = "created_at"
)

// ProductInput holds the editable attributes of a product
type ProductInput struct {
	ModelName         string
	Brand             string
	PurchasePrice     decimal.Decimal
	SellingPrice      decimal.Decimal
	StockQuantity     int
	LowStockThreshold *int
	Description       *string
	FrameType         *string
	FrameMaterial     *string
	LensType          *string
}

// CatalogService defines the product catalog operations
type CatalogService interface {
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.ProductDetail, error)
	ListProducts(ctx context.Context, page int) (*Page[*domain.ProductListItem], error)
	SearchProducts(ctx context.Context, query string, page int) (*Page[*domain.ProductListItem], error)
	ListAvailableProducts(ctx context.Context) ([]*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	productRepo      repository.ProductRepository
	saleRepo         repository.SaleRepository
	logger           *zap.Logger
	clock            Clock
	defaultThreshold int
	pageSize         int
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	logger *zap.Logger,
	clock Clock,
	defaultThreshold int,
	pageSize int,
) CatalogService {
	if defaultThreshold < MinThreshold || defaultThreshold > MaxThreshold {
		defaultThreshold = 10
	}
	if pageSize <= 0 {
		pageSize = DefaultProductsPageSize
	}
	return &catalogService{
		productRepo:      productRepo,
		saleRepo:         saleRepo,
		logger:           logger,
		clock:            clock,
		defaultThreshold: defaultThreshold,
		pageSize:         pageSize,
	}
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	product := &domain.Product{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.applyInput(product, input)

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("brand", product.Brand),
		zap.String("model_name", product.ModelName),
		zap.Int("stock_quantity", product.StockQuantity),
	)

	return product, nil
}

// UpdateProduct overwrites a product. Stock edits made here are direct restocks.
func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previousStock := product.StockQuantity
	s.applyInput(product, input)

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	if product.StockQuantity != previousStock {
		s.logger.Info("Product stock edited",
			zap.String("product_id", product.ID.String()),
			zap.Int("stock_before", previousStock),
			zap.Int("stock_after", product.StockQuantity),
		)
	}

	return product, nil
}

// GetProduct returns a product with its sales, newest first
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.ProductDetail, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sales, err := s.saleRepo.ListByProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list product sales: %w", err)
	}

	return &domain.ProductDetail{Product: *product, Sales: sales}, nil
}

// ListProducts returns a page of the catalog, newest first
func (s *catalogService) ListProducts(ctx context.Context, page int) (*Page[*domain.ProductListItem], error) {
	page = normalizePage(page)

	items, total, err := s.productRepo.List(ctx, page, s.pageSize, defaultSortField, repository.SortOrderDesc)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return NewPage(items, page, s.pageSize, total), nil
}

// SearchProducts matches query against brand and model name. A blank query
// lists the whole catalog.
func (s *catalogService) SearchProducts(ctx context.Context, query string, page int) (*Page[*domain.ProductListItem], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListProducts(ctx, page)
	}
	page = normalizePage(page)

	items, total, err := s.productRepo.Search(ctx, query, page, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	return NewPage(items, page, s.pageSize, total), nil
}

// ListAvailableProducts lists products that can still be sold
func (s *catalogService) ListAvailableProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.productRepo.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list available products: %w", err)
	}
	return products, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrProductHasSales) {
			s.logger.Info("Product deletion blocked by sale history", zap.String("product_id", id.String()))
		}
		return err
	}

	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

func (s *catalogService) applyInput(product *domain.Product, input ProductInput) {
	product.ModelName = strings.TrimSpace(input.ModelName)
	product.Brand = strings.TrimSpace(input.Brand)
	product.PurchasePrice = input.PurchasePrice.Round(domain.CurrencyPlaces)
	product.SellingPrice = input.SellingPrice.Round(domain.CurrencyPlaces)
	product.StockQuantity = input.StockQuantity
	product.LowStockThreshold = s.defaultThreshold
	if input.LowStockThreshold != nil {
		product.LowStockThreshold = *input.LowStockThreshold
	}
	product.Description = trimOptional(input.Description)
	product.FrameType = trimOptional(input.FrameType)
	product.FrameMaterial = trimOptional(input.FrameMaterial)
	product.LensType = trimOptional(input.LensType)
}

func validateProductInput(input ProductInput) error {
	if err := validateName("model_name", input.ModelName); err != nil {
		return err
	}
	if err := validateName("brand", input.Brand); err != nil {
		return err
	}
	if err := validatePrice("purchase_price", input.PurchasePrice); err != nil {
		return err
	}
	if err := validatePrice("selling_price", input.SellingPrice); err != nil {
		return err
	}
	if input.StockQuantity < 0 {
		return domain.NewValidationError("stock_quantity", "stock quantity cannot be negative")
	}
	if input.StockQuantity > domain.MaxStockQuantity {
		return domain.NewValidationError("stock_quantity", fmt.Sprintf("stock quantity cannot exceed %d", domain.MaxStockQuantity))
	}
	if t := input.LowStockThreshold; t != nil && (*t < MinThreshold || *t > MaxThreshold) {
		return domain.NewValidationError("low_stock_threshold",
			fmt.Sprintf("low stock threshold must be between %d and %d", MinThreshold, MaxThreshold))
	}

	for field, value := range map[string]*string{
		"frame_type":     input.FrameType,
		"frame_material": input.FrameMaterial,
		"lens_type":      input.LensType,
	} {
		if value != nil && utf8.RuneCountInString(*value) > MaxNameLength {
			return domain.NewValidationError(field, fmt.Sprintf("cannot exceed %d characters", MaxNameLength))
		}
	}

	return nil
}

func validateName(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.NewValidationError(field, "this field is required")
	}
	if utf8.RuneCountInString(value) > MaxNameLength {
		return domain.NewValidationError(field, fmt.Sprintf("cannot exceed %d characters", MaxNameLength))
	}
	return nil
}

func validatePrice(field string, price decimal.Decimal) error {
	if price.IsNegative() {
		return domain.NewValidationError(field, "price cannot be negative")
	}
	if price.GreaterThan(MaxPrice) {
		return domain.NewValidationError(field, "price cannot exceed "+MaxPrice.StringFixed(2))
	}
	return nil
}
