package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"glasses-inventory/internal/domain"

	"github.com/google/uuid"
)

const productColumns = `id, model_name, brand, purchase_price, selling_price, stock_quantity,
		low_stock_threshold, description, frame_type, frame_material, lens_type, created_at, updated_at`

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.ProductListItem, int, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.ProductListItem, int, error)
	ListAvailable(ctx context.Context) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func scanProduct(row scanner, product *domain.Product, extra ...any) error {
	dest := []any{
		&product.ID,
		&product.ModelName,
		&product.Brand,
		&product.PurchasePrice,
		&product.SellingPrice,
		&product.StockQuantity,
		&product.LowStockThreshold,
		&product.Description,
		&product.FrameType,
		&product.FrameMaterial,
		&product.LensType,
		&product.CreatedAt,
		&product.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, model_name, brand, purchase_price, selling_price, stock_quantity,
			low_stock_threshold, description, frame_type, frame_material, lens_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.ModelName,
		product.Brand,
		product.PurchasePrice,
		product.SellingPrice,
		product.StockQuantity,
		product.LowStockThreshold,
		product.Description,
		product.FrameType,
		product.FrameMaterial,
		product.LensType,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		if pgErrorCode(err) == pgNumericOutOfRange {
			return domain.NewValidationError("stock_quantity", "value is out of range")
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update overwrites the editable attributes of a product, stock included.
// Direct stock edits are how restocking from the catalog form is recorded.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET model_name = $2, brand = $3, purchase_price = $4, selling_price = $5,
		    stock_quantity = $6, low_stock_threshold = $7, description = $8,
		    frame_type = $9, frame_material = $10, lens_type = $11
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.ID,
		product.ModelName,
		product.Brand,
		product.PurchasePrice,
		product.SellingPrice,
		product.StockQuantity,
		product.LowStockThreshold,
		product.Description,
		product.FrameType,
		product.FrameMaterial,
		product.LensType,
	).Scan(&product.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		switch pgErrorCode(err) {
		case pgCheckViolation:
			return domain.NewValidationError("stock_quantity", "stock quantity cannot be negative")
		case pgNumericOutOfRange:
			return domain.NewValidationError("stock_quantity", "value is out of range")
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Delete removes a product that has no sale history. Products with sales are
// kept and domain.ErrProductHasSales is returned.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM products
		WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM sales WHERE product_id = $1)
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return domain.ErrProductHasSales
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrProductHasSales
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return findProduct(ctx, r.db, id, false)
}

func findProduct(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	product := &domain.Product{}
	if err := scanProduct(q.QueryRowContext(ctx, query, id), product); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves products with pagination and sorting, each with its sales count
func (r *productRepository) List(ctx context.Context, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.ProductListItem, int, error) {
	// Validate sort field to prevent SQL injection
	validSortFields := map[string]bool{
		"model_name":     true,
		"brand":          true,
		"selling_price":  true,
		"stock_quantity": true,
		"created_at":     true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s,
			(SELECT COUNT(*) FROM sales s WHERE s.product_id = products.id) AS sales_count
		FROM products
		ORDER BY %s %s, id
		LIMIT $1 OFFSET $2
	`, productColumns, sortBy, sortOrder)

	rows, err := r.db.QueryContext(ctx, query, pageSize, pageOffset(page, pageSize))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	items, err := scanProductListItems(rows)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// Search matches model name or brand case-insensitively with pagination
func (r *productRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.ProductListItem, int, error) {
	if strings.TrimSpace(query) == "" {
		return r.List(ctx, page, pageSize, "created_at", SortOrderDesc)
	}

	searchPattern := "%" + strings.TrimSpace(query) + "%"

	var total int
	countQuery := `SELECT COUNT(*) FROM products WHERE model_name ILIKE $1 OR brand ILIKE $1`
	if err := r.db.QueryRowContext(ctx, countQuery, searchPattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	searchQuery := `
		SELECT ` + productColumns + `,
			(SELECT COUNT(*) FROM sales s WHERE s.product_id = products.id) AS sales_count
		FROM products
		WHERE model_name ILIKE $1 OR brand ILIKE $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, searchQuery, searchPattern, pageSize, pageOffset(page, pageSize))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	items, err := scanProductListItems(rows)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// ListAvailable returns sellable products ordered by brand and model name
func (r *productRepository) ListAvailable(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE stock_quantity > 0
		ORDER BY brand ASC, model_name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list available products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		if err := scanProduct(rows, product); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func scanProductListItems(rows *sql.Rows) ([]*domain.ProductListItem, error) {
	items := []*domain.ProductListItem{}
	for rows.Next() {
		item := &domain.ProductListItem{}
		if err := scanProduct(rows, &item.Product, &item.SalesCount); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return items, nil
}
