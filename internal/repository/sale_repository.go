package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"glasses-inventory/internal/domain"

	"github.com/google/uuid"
)

const saleColumns = `s.id, s.product_id, s.sale_date, s.quantity, s.unit_price, s.total_price,
		s.customer_name, s.notes, s.created_at`

// saleWithProductFrom selects sales joined to the product summary
const saleWithProductFrom = `
		SELECT ` + saleColumns + `, p.id, p.model_name, p.brand
		FROM sales s
		JOIN products p ON p.id = s.product_id
`

// SaleRepository defines read access to the sale ledger. Sales are written
// only through InventoryRepository so that stock moves with them.
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Sale, int, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Sale, error)
	Recent(ctx context.Context, limit int) ([]*domain.Sale, error)
}

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository creates a new instance of SaleRepository
func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{db: db}
}

func scanSale(row scanner, sale *domain.Sale, extra ...any) error {
	dest := []any{
		&sale.ID,
		&sale.ProductID,
		&sale.SaleDate,
		&sale.Quantity,
		&sale.UnitPrice,
		&sale.TotalPrice,
		&sale.CustomerName,
		&sale.Notes,
		&sale.CreatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func scanSaleWithProduct(row scanner) (*domain.Sale, error) {
	sale := &domain.Sale{Product: &domain.ProductSummary{}}
	err := scanSale(row, sale, &sale.Product.ID, &sale.Product.ModelName, &sale.Product.Brand)
	return sale, err
}

// FindByID retrieves a sale with its product summary
func (r *saleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	query := saleWithProductFrom + ` WHERE s.id = $1`

	sale, err := scanSaleWithProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to find sale by ID: %w", err)
	}

	return sale, nil
}

// List retrieves sales newest first with pagination
func (r *saleRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Sale, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sales: %w", err)
	}

	query := saleWithProductFrom + `
		ORDER BY s.sale_date DESC, s.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, pageSize, pageOffset(page, pageSize))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales, err := scanSalesWithProduct(rows)
	if err != nil {
		return nil, 0, err
	}

	return sales, total, nil
}

// ListByProduct returns every sale of a product, newest first
func (r *saleRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Sale, error) {
	query := saleWithProductFrom + `
		WHERE s.product_id = $1
		ORDER BY s.sale_date DESC, s.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product sales: %w", err)
	}
	defer rows.Close()

	return scanSalesWithProduct(rows)
}

// Recent returns the latest sales by sale date
func (r *saleRepository) Recent(ctx context.Context, limit int) ([]*domain.Sale, error) {
	query := saleWithProductFrom + `
		ORDER BY s.sale_date DESC, s.created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent sales: %w", err)
	}
	defer rows.Close()

	return scanSalesWithProduct(rows)
}

func scanSalesWithProduct(rows *sql.Rows) ([]*domain.Sale, error) {
	sales := []*domain.Sale{}
	for rows.Next() {
		sale, err := scanSaleWithProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	return sales, nil
}
