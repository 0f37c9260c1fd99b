package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"glasses-inventory/internal/domain"

	"github.com/google/uuid"
)

// InventoryRepository owns every write that moves product stock. Each method
// runs in a single transaction holding the product row lock, so the
// read-check-write sequence is serialized per product.
type InventoryRepository interface {
	// RecordSale debits the product and inserts the sale. It returns the
	// product as it is after the debit.
	RecordSale(ctx context.Context, sale *domain.Sale) (*domain.Product, error)

	// DeleteSale credits the sale quantity back and removes the sale.
	DeleteSale(ctx context.Context, saleID uuid.UUID) (*domain.Sale, *domain.Product, error)

	// ReduceStock debits quantity only when enough stock is available.
	// It returns false without mutating anything otherwise.
	ReduceStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error)

	// Restock credits quantity to the product.
	Restock(ctx context.Context, productID uuid.UUID, quantity int) (*domain.Product, error)
}

type inventoryRepository struct {
	db *sql.DB
}

// NewInventoryRepository creates a new instance of InventoryRepository
func NewInventoryRepository(db *sql.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) RecordSale(ctx context.Context, sale *domain.Sale) (*domain.Product, error) {
	var product *domain.Product

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		locked, err := findProduct(ctx, tx, sale.ProductID, true)
		if err != nil {
			return err
		}

		next, err := domain.ApplyStockDelta(locked.StockQuantity, -sale.Quantity)
		if err != nil {
			return err
		}

		product, err = setStock(ctx, tx, sale.ProductID, locked.StockQuantity, next)
		if err != nil {
			return err
		}

		return insertSale(ctx, tx, sale)
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (r *inventoryRepository) DeleteSale(ctx context.Context, saleID uuid.UUID) (*domain.Sale, *domain.Product, error) {
	var (
		sale    *domain.Sale
		product *domain.Product
	)

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `SELECT ` + saleColumns + ` FROM sales s WHERE s.id = $1 FOR UPDATE`

		sale = &domain.Sale{}
		if err := scanSale(tx.QueryRowContext(ctx, query, saleID), sale); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSaleNotFound
			}
			return fmt.Errorf("failed to lock sale: %w", err)
		}

		var err error
		product, err = adjustStock(ctx, tx, sale.ProductID, sale.Quantity)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, saleID); err != nil {
			return fmt.Errorf("failed to delete sale: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return sale, product, nil
}

func (r *inventoryRepository) ReduceStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	ok, err := reduceStock(ctx, r.db, productID, quantity)
	if err != nil || ok {
		return ok, err
	}

	// Distinguish "not enough stock" from "no such product"
	if _, err := findProduct(ctx, r.db, productID, false); err != nil {
		return false, err
	}
	return false, nil
}

func (r *inventoryRepository) Restock(ctx context.Context, productID uuid.UUID, quantity int) (*domain.Product, error) {
	var product *domain.Product

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		product, err = adjustStock(ctx, tx, productID, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

// reduceStock is an atomic conditional decrement
func reduceStock(ctx context.Context, q querier, productID uuid.UUID, quantity int) (bool, error) {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $2
		WHERE id = $1 AND stock_quantity >= $2
	`

	result, err := q.ExecContext(ctx, query, productID, quantity)
	if err != nil {
		return false, fmt.Errorf("failed to reduce stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

// adjustStock locks the product row and applies delta through the domain
// transition, returning the updated product.
func adjustStock(ctx context.Context, tx *sql.Tx, productID uuid.UUID, delta int) (*domain.Product, error) {
	product, err := findProduct(ctx, tx, productID, true)
	if err != nil {
		return nil, err
	}

	next, err := domain.ApplyStockDelta(product.StockQuantity, delta)
	if err != nil {
		return nil, err
	}

	return setStock(ctx, tx, productID, product.StockQuantity, next)
}

// setStock writes the stock computed by ApplyStockDelta. The update only
// lands while the row still holds previous; anything else is a conflict.
func setStock(ctx context.Context, tx *sql.Tx, productID uuid.UUID, previous, next int) (*domain.Product, error) {
	query := `
		UPDATE products
		SET stock_quantity = $3
		WHERE id = $1 AND stock_quantity = $2
		RETURNING ` + productColumns

	updated := &domain.Product{}
	if err := scanProduct(tx.QueryRowContext(ctx, query, productID, previous, next), updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	return updated, nil
}

func insertSale(ctx context.Context, tx *sql.Tx, sale *domain.Sale) error {
	query := `
		INSERT INTO sales (id, product_id, sale_date, quantity, unit_price, total_price,
			customer_name, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		sale.ID,
		sale.ProductID,
		sale.SaleDate,
		sale.Quantity,
		sale.UnitPrice,
		sale.TotalPrice,
		sale.CustomerName,
		sale.Notes,
		sale.CreatedAt,
	)

	if err != nil {
		switch pgErrorCode(err) {
		case pgForeignKeyViolation:
			return ErrProductNotFound
		case pgNumericOutOfRange:
			return domain.NewValidationError("total_price", "sale total is out of range")
		}
		return fmt.Errorf("failed to create sale: %w", err)
	}

	return nil
}
