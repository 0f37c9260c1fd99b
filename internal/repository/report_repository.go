package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"glasses-inventory/internal/domain"

	"github.com/google/uuid"
)

// ReportRepository provides the read-only aggregations behind the reports.
// Date ranges are half-open: from <= sale_date < to.
type ReportRepository interface {
	InventoryTotals(ctx context.Context) (*domain.DashboardMetrics, error)
	SalesTotals(ctx context.Context, from, to time.Time) (domain.SalesTotals, error)
	MonthlySales(ctx context.Context, since time.Time) ([]*domain.MonthlySales, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]*domain.TopProduct, error)
	MonthStats(ctx context.Context, from, to time.Time) (domain.MonthStats, error)
	LowStockProducts(ctx context.Context, limit int) ([]*domain.Product, error)
	RecentSalesOfLowStock(ctx context.Context, perProduct int) (map[uuid.UUID][]*domain.Sale, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

// InventoryTotals fills the stock-derived fields of the dashboard metrics
func (r *reportRepository) InventoryTotals(ctx context.Context) (*domain.DashboardMetrics, error) {
	query := `
		SELECT
			COALESCE(SUM(stock_quantity * purchase_price), 0),
			COALESCE(SUM(stock_quantity * selling_price), 0),
			COUNT(*) FILTER (WHERE stock_quantity <= low_stock_threshold),
			COALESCE(SUM(stock_quantity), 0)
		FROM products
	`

	metrics := &domain.DashboardMetrics{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&metrics.TotalInventoryValue,
		&metrics.TotalPotentialValue,
		&metrics.LowStockCount,
		&metrics.TotalStock,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate inventory: %w", err)
	}

	return metrics, nil
}

func (r *reportRepository) SalesTotals(ctx context.Context, from, to time.Time) (domain.SalesTotals, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(total_price), 0)
		FROM sales
		WHERE sale_date >= $1 AND sale_date < $2
	`

	var totals domain.SalesTotals
	if err := r.db.QueryRowContext(ctx, query, from, to).Scan(&totals.Count, &totals.Revenue); err != nil {
		return totals, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	return totals, nil
}

// MonthlySales groups sales since the given date by calendar month, newest first
func (r *reportRepository) MonthlySales(ctx context.Context, since time.Time) ([]*domain.MonthlySales, error) {
	query := `
		SELECT
			EXTRACT(YEAR FROM sale_date)::int AS year,
			EXTRACT(MONTH FROM sale_date)::int AS month,
			COUNT(*),
			COALESCE(SUM(quantity), 0),
			COALESCE(SUM(total_price), 0)
		FROM sales
		WHERE sale_date >= $1
		GROUP BY year, month
		ORDER BY year DESC, month DESC
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly sales: %w", err)
	}
	defer rows.Close()

	months := []*domain.MonthlySales{}
	for rows.Next() {
		m := &domain.MonthlySales{}
		if err := rows.Scan(&m.Year, &m.Month, &m.TotalSales, &m.TotalQuantity, &m.TotalRevenue); err != nil {
			return nil, fmt.Errorf("failed to scan monthly sales: %w", err)
		}
		m.MonthName = domain.MonthLabel(m.Year, m.Month)
		months = append(months, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly sales: %w", err)
	}

	return months, nil
}

// TopProducts ranks products by units sold within the range
func (r *reportRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]*domain.TopProduct, error) {
	query := `
		SELECT p.id, p.model_name, p.brand, SUM(s.quantity) AS total_sold, SUM(s.total_price) AS total_revenue
		FROM sales s
		JOIN products p ON p.id = s.product_id
		WHERE s.sale_date >= $1 AND s.sale_date < $2
		GROUP BY p.id, p.model_name, p.brand
		ORDER BY total_sold DESC, total_revenue DESC, p.id
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}
	defer rows.Close()

	top := []*domain.TopProduct{}
	for rows.Next() {
		p := &domain.TopProduct{}
		if err := rows.Scan(&p.ProductID, &p.ModelName, &p.Brand, &p.TotalSold, &p.TotalRevenue); err != nil {
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}
		top = append(top, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top products: %w", err)
	}

	return top, nil
}

func (r *reportRepository) MonthStats(ctx context.Context, from, to time.Time) (domain.MonthStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(quantity), 0),
			COALESCE(SUM(total_price), 0),
			ROUND(AVG(total_price), 2)
		FROM sales
		WHERE sale_date >= $1 AND sale_date < $2
	`

	var stats domain.MonthStats
	err := r.db.QueryRowContext(ctx, query, from, to).Scan(
		&stats.TotalSales,
		&stats.TotalQuantity,
		&stats.TotalRevenue,
		&stats.AverageSale,
	)
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate month stats: %w", err)
	}

	return stats, nil
}

// LowStockProducts lists low-stock products, lowest stock first. A limit of
// zero returns all of them.
func (r *reportRepository) LowStockProducts(ctx context.Context, limit int) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE stock_quantity <= low_stock_threshold
		ORDER BY stock_quantity ASC, model_name ASC
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// RecentSalesOfLowStock returns up to perProduct latest sales for every
// low-stock product, keyed by product id.
func (r *reportRepository) RecentSalesOfLowStock(ctx context.Context, perProduct int) (map[uuid.UUID][]*domain.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM (
			SELECT sales.*,
				ROW_NUMBER() OVER (
					PARTITION BY sales.product_id
					ORDER BY sales.sale_date DESC, sales.created_at DESC
				) AS rn
			FROM sales
			JOIN products p ON p.id = sales.product_id
			WHERE p.stock_quantity <= p.low_stock_threshold
		) s
		WHERE s.rn <= $1
		ORDER BY s.product_id, s.rn
	`

	rows, err := r.db.QueryContext(ctx, query, perProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent sales of low stock products: %w", err)
	}
	defer rows.Close()

	byProduct := make(map[uuid.UUID][]*domain.Sale)
	for rows.Next() {
		sale := &domain.Sale{}
		if err := scanSale(rows, sale); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		byProduct[sale.ProductID] = append(byProduct[sale.ProductID], sale)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	return byProduct, nil
}
