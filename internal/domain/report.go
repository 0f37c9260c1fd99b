package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesTotals is a count and revenue pair over a set of sales
type SalesTotals struct {
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DashboardMetrics are the headline figures shown on the dashboard
type DashboardMetrics struct {
	TotalInventoryValue decimal.Decimal `json:"total_inventory_value"`
	TotalPotentialValue decimal.Decimal `json:"total_potential_value"`
	LowStockCount       int             `json:"low_stock_count"`
	TotalStock          int             `json:"total_stock"`
	TodaysSales         SalesTotals     `json:"todays_sales"`
	ThisMonthSales      SalesTotals     `json:"this_month_sales"`
}

// Dashboard bundles metrics with the recent activity lists
type Dashboard struct {
	Metrics       DashboardMetrics `json:"metrics"`
	RecentSales   []*Sale          `json:"recent_sales"`
	CriticalStock []*Product       `json:"critical_stock"`
}

// MonthlySales is one (year, month) group of the monthly report
type MonthlySales struct {
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	MonthName     string          `json:"month_name"`
	TotalSales    int             `json:"total_sales"`
	TotalQuantity int             `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// TopProduct is a product ranked by units sold in a period
type TopProduct struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ModelName    string          `json:"model_name"`
	Brand        string          `json:"brand"`
	TotalSold    int             `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// MonthStats aggregates the sales of a single calendar month. AverageSale is
// null when the month has no sales.
type MonthStats struct {
	TotalSales    int                 `json:"total_sales"`
	TotalQuantity int                 `json:"total_quantity"`
	TotalRevenue  decimal.Decimal     `json:"total_revenue"`
	AverageSale   decimal.NullDecimal `json:"average_sale"`
}

// MonthlyReport is the monthly sales report
type MonthlyReport struct {
	MonthlySales        []*MonthlySales `json:"monthly_sales"`
	TopSellingThisMonth []*TopProduct   `json:"top_selling_this_month"`
	CurrentMonthStats   MonthStats      `json:"current_month_stats"`
	CurrentMonth        string          `json:"current_month"`
}

// LowStockItem is a low-stock product with its most recent sales
type LowStockItem struct {
	Product
	RecentSales []*Sale `json:"recent_sales"`
}

// MonthLabel formats a year/month pair as "January 2026"
func MonthLabel(year, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

// MonthBounds returns the first day of the month containing day and the first
// day of the following month.
func MonthBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 1, 0)
}

// TrailingWindowStart is the earliest sale date included in the trailing
// monthly report ending on today.
func TrailingWindowStart(today time.Time, months int) time.Time {
	return today.AddDate(0, -months, 0)
}
