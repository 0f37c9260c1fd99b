package service

import (
	"context"
	"fmt"
	"time"

	"glasses-inventory/internal/domain"
	"glasses-inventory/internal/repository"

	"golang.org/x/sync/errgroup"
)

const (
	TrailingMonths        = 12
	TopSellingLimit       = 10
	DashboardListLimit    = 5
	RecentSalesPerProduct = 3
)

// ReportService defines the read-only reporting views
type ReportService interface {
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
	MonthlyReport(ctx context.Context) (*domain.MonthlyReport, error)
	LowStockReport(ctx context.Context) ([]*domain.LowStockItem, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
	saleRepo   repository.SaleRepository
	clock      Clock
}

// NewReportService creates a new instance of ReportService
func NewReportService(reportRepo repository.ReportRepository, saleRepo repository.SaleRepository, clock Clock) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		saleRepo:   saleRepo,
		clock:      clock,
	}
}

// Dashboard runs the independent dashboard queries concurrently
func (s *reportService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	today := storeDate(s.clock.Today())
	monthStart, nextMonth := domain.MonthBounds(today)

	var (
		metrics       *domain.DashboardMetrics
		todays        domain.SalesTotals
		thisMonth     domain.SalesTotals
		recentSales   []*domain.Sale
		criticalStock []*domain.Product
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		metrics, err = s.reportRepo.InventoryTotals(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		todays, err = s.reportRepo.SalesTotals(gctx, today, today.AddDate(0, 0, 1))
		return err
	})
	g.Go(func() error {
		var err error
		thisMonth, err = s.reportRepo.SalesTotals(gctx, monthStart, nextMonth)
		return err
	})
	g.Go(func() error {
		var err error
		recentSales, err = s.saleRepo.Recent(gctx, DashboardListLimit)
		return err
	})
	g.Go(func() error {
		var err error
		criticalStock, err = s.reportRepo.LowStockProducts(gctx, DashboardListLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	metrics.TodaysSales = todays
	metrics.ThisMonthSales = thisMonth

	return &domain.Dashboard{
		Metrics:       *metrics,
		RecentSales:   nonNil(recentSales),
		CriticalStock: nonNil(criticalStock),
	}, nil
}

// MonthlyReport covers the trailing twelve months plus current-month detail
func (s *reportService) MonthlyReport(ctx context.Context) (*domain.MonthlyReport, error) {
	today := storeDate(s.clock.Today())
	monthStart, nextMonth := domain.MonthBounds(today)

	months, err := s.reportRepo.MonthlySales(ctx, domain.TrailingWindowStart(today, TrailingMonths))
	if err != nil {
		return nil, fmt.Errorf("failed to build monthly report: %w", err)
	}

	top, err := s.reportRepo.TopProducts(ctx, monthStart, nextMonth, TopSellingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to build monthly report: %w", err)
	}

	stats, err := s.reportRepo.MonthStats(ctx, monthStart, nextMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to build monthly report: %w", err)
	}

	return &domain.MonthlyReport{
		MonthlySales:        nonNil(months),
		TopSellingThisMonth: nonNil(top),
		CurrentMonthStats:   stats,
		CurrentMonth:        domain.MonthLabel(today.Year(), int(today.Month())),
	}, nil
}

// LowStockReport lists low-stock products, lowest first, each with its
// latest sales
func (s *reportService) LowStockReport(ctx context.Context) ([]*domain.LowStockItem, error) {
	products, err := s.reportRepo.LowStockProducts(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to build low stock report: %w", err)
	}

	recent, err := s.reportRepo.RecentSalesOfLowStock(ctx, RecentSalesPerProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to build low stock report: %w", err)
	}

	items := make([]*domain.LowStockItem, 0, len(products))
	for _, p := range products {
		items = append(items, &domain.LowStockItem{
			Product:     *p,
			RecentSales: nonNil(recent[p.ID]),
		})
	}

	return items, nil
}

// storeDate re-anchors a store-local date at UTC midnight, which is how DATE
// columns are written and read
func storeDate(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
