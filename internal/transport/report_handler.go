package transport

import (
	"net/http"

	"glasses-inventory/internal/domain"
	"glasses-inventory/internal/middleware"
	"glasses-inventory/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type dashboardResponse struct {
	Metrics       domain.DashboardMetrics `json:"metrics"`
	RecentSales   []saleResponse          `json:"recent_sales"`
	CriticalStock []ProductResponse       `json:"critical_stock"`
}

// ReportHandler handles HTTP requests for the reporting views
type ReportHandler struct {
	reportService service.ReportService
	logger        *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// RegisterRoutes registers the dashboard and report routes
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Dashboard)
	r.Route("/reports", func(r chi.Router) {
		r.Get("/monthly-sales", h.MonthlySales)
		r.Get("/low-stock", h.LowStock)
	})
}

// Dashboard handles the headline metrics
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.reportService.Dashboard(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	critical := make([]ProductResponse, 0, len(dashboard.CriticalStock))
	for _, p := range dashboard.CriticalStock {
		critical = append(critical, newProductResponse(p))
	}

	middleware.RespondWithJSON(w, http.StatusOK, dashboardResponse{
		Metrics:       dashboard.Metrics,
		RecentSales:   newSaleResponses(dashboard.RecentSales),
		CriticalStock: critical,
	})
}

// MonthlySales handles the trailing twelve month report
func (h *ReportHandler) MonthlySales(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.MonthlyReport(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, report)
}

// LowStock handles the low-stock report
func (h *ReportHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.reportService.LowStockReport(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	out := make([]lowStockResponse, 0, len(items))
	for _, item := range items {
		out = append(out, lowStockResponse{
			ProductResponse: newProductResponse(&item.Product),
			RecentSales:     newSaleResponses(item.RecentSales),
		})
	}

	middleware.RespondWithJSON(w, http.StatusOK, out)
}
