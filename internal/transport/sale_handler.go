package transport

import (
	"net/http"
	"time"

	"glasses-inventory/internal/middleware"
	"glasses-inventory/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordSaleRequest represents the sale entry payload
type RecordSaleRequest struct {
	ProductID    string          `json:"product_id" validate:"required,uuid"`
	Quantity     int             `json:"quantity" validate:"gte=1,lte=2147483647"`
	UnitPrice    decimal.Decimal `json:"unit_price" validate:"gte=0,lte=9999.99"`
	SaleDate     string          `json:"sale_date" validate:"required,datetime=2006-01-02"`
	CustomerName *string         `json:"customer_name" validate:"omitempty,max=255"`
	Notes        *string         `json:"notes" validate:"omitempty,max=1000"`
}

// SaleHandler handles HTTP requests for the sale ledger
type SaleHandler struct {
	inventoryService service.InventoryService
	logger           *zap.Logger
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(inventoryService service.InventoryService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// RegisterRoutes registers all sale routes
func (h *SaleHandler) RegisterRoutes(r chi.Router) {
	r.Route("/sales", func(r chi.Router) {
		r.Get("/", h.ListSales)
		r.Post("/", h.RecordSale)
		r.Get("/{id}", h.GetSale)
		r.Delete("/{id}", h.DeleteSale)
	})
}

// RecordSale handles sale entry
func (h *SaleHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req RecordSaleRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	// Both were checked by the validator
	productID := uuid.MustParse(req.ProductID)
	saleDate, _ := time.Parse(DateLayout, req.SaleDate)

	sale, err := h.inventoryService.RecordSale(r.Context(), service.RecordSaleInput{
		ProductID:    productID,
		Quantity:     req.Quantity,
		UnitPrice:    req.UnitPrice,
		SaleDate:     saleDate,
		CustomerName: req.CustomerName,
		Notes:        req.Notes,
	})
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, newSaleResponse(sale))
}

// ListSales handles the paginated sale ledger
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	result, err := h.inventoryService.ListSales(r.Context(), pageParam(r))
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	items := newSaleResponses(result.Items)
	middleware.RespondWithJSON(w, http.StatusOK, service.NewPage(items, result.Page, result.PageSize, result.Total))
}

// GetSale handles sale detail
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	sale, err := h.inventoryService.GetSale(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newSaleResponse(sale))
}

// DeleteSale handles sale removal, which restores the product's stock
func (h *SaleHandler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.inventoryService.DeleteSale(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
