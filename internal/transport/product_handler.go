package transport

import (
	"net/http"

	"glasses-inventory/internal/middleware"
	"glasses-inventory/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest represents the create and update product payload
type ProductRequest struct {
	ModelName         string          `json:"model_name" validate:"required,max=255"`
	Brand             string          `json:"brand" validate:"required,max=255"`
	PurchasePrice     decimal.Decimal `json:"purchase_price" validate:"gte=0,lte=9999.99"`
	SellingPrice      decimal.Decimal `json:"selling_price" validate:"gte=0,lte=9999.99"`
	StockQuantity     int             `json:"stock_quantity" validate:"gte=0,lte=2147483647"`
	LowStockThreshold *int            `json:"low_stock_threshold" validate:"omitempty,gte=1,lte=100"`
	Description       *string         `json:"description"`
	FrameType         *string         `json:"frame_type" validate:"omitempty,max=255"`
	FrameMaterial     *string         `json:"frame_material" validate:"omitempty,max=255"`
	LensType          *string         `json:"lens_type" validate:"omitempty,max=255"`
}

func (req ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		ModelName:         req.ModelName,
		Brand:             req.Brand,
		PurchasePrice:     req.PurchasePrice,
		SellingPrice:      req.SellingPrice,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
		Description:       req.Description,
		FrameType:         req.FrameType,
		FrameMaterial:     req.FrameMaterial,
		LensType:          req.LensType,
	}
}

// RestockRequest represents the restock payload
type RestockRequest struct {
	Quantity int `json:"quantity" validate:"gte=1,lte=2147483647"`
}

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	catalogService   service.CatalogService
	inventoryService service.InventoryService
	logger           *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, inventoryService service.InventoryService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService:   catalogService,
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/available", h.ListAvailableProducts)
		r.Get("/{id}", h.GetProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
		r.Post("/{id}/restock", h.RestockProduct)
	})
}

// ListProducts handles catalog listing and search (?q)
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)

	result, err := h.catalogService.SearchProducts(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	items := make([]productListResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, productListResponse{
			ProductResponse: newProductResponse(&item.Product),
			SalesCount:      item.SalesCount,
		})
	}

	middleware.RespondWithJSON(w, http.StatusOK, service.NewPage(items, result.Page, result.PageSize, result.Total))
}

// ListAvailableProducts handles the in-stock product list used for sale entry
func (h *ProductHandler) ListAvailableProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.ListAvailableProducts(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, newProductResponse(p))
	}

	middleware.RespondWithJSON(w, http.StatusOK, out)
}

// CreateProduct handles product creation
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), req.toInput())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, newProductResponse(product))
}

// GetProduct handles product detail with its sales
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	detail, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, productDetailResponse{
		ProductResponse: newProductResponse(&detail.Product),
		Sales:           newSaleResponses(detail.Sales),
	})
}

// UpdateProduct handles product edits, including direct stock corrections
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), id, req.toInput())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProductResponse(product))
}

// DeleteProduct handles product removal. Products with sales cannot be removed.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RestockProduct handles receiving new units
func (h *ProductHandler) RestockProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req RestockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	product, err := h.inventoryService.RestockProduct(r.Context(), id, req.Quantity)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProductResponse(product))
}
