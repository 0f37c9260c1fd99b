package transport

import (
	"glasses-inventory/internal/domain"
)

// ProductResponse is a product with its derived low-stock flag
type ProductResponse struct {
	domain.Product
	IsLowStock bool `json:"is_low_stock"`
}

func newProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{Product: *p, IsLowStock: p.IsLowStock()}
}

type productListResponse struct {
	ProductResponse
	SalesCount int `json:"sales_count"`
}

type productDetailResponse struct {
	ProductResponse
	Sales []saleResponse `json:"sales"`
}

type lowStockResponse struct {
	ProductResponse
	RecentSales []saleResponse `json:"recent_sales"`
}

// saleResponse renders sale_date as a plain date
type saleResponse struct {
	*domain.Sale
	SaleDate string `json:"sale_date"`
}

func newSaleResponse(sale *domain.Sale) saleResponse {
	return saleResponse{Sale: sale, SaleDate: sale.SaleDate.Format(DateLayout)}
}

func newSaleResponses(sales []*domain.Sale) []saleResponse {
	out := make([]saleResponse, 0, len(sales))
	for _, sale := range sales {
		out = append(out, newSaleResponse(sale))
	}
	return out
}
