package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"glasses-inventory/internal/config"
	"glasses-inventory/internal/database"
	"glasses-inventory/internal/domain"
	"glasses-inventory/internal/logger"
	"glasses-inventory/internal/metrics"
	"glasses-inventory/internal/repository"
	"glasses-inventory/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	brands        = []string{"Ray-Ban", "Oakley", "Prada", "Gucci", "Tom Ford", "Versace", "Armani", "Police", "Persol", "Maui Jim"}
	premiumBrands = []string{"Tom Ford", "Gucci", "Prada", "Versace"}
	frameTypes    = []string{"full-rim", "half-rim", "rimless"}
	materials     = []string{"plastic", "metal", "titanium", "acetate", "stainless steel"}
	premiumMats   = []string{"titanium", "gold", "platinum"}
	lensTypes     = []string{"prescription", "reading", "sunglasses", "progressive", "bifocal"}
	modelWords    = []string{"Aviator", "Wayfarer", "Clubmaster", "Holbrook", "Round", "Cat Eye", "Navigator", "Pilot", "Classic", "Sport"}
	customers     = []string{"Maria Lopez", "John Smith", "Aiko Tanaka", "Lena Fischer", "Omar Haddad", "Chloe Martin"}
)

type variant int

const (
	regular variant = iota
	lowStock
	outOfStock
	premium
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	dbService := database.New(cfg.Database)
	defer dbService.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := database.RunMigrations(ctx, dbService.DB(), "migrations", log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	db := dbService.DB()
	saleRepo := repository.NewSaleRepository(db)
	clock := service.NewStoreClock(cfg.Inventory.Location())

	catalog := service.NewCatalogService(
		repository.NewProductRepository(db),
		saleRepo,
		log,
		clock,
		cfg.Inventory.DefaultLowStockThreshold,
		cfg.Inventory.ProductsPageSize,
	)
	inventory := service.NewInventoryService(
		repository.NewInventoryRepository(db),
		saleRepo,
		metrics.NewInventoryMetrics(nil),
		log,
		clock,
		cfg.Inventory.SalesPageSize,
	)

	var products []*domain.Product
	for _, batch := range []struct {
		kind  variant
		count int
	}{
		{regular, 30},
		{lowStock, 10},
		{outOfStock, 5},
		{premium, 5},
	} {
		for i := 0; i < batch.count; i++ {
			product, err := catalog.CreateProduct(ctx, randomProduct(batch.kind))
			if err != nil {
				log.Fatal("Failed to create product", zap.Error(err))
			}
			products = append(products, product)
		}
	}

	today := clock.Today()
	sales := 0
	for _, product := range products {
		stock := product.StockQuantity
		for i := rand.IntN(6); i > 0 && stock > 0; i-- {
			quantity := min(1+rand.IntN(2), stock)

			_, err := inventory.RecordSale(ctx, service.RecordSaleInput{
				ProductID:    product.ID,
				Quantity:     quantity,
				UnitPrice:    product.SellingPrice,
				SaleDate:     today.AddDate(0, 0, -rand.IntN(365)),
				CustomerName: maybe(0.7, pick(customers)),
				Notes:        maybe(0.3, "Fitted in store"),
			})
			if err != nil {
				log.Fatal("Failed to record sale", zap.String("product_id", product.ID.String()), zap.Error(err))
			}

			stock -= quantity
			sales++
		}
	}

	log.Info("Seed completed",
		zap.Int("products", len(products)),
		zap.Int("sales", sales),
	)
}

func randomProduct(kind variant) service.ProductInput {
	purchase := price(20, 200)
	input := service.ProductInput{
		ModelName:         fmt.Sprintf("%s %s %03d", pick(modelWords), strings.ToLower(pick(modelWords)), rand.IntN(1000)),
		Brand:             pick(brands),
		PurchasePrice:     purchase,
		SellingPrice:      purchase.Mul(decimal.NewFromFloat(1.5 + rand.Float64()*1.5)).Round(2),
		StockQuantity:     rand.IntN(51),
		LowStockThreshold: intPtr(5 + rand.IntN(11)),
		Description:       maybe(0.5, "Lightweight frame with anti-reflective coating"),
		FrameType:         strPtr(pick(frameTypes)),
		FrameMaterial:     strPtr(pick(materials)),
		LensType:          strPtr(pick(lensTypes)),
	}

	switch kind {
	case lowStock:
		input.StockQuantity = rand.IntN(6)
		input.LowStockThreshold = intPtr(8 + rand.IntN(8))
	case outOfStock:
		input.StockQuantity = 0
	case premium:
		input.Brand = pick(premiumBrands)
		input.PurchasePrice = price(150, 400)
		input.SellingPrice = price(300, 800)
		input.FrameMaterial = strPtr(pick(premiumMats))
	}

	return input
}

// price returns a random amount in [lo, hi) rounded to cents
func price(lo, hi float64) decimal.Decimal {
	return decimal.NewFromFloat(lo + rand.Float64()*(hi-lo)).Round(2)
}

func pick(values []string) string {
	return values[rand.IntN(len(values))]
}

func maybe(probability float64, value string) *string {
	if rand.Float64() >= probability {
		return nil
	}
	return &value
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
