package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"glasses-inventory/internal/domain"
	"glasses-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// memoryStore is an in-memory catalog and ledger shared by the mock repositories
type memoryStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]*domain.Product
	sales    map[uuid.UUID]*domain.Sale
	order    []uuid.UUID
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		products: make(map[uuid.UUID]*domain.Product),
		sales:    make(map[uuid.UUID]*domain.Sale),
	}
}

func (m *memoryStore) addProduct(stock, threshold int) *domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &domain.Product{
		ID:                uuid.New(),
		ModelName:         "Wayfarer",
		Brand:             "Ray-Ban",
		PurchasePrice:     decimal.RequireFromString("40.00"),
		SellingPrice:      decimal.RequireFromString("80.00"),
		StockQuantity:     stock,
		LowStockThreshold: threshold,
	}
	m.products[p.ID] = p
	m.order = append(m.order, p.ID)
	return p
}

func (m *memoryStore) stock(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].StockQuantity
}

func (m *memoryStore) liveQuantity(productID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, s := range m.sales {
		if s.ProductID == productID {
			total += s.Quantity
		}
	}
	return total
}

func copyProduct(p *domain.Product) *domain.Product {
	c := *p
	return &c
}

// mockInventoryRepository mirrors the transactional repository: all or nothing
type mockInventoryRepository struct {
	store *memoryStore
}

func (r *mockInventoryRepository) RecordSale(ctx context.Context, sale *domain.Sale) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[sale.ProductID]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	next, err := domain.ApplyStockDelta(p.StockQuantity, -sale.Quantity)
	if err != nil {
		return nil, err
	}
	p.StockQuantity = next
	stored := *sale
	r.store.sales[sale.ID] = &stored
	return copyProduct(p), nil
}

func (r *mockInventoryRepository) DeleteSale(ctx context.Context, saleID uuid.UUID) (*domain.Sale, *domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sale, ok := r.store.sales[saleID]
	if !ok {
		return nil, nil, repository.ErrSaleNotFound
	}
	p, ok := r.store.products[sale.ProductID]
	if !ok {
		return nil, nil, repository.ErrProductNotFound
	}
	next, err := domain.ApplyStockDelta(p.StockQuantity, sale.Quantity)
	if err != nil {
		return nil, nil, err
	}
	p.StockQuantity = next
	delete(r.store.sales, saleID)
	return sale, copyProduct(p), nil
}

func (r *mockInventoryRepository) ReduceStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[productID]
	if !ok {
		return false, repository.ErrProductNotFound
	}
	next, err := domain.ApplyStockDelta(p.StockQuantity, -quantity)
	if err != nil {
		return false, nil
	}
	p.StockQuantity = next
	return true, nil
}

func (r *mockInventoryRepository) Restock(ctx context.Context, productID uuid.UUID, quantity int) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[productID]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	next, err := domain.ApplyStockDelta(p.StockQuantity, quantity)
	if err != nil {
		return nil, err
	}
	p.StockQuantity = next
	return copyProduct(p), nil
}

type mockSaleRepository struct {
	store *memoryStore
}

func (r *mockSaleRepository) sorted(filter func(*domain.Sale) bool) []*domain.Sale {
	out := []*domain.Sale{}
	for _, s := range r.store.sales {
		if filter == nil || filter(s) {
			c := *s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SaleDate.Equal(out[j].SaleDate) {
			return out[i].SaleDate.After(out[j].SaleDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *mockSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sales[id]
	if !ok {
		return nil, repository.ErrSaleNotFound
	}
	c := *s
	return &c, nil
}

func (r *mockSaleRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Sale, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	all := r.sorted(nil)
	return paginate(all, page, pageSize), len(all), nil
}

func (r *mockSaleRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Sale, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.sorted(func(s *domain.Sale) bool { return s.ProductID == productID }), nil
}

func (r *mockSaleRepository) Recent(ctx context.Context, limit int) ([]*domain.Sale, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return paginate(r.sorted(nil), 1, limit), nil
}

type mockProductRepository struct {
	store *memoryStore
}

func (r *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.products[product.ID] = copyProduct(product)
	r.store.order = append(r.store.order, product.ID)
	return nil
}

func (r *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	r.store.products[product.ID] = copyProduct(product)
	return nil
}

func (r *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	for _, s := range r.store.sales {
		if s.ProductID == id {
			return domain.ErrProductHasSales
		}
	}
	delete(r.store.products, id)
	return nil
}

func (r *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return copyProduct(p), nil
}

func (r *mockProductRepository) listItems() []*domain.ProductListItem {
	items := []*domain.ProductListItem{}
	for i := len(r.store.order) - 1; i >= 0; i-- {
		p, ok := r.store.products[r.store.order[i]]
		if !ok {
			continue
		}
		count := 0
		for _, s := range r.store.sales {
			if s.ProductID == p.ID {
				count++
			}
		}
		items = append(items, &domain.ProductListItem{Product: *p, SalesCount: count})
	}
	return items
}

func (r *mockProductRepository) List(ctx context.Context, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.ProductListItem, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	all := r.listItems()
	return paginate(all, page, pageSize), len(all), nil
}

func (r *mockProductRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.ProductListItem, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	matched := []*domain.ProductListItem{}
	for _, item := range r.listItems() {
		if item.Brand == query || item.ModelName == query {
			matched = append(matched, item)
		}
	}
	return paginate(matched, page, pageSize), len(matched), nil
}

func (r *mockProductRepository) ListAvailable(ctx context.Context) ([]*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := []*domain.Product{}
	for _, p := range r.store.products {
		if p.StockQuantity > 0 {
			out = append(out, copyProduct(p))
		}
	}
	return out, nil
}

func paginate[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// fixedClock pins "now" for date validation
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time   { return c.now }
func (c fixedClock) Today() time.Time { return domain.DateOf(c.now, c.now.Location()) }

var testNow = time.Date(2026, time.March, 15, 14, 30, 0, 0, time.UTC)

type testEnv struct {
	store     *memoryStore
	inventory InventoryService
	catalog   CatalogService
}

func newTestEnv() *testEnv {
	store := newMemoryStore()
	clock := fixedClock{now: testNow}
	saleRepo := &mockSaleRepository{store: store}
	return &testEnv{
		store:     store,
		inventory: NewInventoryService(&mockInventoryRepository{store: store}, saleRepo, nil, zap.NewNop(), clock, 0),
		catalog:   NewCatalogService(&mockProductRepository{store: store}, saleRepo, zap.NewNop(), clock, 10, 0),
	}
}

func saleInput(productID uuid.UUID, quantity int) RecordSaleInput {
	return RecordSaleInput{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: decimal.RequireFromString("80.00"),
		SaleDate:  testNow,
	}
}
