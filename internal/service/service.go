package service

import (
	"time"

	"glasses-inventory/internal/domain"
)

const (
	DefaultProductsPageSize = 12
	DefaultSalesPageSize    = 15
)

// Clock tells the services what "now" and "today" are for the store
type Clock interface {
	Now() time.Time
	Today() time.Time
}

// StoreClock reads the wall clock in the store time zone
type StoreClock struct {
	Location *time.Location
	NowFunc  func() time.Time
}

// NewStoreClock creates a StoreClock for loc
func NewStoreClock(loc *time.Location) *StoreClock {
	if loc == nil {
		loc = time.UTC
	}
	return &StoreClock{Location: loc, NowFunc: time.Now}
}

func (c *StoreClock) Now() time.Time {
	return c.NowFunc().In(c.Location)
}

// Today is midnight of the current day in the store time zone
func (c *StoreClock) Today() time.Time {
	return domain.DateOf(c.NowFunc(), c.Location)
}

// Page is one page of a paginated listing
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPage builds a Page, computing the page count from total
func NewPage[T any](items []T, page, pageSize, total int) *Page[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
