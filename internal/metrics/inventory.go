package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Reasons a sale can be rejected
const (
	ReasonValidation        = "validation"
	ReasonInsufficientStock = "insufficient_stock"
	ReasonNotFound          = "not_found"
	ReasonConflict          = "conflict"
)

// InventoryMetrics records stock accounting activity. A nil *InventoryMetrics
// is valid and records nothing.
type InventoryMetrics struct {
	salesRecorded prometheus.Counter
	salesDeleted  prometheus.Counter
	unitsSold     prometheus.Counter
	unitsRestored prometheus.Counter
	rejected      *prometheus.CounterVec
}

// NewInventoryMetrics registers the inventory metrics on the provided registerer.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	salesRecorded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_sales_recorded_total",
		Help: "Sales recorded.",
	})
	salesDeleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_sales_deleted_total",
		Help: "Sales deleted with their stock restored.",
	})
	unitsSold := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_units_sold_total",
		Help: "Units debited from stock by recorded sales.",
	})
	unitsRestored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_units_restored_total",
		Help: "Units credited back to stock by deleted sales and restocks.",
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_sales_rejected_total",
		Help: "Sales rejected before any stock moved.",
	}, []string{"reason"})
	reg.MustRegister(salesRecorded, salesDeleted, unitsSold, unitsRestored, rejected)
	return &InventoryMetrics{
		salesRecorded: salesRecorded,
		salesDeleted:  salesDeleted,
		unitsSold:     unitsSold,
		unitsRestored: unitsRestored,
		rejected:      rejected,
	}
}

// SaleRecorded counts a sale and the units it debited.
func (m *InventoryMetrics) SaleRecorded(quantity int) {
	if m == nil || m.salesRecorded == nil {
		return
	}
	m.salesRecorded.Inc()
	m.unitsSold.Add(float64(quantity))
}

// SaleDeleted counts a deleted sale and the units it credited back.
func (m *InventoryMetrics) SaleDeleted(quantity int) {
	if m == nil || m.salesDeleted == nil {
		return
	}
	m.salesDeleted.Inc()
	m.unitsRestored.Add(float64(quantity))
}

// Restocked counts units added through a restock.
func (m *InventoryMetrics) Restocked(quantity int) {
	if m == nil || m.unitsRestored == nil {
		return
	}
	m.unitsRestored.Add(float64(quantity))
}

// SaleRejected counts a rejected sale under reason.
func (m *InventoryMetrics) SaleRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// HTTPMetrics records request latency per route.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(duration)
	return &HTTPMetrics{duration: duration}
}

// ObserveRequest records the duration of a request served by route.
func (h *HTTPMetrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if h == nil || h.duration == nil {
		return
	}
	h.duration.WithLabelValues(method, normalizeLabel(route), strconv.Itoa(status)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
