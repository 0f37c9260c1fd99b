package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"glasses-inventory/internal/config"
	"glasses-inventory/internal/database"
	"glasses-inventory/internal/metrics"
	custommiddleware "glasses-inventory/internal/middleware"
	"glasses-inventory/internal/repository"
	"glasses-inventory/internal/service"
	"glasses-inventory/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config   *config.Config
	logger   *zap.Logger
	db       database.Service
	redis    *redis.Client
	registry *prometheus.Registry
}

// NewServer wires repositories, services and handlers onto a chi router.
// redisClient may be nil, in which case rate limiting is skipped.
func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.IsDevelopment()))
	router.Use(custommiddleware.MetricsMiddleware(metrics.NewHTTPMetrics(registry)))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := db.Health()
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"database":  health,
		})
	})
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.DB())
	saleRepo := repository.NewSaleRepository(db.DB())
	inventoryRepo := repository.NewInventoryRepository(db.DB())
	reportRepo := repository.NewReportRepository(db.DB())

	// Initialize services
	clock := service.NewStoreClock(cfg.Inventory.Location())
	inventoryService := service.NewInventoryService(
		inventoryRepo,
		saleRepo,
		metrics.NewInventoryMetrics(registry),
		logger,
		clock,
		cfg.Inventory.SalesPageSize,
	)
	catalogService := service.NewCatalogService(
		productRepo,
		saleRepo,
		logger,
		clock,
		cfg.Inventory.DefaultLowStockThreshold,
		cfg.Inventory.ProductsPageSize,
	)
	reportService := service.NewReportService(reportRepo, saleRepo, clock)

	// Initialize handlers
	productHandler := transport.NewProductHandler(catalogService, inventoryService, logger)
	saleHandler := transport.NewSaleHandler(inventoryService, logger)
	reportHandler := transport.NewReportHandler(reportService, logger)

	// Register routes
	router.Route("/api", func(r chi.Router) {
		if cfg.JWT.Secret != "" {
			r.Use(custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger))
		} else {
			logger.Warn("JWT_SECRET is empty, API authentication is disabled")
		}

		if cfg.RateLimit.Enabled && redisClient != nil {
			r.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
				RequestsPerWindow: cfg.RateLimit.Requests,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         "inventory:ratelimit",
			}, logger))
		}

		productHandler.RegisterRoutes(r)
		saleHandler.RegisterRoutes(r)
		reportHandler.RegisterRoutes(r)
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:   cfg,
		logger:   logger,
		db:       db,
		redis:    redisClient,
		registry: registry,
	}

	return server
}

// Close releases the database pool and the redis client
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	var err error
	if s.db != nil {
		err = multierr.Append(err, s.db.Close())
	}
	if s.redis != nil {
		err = multierr.Append(err, s.redis.Close())
	}

	if err != nil {
		s.logger.Error("Failed to close server resources", zap.Error(err))
	}

	s.logger.Sync()
	return err
}
