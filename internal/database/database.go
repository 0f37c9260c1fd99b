package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/url"
	"strconv"
	"time"

	"glasses-inventory/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/joho/godotenv/autoload"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// DB exposes the underlying connection pool to repositories.
	DB() *sql.DB

	// Close terminates the database connection.
	Close() error
}

const maxOpenConns = 25

type service struct {
	db *sql.DB
}

// ConnString builds a pgx connection URL from the database configuration.
// Credentials are escaped so any character is allowed in them.
func ConnString(cfg config.DatabaseConfig) string {
	query := url.Values{}
	query.Set("sslmode", "disable")
	query.Set("search_path", cfg.Schema)

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, cfg.Port),
		Path:     "/" + cfg.Database,
		RawQuery: query.Encode(),
	}
	return u.String()
}

// New opens the connection pool. It exits the process if the DSN is invalid,
// mirroring how the rest of startup treats unrecoverable configuration.
func New(cfg config.DatabaseConfig) Service {
	db, err := sql.Open("pgx", ConnString(cfg))
	if err != nil {
		log.Fatal(err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &service{db: db}
}

func (s *service) DB() *sql.DB {
	return s.db
}

// Health checks the health of the database connection by pinging the database.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	if msg := loadMessage(dbStats, maxOpenConns); msg != "" {
		stats["message"] = msg
	}

	return stats
}

// loadMessage describes pool pressure relative to the pool limit
func loadMessage(dbStats sql.DBStats, limit int) string {
	switch {
	case dbStats.WaitCount > 1000:
		return "The database has a high number of wait events, indicating potential bottlenecks."
	case dbStats.InUse >= limit:
		return "The database is experiencing heavy load."
	default:
		return ""
	}
}

func (s *service) Close() error {
	return s.db.Close()
}
