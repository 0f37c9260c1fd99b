package database

import (
	"database/sql"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"glasses-inventory/internal/config"
)

const migrationsDir = "../../migrations"

func TestMigrationFilesExist(t *testing.T) {
	// Check if migrations directory exists
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	expectedMigrations := []string{
		"00001_create_products_table.sql",
		"00002_create_sales_table.sql",
		"00003_create_updated_at_trigger.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)

		for _, directive := range []string{
			"-- +goose Up",
			"-- +goose Down",
			"-- +goose StatementBegin",
			"-- +goose StatementEnd",
		} {
			if !strings.Contains(contentStr, directive) {
				t.Errorf("Migration file %s missing '%s' directive", file.Name(), directive)
			}
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	expectedTables := map[string]string{
		"products": "00001_create_products_table.sql",
		"sales":    "00002_create_sales_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		content, err := os.ReadFile(filepath.Join(migrationsDir, migrationFile))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", migrationFile, err)
			continue
		}

		contentStr := string(content)

		if !strings.Contains(contentStr, "CREATE TABLE IF NOT EXISTS "+tableName) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}
		if !strings.Contains(contentStr, "DROP TABLE IF EXISTS "+tableName) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestProductsTableGuardsStock(t *testing.T) {
	content, err := os.ReadFile(filepath.Join(migrationsDir, "00001_create_products_table.sql"))
	if err != nil {
		t.Fatalf("Failed to read products migration: %v", err)
	}

	contentStr := string(content)
	requiredColumns := []string{
		"id UUID PRIMARY KEY",
		"model_name VARCHAR",
		"brand VARCHAR",
		"purchase_price DECIMAL(8, 2)",
		"selling_price DECIMAL(8, 2)",
		"stock_quantity INTEGER",
		"low_stock_threshold INTEGER",
		"CHECK (stock_quantity >= 0)",
		"CHECK (low_stock_threshold >= 1)",
	}

	for _, column := range requiredColumns {
		if !strings.Contains(contentStr, column) {
			t.Errorf("Products table missing required definition: %s", column)
		}
	}
}

func TestSalesForeignKeyRestrictsProductDeletion(t *testing.T) {
	content, err := os.ReadFile(filepath.Join(migrationsDir, "00002_create_sales_table.sql"))
	if err != nil {
		t.Fatalf("Failed to read sales migration: %v", err)
	}

	contentStr := string(content)

	if !strings.Contains(contentStr, "REFERENCES products(id) ON DELETE RESTRICT") {
		t.Error("Sales table must restrict deletion of products with sale history")
	}
	if strings.Contains(contentStr, "ON DELETE CASCADE") {
		t.Error("Sales table must not cascade product deletion")
	}
	if !strings.Contains(contentStr, "CHECK (quantity >= 1)") {
		t.Error("Sales table missing positive quantity check")
	}
}

func TestConnString(t *testing.T) {
	got := ConnString(config.DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "shop",
		Password: "secret",
		Database: "inventory",
		Schema:   "public",
	})

	want := "postgres://shop:secret@db:5432/inventory?search_path=public&sslmode=disable"
	if got != want {
		t.Errorf("ConnString() = %q, want %q", got, want)
	}
}

func TestConnStringEscapesCredentials(t *testing.T) {
	got := ConnString(config.DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "shop:admin",
		Password: "p@ss/w:rd?#",
		Database: "inventory",
		Schema:   "public",
	})

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("ConnString() produced an invalid URL %q: %v", got, err)
	}

	password, _ := u.User.Password()
	if u.User.Username() != "shop:admin" || password != "p@ss/w:rd?#" {
		t.Errorf("credentials did not round-trip: user=%q password=%q", u.User.Username(), password)
	}
	if u.Host != "db:5432" || u.Path != "/inventory" {
		t.Errorf("host/path mangled: host=%q path=%q", u.Host, u.Path)
	}
	if u.Query().Get("search_path") != "public" {
		t.Errorf("search_path = %q, want public", u.Query().Get("search_path"))
	}
}

func TestLoadMessageFollowsPoolLimit(t *testing.T) {
	if msg := loadMessage(sql.DBStats{InUse: maxOpenConns - 1}, maxOpenConns); msg != "" {
		t.Errorf("pool below limit reported %q", msg)
	}
	if msg := loadMessage(sql.DBStats{InUse: maxOpenConns}, maxOpenConns); !strings.Contains(msg, "heavy load") {
		t.Errorf("saturated pool reported %q", msg)
	}
	if msg := loadMessage(sql.DBStats{WaitCount: 1001}, maxOpenConns); !strings.Contains(msg, "wait events") {
		t.Errorf("waiting pool reported %q", msg)
	}
}
