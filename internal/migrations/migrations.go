package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Run creates the tables used by the store and blob packages. Statements are
// idempotent and portable between SQLite and PostgreSQL; only the binary column type
// differs.
func Run(db *sqlx.DB) error {
	binary := "BLOB"
	if db.DriverName() == "pgx" {
		binary = "BYTEA"
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS items (
            scope TEXT NOT NULL,
            id TEXT NOT NULL,
            name TEXT NOT NULL,
            quantity INTEGER NOT NULL DEFAULT 0,
            expiry TEXT NOT NULL DEFAULT '',
            notes TEXT NOT NULL DEFAULT '',
            image TEXT NOT NULL DEFAULT '',
            storage_path TEXT NOT NULL DEFAULT '',
            drug_category TEXT NOT NULL DEFAULT '',
            production_date TEXT NOT NULL DEFAULT '',
            sku TEXT NOT NULL DEFAULT '',
            seq BIGINT NOT NULL,
            PRIMARY KEY (scope, id)
        );`,
		`CREATE INDEX IF NOT EXISTS items_scope_seq ON items (scope, seq);`,
		`CREATE TABLE IF NOT EXISTS categories (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            responsible_person TEXT NOT NULL DEFAULT '',
            created_at BIGINT NOT NULL,
            seq BIGINT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS activities (
            id TEXT PRIMARY KEY,
            type TEXT NOT NULL,
            medicine_name TEXT NOT NULL DEFAULT '',
            category_id TEXT NOT NULL DEFAULT '',
            category_name TEXT NOT NULL DEFAULT '',
            timestamp_ms BIGINT NOT NULL,
            seq BIGINT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS shortages (
            id TEXT PRIMARY KEY,
            image TEXT NOT NULL,
            storage_path TEXT NOT NULL DEFAULT '',
            note TEXT NOT NULL DEFAULT '',
            at_ms BIGINT NOT NULL,
            seq BIGINT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS blobs (
            path TEXT PRIMARY KEY,
            content_type TEXT NOT NULL,
            data ` + binary + ` NOT NULL,
            created_at BIGINT NOT NULL
        );`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
