package database

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Connect opens a database with the given driver ("sqlite" or "pgx") and DSN.
func Connect(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to %s database: %w", driver, err)
	}
	switch driver {
	case "sqlite":
		// A single connection keeps ":memory:" databases shared and serializes writers.
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(10)
	}
	return db, nil
}
