package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/ignite/order-tracker/internal/config"
	_ "github.com/lib/pq"
)

// Store provides database operations for users, orders and notifications.
// All mutation goes through single-row commit operations; the database's own
// row-level semantics are the only point of mutual exclusion.
type Store struct {
	db *sql.DB
}

// New creates a store over an existing database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to Postgres with the configured pool limits and verifies the
// connection before returning.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
