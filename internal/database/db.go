package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the connection pool used by repositories
type DB struct {
	*sql.DB
}

// New opens a Postgres pool for databaseURL and verifies connectivity
func New(databaseURL string) (*DB, error) {
	return NewWithDriver("postgres", databaseURL)
}

// NewWithDriver opens a pool with any registered database/sql driver
func NewWithDriver(driver, dsn string) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One invocation issues at most a read and a write
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Ping verifies the pool can reach the database
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}
