package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/board-insights/internal/models"
)

// HistoryRepository stores compressed history directly in Postgres
type HistoryRepository struct {
	db    *DB
	table string
	now   func() time.Time
}

// NewHistoryRepository creates a repository over table, which must hold
// user_id (unique), compressed_data and updated_at columns.
func NewHistoryRepository(db *DB, table string) (*HistoryRepository, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}
	return &HistoryRepository{db: db, table: table, now: time.Now}, nil
}

// Get retrieves the compressed history for an identity
func (r *HistoryRepository) Get(ctx context.Context, identity models.Identity) (string, error) {
	query := `SELECT compressed_data FROM ` + r.table + ` WHERE user_id = $1`

	var data sql.NullString
	err := r.db.QueryRowContext(ctx, query, identity.UserID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get compressed history: %w", err)
	}

	return data.String, nil
}

// Upsert creates or replaces the compressed history for an identity
func (r *HistoryRepository) Upsert(ctx context.Context, identity models.Identity, text string) error {
	query := `
		INSERT INTO ` + r.table + ` (user_id, compressed_data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET compressed_data = EXCLUDED.compressed_data,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, identity.UserID, text, r.now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert compressed history: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable
func (r *HistoryRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
