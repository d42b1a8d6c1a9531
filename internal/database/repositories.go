package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/benvon/board-insights/internal/models"
)

// ErrNotFound is returned when no compressed history exists for an identity
var ErrNotFound = errors.New("compressed history not found")

// SummaryStore holds one compressed history per identity
type SummaryStore interface {
	// Get returns the stored history, or ErrNotFound when no row exists.
	// A row with a null history yields "".
	Get(ctx context.Context, identity models.Identity) (string, error)
	// Upsert inserts or replaces the history keyed on the identity's user ID
	Upsert(ctx context.Context, identity models.Identity, text string) error
}

// Pinger reports whether a backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ensure concrete types implement the interfaces
var (
	_ SummaryStore = (*HistoryRepository)(nil)
	_ SummaryStore = (*PostgRESTStore)(nil)
	_ Pinger       = (*HistoryRepository)(nil)
	_ Pinger       = (*PostgRESTStore)(nil)
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validateTable rejects table names that are not plain identifiers
func validateTable(table string) error {
	if !tableNamePattern.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}
