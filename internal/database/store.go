package database

import (
	"fmt"

	"github.com/benvon/board-insights/internal/config"
)

// Store is a summary store that can report its reachability
type Store interface {
	SummaryStore
	Pinger
}

// OpenStore builds the summary store selected by SUMMARY_STORE. The returned
// close function releases any connection pool and is always safe to call.
func OpenStore(cfg *config.Config) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.SummaryStore {
	case config.SummaryStorePostgres:
		db, err := New(cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		repo, err := NewHistoryRepository(db, cfg.SummaryTable)
		if err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return repo, db.Close, nil
	case config.SummaryStorePostgREST, "":
		store, err := NewPostgRESTStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SummaryTable, DefaultStoreTimeout)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown summary store %q", cfg.SummaryStore)
	}
}
