// Package storage persists the canonical candle record set for each
// (symbol, interval) pair. The CSV store is the production backend;
// the memory store backs tests and ephemeral runs. Merging,
// deduplication, and coverage math live here as package functions so
// both backends share them.
package storage

import (
	"context"

	"github.com/Manu2954/MarketSummariser-2.0/internal/models"
)

// Store reads and writes the record set for one (symbol, interval).
//
// A store holds at most one materialized record set per pair; there is
// no partial or streaming persistence. Implementations should:
// - Return an empty set, not an error, when nothing is stored yet
// - Treat an unreadable existing set as empty after logging a warning
// - Persist the full set on every write
type Store interface {
	// Load returns the stored record set, sorted ascending by
	// timestamp. A missing or unparsable set loads as empty.
	Load(ctx context.Context, symbol, interval string) ([]models.CandleRecord, error)

	// Persist writes the full record set, replacing whatever was
	// stored. In append mode the given records are first merged with
	// the currently stored set. An empty input set is a no-op.
	Persist(ctx context.Context, records []models.CandleRecord, symbol, interval string) error

	// Location describes where the set for this pair lives (a file
	// path for disk-backed stores), for logging and results.
	Location(symbol, interval string) string
}
