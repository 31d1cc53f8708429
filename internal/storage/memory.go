package storage

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Manu2954/MarketSummariser-2.0/internal/models"
)

// MemoryStore is an in-memory Store used by tests and ephemeral runs.
// It applies the same merge semantics as the CSV store but keeps the
// record sets in a map keyed by symbol and interval.
type MemoryStore struct {
	mu         sync.RWMutex
	sets       map[string][]models.CandleRecord
	appendMode bool
	logger     *slog.Logger
}

// NewMemoryStore creates an empty in-memory store. appendMode selects
// merge-with-stored (true) or plain replacement (false) on persist,
// mirroring the CSV store's csv.append setting.
func NewMemoryStore(appendMode bool) *MemoryStore {
	return &MemoryStore{
		sets:       make(map[string][]models.CandleRecord),
		appendMode: appendMode,
		logger:     slog.Default().With("component", "memory_store"),
	}
}

// Location implements the Store interface.
func (m *MemoryStore) Location(symbol, interval string) string {
	return "memory://" + m.key(symbol, interval)
}

// Load implements the Store interface.
func (m *MemoryStore) Load(ctx context.Context, symbol, interval string) ([]models.CandleRecord, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.sets[m.key(symbol, interval)]
	if !ok {
		return nil, nil
	}

	out := make([]models.CandleRecord, len(stored))
	copy(out, stored)
	return out, nil
}

// Persist implements the Store interface.
func (m *MemoryStore) Persist(ctx context.Context, records []models.CandleRecord, symbol, interval string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	key := m.key(symbol, interval)
	if len(records) == 0 {
		m.logger.Info("no data to write", "set", key)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.appendMode {
		m.sets[key] = Merge(m.sets[key], records)
	} else {
		m.sets[key] = Merge(nil, records)
	}
	return nil
}

func (m *MemoryStore) key(symbol, interval string) string {
	return symbol + "_" + interval
}
