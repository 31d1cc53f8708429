package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Manu2954/MarketSummariser-2.0/internal/errors"
)

func writeOperationsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "operations.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRegistry(t *testing.T) {
	server := serveHourlyKlines(t, 24, nil, nil)
	defer server.Close()
	eng, _ := newTestEngine(t, server.URL)

	t.Run("merges defaults per field", func(t *testing.T) {
		path := writeOperationsFile(t, `
defaults:
  symbol: BTCUSDT
  interval: 1h
  lookback: 24h
operations:
  - name: daily-stats
    type: volume_stats
  - name: eth-fetch
    type: fetch
    symbol: ETHUSDT
    lookback: 3d
`)
		registry, err := LoadRegistryWithLogger(path, eng, createTestLogger())
		require.NoError(t, err)

		assert.Equal(t, []string{"daily-stats", "eth-fetch"}, registry.Names())

		spec, ok := registry.Lookup("daily-stats")
		require.True(t, ok)
		assert.Equal(t, "BTCUSDT", spec.Symbol)
		assert.Equal(t, "1h", spec.Interval)
		assert.Equal(t, "24h", spec.Lookback)

		spec, ok = registry.Lookup("eth-fetch")
		require.True(t, ok)
		assert.Equal(t, "ETHUSDT", spec.Symbol, "explicit field wins over default")
		assert.Equal(t, "3d", spec.Lookback)
		assert.Equal(t, "1h", spec.Interval, "missing field inherits the default")
	})

	t.Run("rejects an operation without a name", func(t *testing.T) {
		path := writeOperationsFile(t, `
operations:
  - type: fetch
    symbol: BTCUSDT
    interval: 1h
`)
		_, err := LoadRegistryWithLogger(path, eng, createTestLogger())
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidOperation))
		assert.Contains(t, err.Error(), "has no name")
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		path := writeOperationsFile(t, `
operations:
  - name: sync-btc
    type: fetch
    symbol: BTCUSDT
    interval: 1h
  - name: sync-btc
    type: fetch
    symbol: BTCUSDT
    interval: 4h
`)
		_, err := LoadRegistryWithLogger(path, eng, createTestLogger())
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidOperation))
		assert.Contains(t, err.Error(), "sync-btc")
	})

	t.Run("rejects a missing symbol even after defaults", func(t *testing.T) {
		path := writeOperationsFile(t, `
defaults:
  interval: 1h
operations:
  - name: broken-op
    type: fetch
`)
		_, err := LoadRegistryWithLogger(path, eng, createTestLogger())
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidOperation))
		assert.Contains(t, err.Error(), "broken-op")
		assert.Contains(t, err.Error(), "symbol is required")
	})

	t.Run("rejects a missing interval", func(t *testing.T) {
		path := writeOperationsFile(t, `
operations:
  - name: no-interval
    type: fetch
    symbol: BTCUSDT
`)
		_, err := LoadRegistryWithLogger(path, eng, createTestLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "interval is required")
	})

	t.Run("missing file is a config error", func(t *testing.T) {
		_, err := LoadRegistryWithLogger(filepath.Join(t.TempDir(), "absent.yml"), eng, createTestLogger())
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidConfig))
	})

	t.Run("malformed yaml is a config error", func(t *testing.T) {
		path := writeOperationsFile(t, "operations: [\n")
		_, err := LoadRegistryWithLogger(path, eng, createTestLogger())
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidConfig))
	})
}

func TestRegistryRun(t *testing.T) {
	ctx := context.Background()

	opsContent := `
defaults:
  symbol: BTCUSDT
  interval: 1h
  start_time: "2024-01-01 00:00:00"
  end_time: "2024-01-01 23:00:00"
operations:
  - name: sync-day
    type: fetch
  - name: stats-day
    type: volume_stats
  - name: slice-day
    type: generate_slice
  - name: resample-day
    type: resample
`

	t.Run("runs a fetch operation", func(t *testing.T) {
		server := serveHourlyKlines(t, 24, nil, nil)
		defer server.Close()
		eng, cfg := newTestEngine(t, server.URL)

		registry, err := LoadRegistryWithLogger(writeOperationsFile(t, opsContent), eng, createTestLogger())
		require.NoError(t, err)

		outcome, err := registry.Run(ctx, "sync-day")
		require.NoError(t, err)
		require.NotNil(t, outcome.Sync)
		assert.Nil(t, outcome.Stats)
		assert.Equal(t, 24, outcome.Sync.Rows)
		assert.Len(t, loadStore(t, cfg), 24)
	})

	t.Run("runs a volume stats operation", func(t *testing.T) {
		server := serveHourlyKlines(t, 24, nil, nil)
		defer server.Close()
		eng, _ := newTestEngine(t, server.URL)

		registry, err := LoadRegistryWithLogger(writeOperationsFile(t, opsContent), eng, createTestLogger())
		require.NoError(t, err)

		outcome, err := registry.Run(ctx, "stats-day")
		require.NoError(t, err)
		require.NotNil(t, outcome.Stats)
		assert.Equal(t, 24, outcome.Stats.Rows)
		assert.InDelta(t, 12.5, outcome.Stats.AvgVolume, 1e-9)
	})

	t.Run("runs a slice operation with the default target", func(t *testing.T) {
		server := serveHourlyKlines(t, 24, nil, nil)
		defer server.Close()
		eng, cfg := newTestEngine(t, server.URL)

		registry, err := LoadRegistryWithLogger(writeOperationsFile(t, opsContent), eng, createTestLogger())
		require.NoError(t, err)

		outcome, err := registry.Run(ctx, "slice-day")
		require.NoError(t, err)
		require.NotNil(t, outcome.Slice)
		assert.Equal(t, 24, outcome.Slice.SliceRows)

		storePath := cfg.CSV.StorePath(testSymbol, testInterval)
		assert.Equal(t, filepath.Join(filepath.Dir(storePath), "BTCUSDT_1h_sliced.csv"), outcome.Slice.SlicePath)
		_, err = os.Stat(outcome.Slice.SlicePath)
		assert.NoError(t, err)
	})

	t.Run("unknown operation name fails before any work", func(t *testing.T) {
		var requests int32
		server := serveHourlyKlines(t, 24, &requests, nil)
		defer server.Close()
		eng, _ := newTestEngine(t, server.URL)

		registry, err := LoadRegistryWithLogger(writeOperationsFile(t, opsContent), eng, createTestLogger())
		require.NoError(t, err)

		_, err = registry.Run(ctx, "nonexistent")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidOperation))
		assert.Contains(t, err.Error(), "nonexistent")
		assert.Zero(t, requests)
	})

	t.Run("unknown operation type fails before any work", func(t *testing.T) {
		var requests int32
		server := serveHourlyKlines(t, 24, &requests, nil)
		defer server.Close()
		eng, _ := newTestEngine(t, server.URL)

		registry, err := LoadRegistryWithLogger(writeOperationsFile(t, opsContent), eng, createTestLogger())
		require.NoError(t, err)

		_, err = registry.Run(ctx, "resample-day")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidOperation))
		assert.Contains(t, err.Error(), "resample")
		assert.Zero(t, requests)
	})

	t.Run("window resolution failure surfaces the input error", func(t *testing.T) {
		server := serveHourlyKlines(t, 24, nil, nil)
		defer server.Close()
		eng, _ := newTestEngine(t, server.URL)

		path := writeOperationsFile(t, `
operations:
  - name: bad-window
    type: fetch
    symbol: BTCUSDT
    interval: 1h
    lookback: fortnight
`)
		registry, err := LoadRegistryWithLogger(path, eng, createTestLogger())
		require.NoError(t, err)

		_, err = registry.Run(ctx, "bad-window")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidDuration))
	})
}
