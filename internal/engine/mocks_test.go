package engine

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Manu2954/MarketSummariser-2.0/internal/config"
	apperrors "github.com/Manu2954/MarketSummariser-2.0/internal/errors"
	"github.com/Manu2954/MarketSummariser-2.0/internal/exchange"
	"github.com/Manu2954/MarketSummariser-2.0/internal/models"
)

// Mock implementations for testing

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(ctx context.Context, symbol, interval string) ([]models.CandleRecord, error) {
	args := m.Called(ctx, symbol, interval)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CandleRecord), args.Error(1)
}

func (m *MockStore) Persist(ctx context.Context, records []models.CandleRecord, symbol, interval string) error {
	args := m.Called(ctx, records, symbol, interval)
	return args.Error(0)
}

func (m *MockStore) Location(symbol, interval string) string {
	args := m.Called(symbol, interval)
	return args.String(0)
}

type MockSource struct {
	mock.Mock
}

func (m *MockSource) FetchKlines(ctx context.Context, req exchange.FetchRequest) ([]exchange.RawKline, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]exchange.RawKline), args.Error(1)
}

// rawHourKline builds one wire-shaped kline row for a mocked source.
func rawHourKline(openMS int64) exchange.RawKline {
	return exchange.RawKline{
		OpenTime:      strconv.FormatInt(openMS, 10),
		Open:          "100",
		High:          "101",
		Low:           "99",
		Close:         "100.5",
		Volume:        "10",
		CloseTime:     strconv.FormatInt(openMS+hourMS-1, 10),
		QuoteVolume:   "1005",
		Trades:        "42",
		TakerBuyBase:  "5",
		TakerBuyQuote: "502.5",
	}
}

func newMockedEngine(t *testing.T, store *MockStore, source *MockSource) *Engine {
	t.Helper()

	eng, err := NewWithLogger(config.DefaultConfig(), createTestLogger(),
		WithStore(store), WithSource(source))
	require.NoError(t, err)
	return eng
}

func TestEngineSyncDependencyFailures(t *testing.T) {
	ctx := context.Background()
	win := hourWindow(0, 3)

	t.Run("load failure aborts before any fetch", func(t *testing.T) {
		store := &MockStore{}
		source := &MockSource{}
		store.On("Load", mock.Anything, testSymbol, testInterval).
			Return(nil, apperrors.NewStorage(errors.New("read error"), "data/broken.csv"))

		eng := newMockedEngine(t, store, source)
		result, err := eng.Sync(ctx, testSymbol, testInterval, win, false)

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStorage))
		assert.Nil(t, result)
		source.AssertNotCalled(t, "FetchKlines")
		store.AssertExpectations(t)
	})

	t.Run("fetch failure leaves persist untouched", func(t *testing.T) {
		store := &MockStore{}
		source := &MockSource{}
		store.On("Load", mock.Anything, testSymbol, testInterval).
			Return([]models.CandleRecord{}, nil)
		source.On("FetchKlines", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewUpstreamFetch(errors.New("status 500"), testSymbol, testInterval))

		eng := newMockedEngine(t, store, source)
		result, err := eng.Sync(ctx, testSymbol, testInterval, win, false)

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUpstreamFetch))
		assert.Nil(t, result)
		store.AssertNotCalled(t, "Persist")
	})

	t.Run("persist failure fails the sync", func(t *testing.T) {
		store := &MockStore{}
		source := &MockSource{}
		store.On("Load", mock.Anything, testSymbol, testInterval).
			Return([]models.CandleRecord{}, nil)
		source.On("FetchKlines", mock.Anything, mock.Anything).
			Return([]exchange.RawKline{rawHourKline(baseOpenMS)}, nil)
		store.On("Persist", mock.Anything, mock.Anything, testSymbol, testInterval).
			Return(apperrors.NewStorage(errors.New("disk full"), "data/full.csv"))

		eng := newMockedEngine(t, store, source)
		result, err := eng.Sync(ctx, testSymbol, testInterval, win, false)

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStorage))
		assert.Nil(t, result)
		store.AssertExpectations(t)
	})

	t.Run("dry run never touches persist", func(t *testing.T) {
		store := &MockStore{}
		source := &MockSource{}
		store.On("Load", mock.Anything, testSymbol, testInterval).
			Return([]models.CandleRecord{}, nil)
		source.On("FetchKlines", mock.Anything, mock.Anything).
			Return([]exchange.RawKline{rawHourKline(baseOpenMS)}, nil)

		eng := newMockedEngine(t, store, source)
		result, err := eng.Sync(ctx, testSymbol, testInterval, win, true)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Rows)
		assert.False(t, result.Persisted)
		store.AssertNotCalled(t, "Persist")
		store.AssertNotCalled(t, "Location")
	})
}

func TestEngineSyncPassesWindowToSource(t *testing.T) {
	ctx := context.Background()
	win := hourWindow(0, 3)

	store := &MockStore{}
	source := &MockSource{}
	store.On("Load", mock.Anything, testSymbol, testInterval).
		Return([]models.CandleRecord{}, nil)
	source.On("FetchKlines", mock.Anything, mock.MatchedBy(func(req exchange.FetchRequest) bool {
		return req.Symbol == testSymbol &&
			req.Interval == testInterval &&
			req.Start.Equal(win.Start) &&
			req.End.Equal(win.End)
	})).Return([]exchange.RawKline{
		rawHourKline(baseOpenMS),
		rawHourKline(baseOpenMS + hourMS),
	}, nil)
	store.On("Persist", mock.Anything, mock.MatchedBy(func(records []models.CandleRecord) bool {
		return len(records) == 2
	}), testSymbol, testInterval).Return(nil)
	store.On("Location", testSymbol, testInterval).Return("data/BTCUSDT_1h.csv")

	eng := newMockedEngine(t, store, source)
	result, err := eng.Sync(ctx, testSymbol, testInterval, win, false)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, 2, result.Fetched)
	assert.True(t, result.Persisted)
	assert.Equal(t, "data/BTCUSDT_1h.csv", result.Path)
	source.AssertExpectations(t)
	store.AssertExpectations(t)
}

// A stored row at the window start leaves only a trailing gap; the
// refetched boundary row must lose to the stored one in the merge.
func TestEngineSyncMergesMockedStoreRows(t *testing.T) {
	ctx := context.Background()
	win := hourWindow(0, 3)

	existing := []models.CandleRecord{
		{
			Timestamp: time.UnixMilli(baseOpenMS).UTC(),
			Symbol:    testSymbol,
			Interval:  testInterval,
			Open:      100, High: 101, Low: 99, Close: 100.5,
			Volume: 1, QuoteVolume: 1005,
		},
	}

	store := &MockStore{}
	source := &MockSource{}
	store.On("Load", mock.Anything, testSymbol, testInterval).Return(existing, nil)
	source.On("FetchKlines", mock.Anything, mock.MatchedBy(func(req exchange.FetchRequest) bool {
		// Trailing gap only: coverage starts at the window start.
		return req.Start.Equal(existing[0].Timestamp) && req.End.Equal(win.End)
	})).Return([]exchange.RawKline{
		rawHourKline(baseOpenMS),
		rawHourKline(baseOpenMS + hourMS),
	}, nil)
	store.On("Persist", mock.Anything, mock.MatchedBy(func(records []models.CandleRecord) bool {
		// The refetched boundary row dedupes against the stored one.
		return len(records) == 2 && records[0].Volume == 1
	}), testSymbol, testInterval).Return(nil)
	store.On("Location", testSymbol, testInterval).Return("data/BTCUSDT_1h.csv")

	eng := newMockedEngine(t, store, source)
	result, err := eng.Sync(ctx, testSymbol, testInterval, win, false)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, 2, result.Fetched)
	store.AssertExpectations(t)
	source.AssertExpectations(t)
}
