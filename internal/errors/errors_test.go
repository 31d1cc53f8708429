package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *ClassifiedError
		expected string
	}{
		{
			name:     "message only",
			err:      New(ErrorTypeInvalidWindow, "start time must not be after end time"),
			expected: "[invalid_window] start time must not be after end time",
		},
		{
			name:     "wrapped cause",
			err:      Wrap(fmt.Errorf("connection refused"), ErrorTypeUpstreamFetch, "upstream fetch failed"),
			expected: "[upstream_fetch_failed] upstream fetch failed: connection refused",
		},
		{
			name:     "context fields sorted",
			err:      New(ErrorTypeNoData, "no rows").With("symbol", "BTCUSDT").With("interval", "1h"),
			expected: "[no_data] no rows (interval=1h symbol=BTCUSDT)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestClassifiedErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("read: connection reset")
	wrapped := NewUpstreamFetch(cause, "BTCUSDT", "1h")

	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, cause, wrapped.Unwrap())
}

func TestClassifiedErrorIsMatchesOnType(t *testing.T) {
	err := NewUpstreamFetch(fmt.Errorf("HTTP 502"), "ETHUSDT", "5m")

	assert.True(t, errors.Is(err, &ClassifiedError{Type: ErrorTypeUpstreamFetch}))
	assert.False(t, errors.Is(err, &ClassifiedError{Type: ErrorTypeInvalidWindow}))
}

func TestClassifiedErrorThroughWrapChain(t *testing.T) {
	inner := NewCorruptLocalStore(fmt.Errorf("bad header"), "data/BTCUSDT_1h.csv")
	outer := fmt.Errorf("loading store: %w", inner)

	assert.True(t, IsType(outer, ErrorTypeCorruptLocalStore))
	assert.Equal(t, ErrorTypeCorruptLocalStore, GetErrorType(outer))

	var ce *ClassifiedError
	require.True(t, errors.As(outer, &ce))
	assert.Equal(t, "data/BTCUSDT_1h.csv", ce.Context["path"])
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeStorage, "ignored"))
}

func TestConstructorContext(t *testing.T) {
	start := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		err          *ClassifiedError
		expectedType ErrorType
		contextKeys  []string
	}{
		{
			name:         "invalid duration carries the expression",
			err:          NewInvalidDuration("7x"),
			expectedType: ErrorTypeInvalidDuration,
		},
		{
			name:         "invalid window carries both bounds",
			err:          NewInvalidWindow(start, end),
			expectedType: ErrorTypeInvalidWindow,
			contextKeys:  []string{"start", "end"},
		},
		{
			name:         "upstream fetch carries symbol and interval",
			err:          NewUpstreamFetch(fmt.Errorf("boom"), "BTCUSDT", "1h"),
			expectedType: ErrorTypeUpstreamFetch,
			contextKeys:  []string{"symbol", "interval"},
		},
		{
			name:         "invalid operation carries the operation name",
			err:          NewInvalidOperation("daily-btc", "unsupported operation type"),
			expectedType: ErrorTypeInvalidOperation,
			contextKeys:  []string{"operation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedType, tt.err.Type)
			for _, key := range tt.contextKeys {
				assert.Contains(t, tt.err.Context, key)
			}
		})
	}
}

func TestGetErrorTypeOnPlainError(t *testing.T) {
	assert.Equal(t, ErrorType(""), GetErrorType(fmt.Errorf("plain")))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeNoData))
}
