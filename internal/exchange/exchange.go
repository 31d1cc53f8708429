// Package exchange provides the Binance spot kline client used to sync
// candle data into the local store.
//
// The package contains the paginated fetch protocol, the raw kline wire
// type, and the normalizer that converts raw rows into canonical candle
// records. Rate limiting, per-request timeouts, and the optional retry
// policy all live here.
package exchange

import (
	"context"
	"time"
)

// KlineSource retrieves raw kline rows from an upstream market-data API.
//
// Implementations should:
// - Validate the request parameters
// - Return rows in the order the upstream delivered them (oldest first)
// - Page through the full requested range before returning
// - Treat any transport or non-success response as fatal for the fetch
type KlineSource interface {
	// FetchKlines retrieves every kline row in the requested range,
	// following the upstream's pagination until the range is exhausted.
	//
	// The returned rows are raw: not normalized, deduplicated, or
	// re-sorted. An empty slice with a nil error means the upstream
	// has no data for the range.
	FetchKlines(ctx context.Context, req FetchRequest) ([]RawKline, error)
}

// FetchRequest specifies the range of kline data to fetch.
type FetchRequest struct {
	// Symbol is the upstream trading symbol (e.g., "BTCUSDT")
	Symbol string `json:"symbol"`

	// Interval is the candle interval in upstream notation (e.g., "1h")
	Interval string `json:"interval"`

	// Start is the beginning of the range to fetch (inclusive)
	Start time.Time `json:"start"`

	// End bounds the range; the zero value means open-ended, fetching
	// forward until the upstream runs out of data
	End time.Time `json:"end,omitempty"`
}

// Validate checks if the FetchRequest has valid parameters.
func (r FetchRequest) Validate() error {
	if r.Symbol == "" {
		return &ValidationError{Field: "symbol", Message: "symbol cannot be empty"}
	}

	if r.Interval == "" {
		return &ValidationError{Field: "interval", Message: "interval cannot be empty"}
	}

	if r.Start.IsZero() {
		return &ValidationError{Field: "start", Message: "start time cannot be zero"}
	}

	if !r.End.IsZero() && r.End.Before(r.Start) {
		return &ValidationError{Field: "end", Message: "end time must not be before start time"}
	}

	return nil
}

// Bounded reports whether the request carries an end bound.
func (r FetchRequest) Bounded() bool {
	return !r.End.IsZero()
}

// ValidationError represents a validation error for exchange types.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "validation error for field " + e.Field + ": " + e.Message
}
