// Package models provides the data structures shared by the sync
// engine: candle records, time windows, coverage and gap ranges, and
// the result types returned by engine operations.
package models

import (
	"fmt"
	"math"
	"time"
)

// TimestampLayout is the wall-clock form candle timestamps take in the
// persisted store: no offset, interpreted in the configured display
// timezone. It is also the form the natural key is built from.
const TimestampLayout = "2006-01-02 15:04:05"

// CandleRecord is one OHLCV row for a (symbol, interval) time bucket.
//
// Numeric fields are float64 with NaN as the missing marker: an
// upstream value that fails coercion becomes NaN rather than aborting
// the row. Trades is nullable for the same reason. Timestamp is a real
// instant whose location is the configured display timezone; the
// persisted form drops the offset (see TimestampLayout), so two
// instants that collide across a daylight-saving fold share a natural
// key.
type CandleRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	Volume        float64   `json:"volume"`
	QuoteVolume   float64   `json:"quote_volume"`
	Trades        *int64    `json:"trades"`
	TakerBuyBase  float64   `json:"taker_buy_base"`
	TakerBuyQuote float64   `json:"taker_buy_quote"`
	Interval      string    `json:"interval"`
	Symbol        string    `json:"symbol"`
}

// TimestampString returns the timestamp in the persisted wall-clock
// form.
func (c *CandleRecord) TimestampString() string {
	return c.Timestamp.Format(TimestampLayout)
}

// Key returns the natural key (timestamp, symbol, interval) that must
// be unique within a store. The timestamp component is the persisted
// string form, not the instant.
func (c *CandleRecord) Key() string {
	return c.TimestampString() + "|" + c.Symbol + "|" + c.Interval
}

// HasVolume reports whether the volume field carries a usable value.
func (c *CandleRecord) HasVolume() bool {
	return !math.IsNaN(c.Volume)
}

// Validate checks the fields a record cannot function without. Price
// and volume values are stored as received and are not range-checked.
func (c *CandleRecord) Validate() error {
	if c.Timestamp.IsZero() {
		return fmt.Errorf("candle timestamp cannot be zero")
	}
	if c.Symbol == "" {
		return fmt.Errorf("candle symbol cannot be empty")
	}
	if c.Interval == "" {
		return fmt.Errorf("candle interval cannot be empty")
	}
	return nil
}

// String implements fmt.Stringer.
func (c *CandleRecord) String() string {
	return fmt.Sprintf("CandleRecord{Symbol: %s, Interval: %s, Timestamp: %s, O: %g, H: %g, L: %g, C: %g, V: %g}",
		c.Symbol, c.Interval, c.TimestampString(), c.Open, c.High, c.Low, c.Close, c.Volume)
}
