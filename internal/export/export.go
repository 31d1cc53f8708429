// Package export writes windowed slices of the candle store to
// standalone files. The output format follows the target file's
// extension: csv, parquet, or json.
package export

import (
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/Manu2954/MarketSummariser-2.0/internal/models"
)

// Record is the flat row written to slice files. Missing numeric
// values are nil so every format has a native null spelling: empty
// CSV cells, JSON null, parquet optional columns.
type Record struct {
	Timestamp     string   `json:"timestamp" parquet:"timestamp"`
	Open          *float64 `json:"open" parquet:"open,optional"`
	High          *float64 `json:"high" parquet:"high,optional"`
	Low           *float64 `json:"low" parquet:"low,optional"`
	Close         *float64 `json:"close" parquet:"close,optional"`
	Volume        *float64 `json:"volume" parquet:"volume,optional"`
	QuoteVolume   *float64 `json:"quote_volume" parquet:"quote_volume,optional"`
	Trades        *int64   `json:"trades" parquet:"trades,optional"`
	TakerBuyBase  *float64 `json:"taker_buy_base" parquet:"taker_buy_base,optional"`
	TakerBuyQuote *float64 `json:"taker_buy_quote" parquet:"taker_buy_quote,optional"`
	Interval      string   `json:"interval" parquet:"interval"`
	Symbol        string   `json:"symbol" parquet:"symbol"`
}

// FromCandles converts candle records into export rows, formatting
// timestamps as wall-clock strings in the given display timezone. A
// nil location means UTC.
func FromCandles(records []models.CandleRecord, location *time.Location) []Record {
	if location == nil {
		location = time.UTC
	}

	rows := make([]Record, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Record{
			Timestamp:     rec.Timestamp.In(location).Format(models.TimestampLayout),
			Open:          floatPtr(rec.Open),
			High:          floatPtr(rec.High),
			Low:           floatPtr(rec.Low),
			Close:         floatPtr(rec.Close),
			Volume:        floatPtr(rec.Volume),
			QuoteVolume:   floatPtr(rec.QuoteVolume),
			Trades:        rec.Trades,
			TakerBuyBase:  floatPtr(rec.TakerBuyBase),
			TakerBuyQuote: floatPtr(rec.TakerBuyQuote),
			Interval:      rec.Interval,
			Symbol:        rec.Symbol,
		})
	}
	return rows
}

// DefaultSlicePath derives the slice target from the store path:
// data/BTCUSDT_1h.csv becomes data/BTCUSDT_1h_sliced.csv.
func DefaultSlicePath(storePath string) string {
	ext := filepath.Ext(storePath)
	return strings.TrimSuffix(storePath, ext) + "_sliced" + ext
}

func floatPtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
