package exchange

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/Manu2954/MarketSummariser-2.0/internal/errors"
	"github.com/Manu2954/MarketSummariser-2.0/internal/models"
)

// Normalizer converts raw kline rows into canonical candle records,
// stamping them with the display timezone and the owning symbol and
// interval.
//
// Numeric coercion is forgiving: a price or volume that fails to parse
// becomes NaN and the row is kept, matching how the store represents
// missing cells. A trade count that fails to parse becomes nil. Only
// an unusable open time rejects the batch, because without it the row
// cannot be placed on the timeline at all.
type Normalizer struct {
	location *time.Location
	logger   *slog.Logger
}

// NewNormalizer creates a normalizer for the given display timezone.
// A nil location means UTC.
func NewNormalizer(location *time.Location) *Normalizer {
	if location == nil {
		location = time.UTC
	}
	return &Normalizer{
		location: location,
		logger:   slog.Default().With("component", "normalizer"),
	}
}

// NewNormalizerWithLogger creates a normalizer with a custom logger.
func NewNormalizerWithLogger(location *time.Location, logger *slog.Logger) *Normalizer {
	n := NewNormalizer(location)
	n.logger = logger
	return n
}

// Normalize converts one batch of raw rows into candle records. The
// output keeps the input order; deduplication and sorting belong to
// the store.
func (n *Normalizer) Normalize(rows []RawKline, symbol, interval string) ([]models.CandleRecord, error) {
	records := make([]models.CandleRecord, 0, len(rows))
	for i, row := range rows {
		ms, err := row.OpenTimeMS()
		if err != nil {
			return nil, apperrors.NewUpstreamFetch(err, symbol, interval).
				With("row", i)
		}

		records = append(records, models.CandleRecord{
			Timestamp:     time.UnixMilli(ms).In(n.location),
			Open:          coerceFloat(row.Open),
			High:          coerceFloat(row.High),
			Low:           coerceFloat(row.Low),
			Close:         coerceFloat(row.Close),
			Volume:        coerceFloat(row.Volume),
			QuoteVolume:   coerceFloat(row.QuoteVolume),
			Trades:        coerceCount(row.Trades),
			TakerBuyBase:  coerceFloat(row.TakerBuyBase),
			TakerBuyQuote: coerceFloat(row.TakerBuyQuote),
			Interval:      interval,
			Symbol:        symbol,
		})
	}

	n.logger.Debug("normalized kline rows",
		"symbol", symbol,
		"interval", interval,
		"rows", len(records))

	return records, nil
}

// coerceFloat parses a numeric field, yielding NaN when the value is
// absent or malformed.
func coerceFloat(value string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// coerceCount parses a trade count, yielding nil when the value is
// absent or malformed. Counts delivered in float form are truncated.
func coerceCount(value string) *int64 {
	trimmed := strings.TrimSpace(value)
	v, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(trimmed, 64)
		if ferr != nil {
			return nil
		}
		v = int64(f)
	}
	return &v
}
