// Package stats computes point-in-time volume statistics over a
// windowed slice of the candle store.
package stats

import (
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	apperrors "github.com/Manu2954/MarketSummariser-2.0/internal/errors"
	"github.com/Manu2954/MarketSummariser-2.0/internal/models"
)

// Aggregator filters a record set to a window and reduces the volume
// column to count, mean, and 95th percentile.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates a volume statistics aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		logger: slog.Default().With("component", "stats"),
	}
}

// NewAggregatorWithLogger creates an aggregator with a custom logger.
func NewAggregatorWithLogger(logger *slog.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// VolumeStats reduces the records inside the window, both bounds
// inclusive, to volume statistics. Rows without a usable volume are
// skipped and do not count. Returns a no-data error when the window
// holds no usable rows.
//
// The mean is accumulated in decimal arithmetic; the percentile uses
// linear interpolation between the two nearest ranks, matching how
// the stats were defined originally.
func (a *Aggregator) VolumeStats(records []models.CandleRecord, window models.TimeWindow, symbol, interval string) (*models.VolumeStats, error) {
	volumes := make([]float64, 0, len(records))
	for _, rec := range records {
		if !window.Contains(rec.Timestamp) {
			continue
		}
		if !rec.HasVolume() {
			continue
		}
		volumes = append(volumes, rec.Volume)
	}

	if len(volumes) == 0 {
		return nil, apperrors.NewNoData(symbol, interval)
	}

	a.logger.Debug("aggregating volumes",
		"symbol", symbol,
		"interval", interval,
		"rows", len(volumes))

	return &models.VolumeStats{
		Symbol:    symbol,
		Interval:  interval,
		Window:    window,
		Rows:      len(volumes),
		AvgVolume: mean(volumes),
		P95Volume: quantile(volumes, 0.95),
	}, nil
}

// mean computes the average volume with decimal accumulation, so long
// sums do not drift.
func mean(volumes []float64) float64 {
	sum := decimal.Zero
	for _, v := range volumes {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(volumes))))
	return avg.InexactFloat64()
}

// quantile computes the q-th quantile with linear interpolation
// between the two nearest ranks of the sorted values.
func quantile(volumes []float64, q float64) float64 {
	sorted := make([]float64, len(volumes))
	copy(sorted, volumes)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := q * float64(len(sorted)-1)
	lower := int(rank)
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}

	frac := decimal.NewFromFloat(rank - float64(lower))
	lo := decimal.NewFromFloat(sorted[lower])
	hi := decimal.NewFromFloat(sorted[lower+1])
	return lo.Add(hi.Sub(lo).Mul(frac)).InexactFloat64()
}
