// Package gaps computes which sub-ranges of a requested window are not
// yet covered by the local store and therefore need an upstream fetch.
package gaps

import (
	"log/slog"

	"github.com/Manu2954/MarketSummariser-2.0/internal/models"
)

// Detector decomposes a requested window into the gap ranges missing
// from local coverage.
//
// Detection is boundary-only: it sees data missing before the earliest
// stored point and after the latest stored point. Interior holes
// between the coverage bounds are invisible to it and are not
// repaired.
type Detector struct {
	logger *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger replaces the default component logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// NewDetector creates a gap detector.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		logger: slog.Default().With("component", "gap_detector"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns the gap ranges of window not covered locally.
// coverage is nil when the store holds no rows.
//
//   - No coverage: the full window is one gap.
//   - Coverage fully contains the window: no gaps, no fetch needed.
//   - Otherwise: [window.Start, coverage.Min) when the window starts
//     before coverage, and (coverage.Max, window.End] when it ends
//     after. If neither boundary produces a range, the full window is
//     returned as a fallback.
//
// All comparisons are instant-based; the locations attached to the
// bounds do not matter.
func (d *Detector) Detect(coverage *models.CoverageRange, window models.TimeWindow) []models.GapRange {
	if coverage == nil {
		d.logger.Debug("no local coverage, fetching full window",
			"start", window.Start, "end", window.End)
		return []models.GapRange{window}
	}

	if coverage.ContainsWindow(window) {
		d.logger.Debug("window fully covered locally, skipping fetch",
			"coverage_min", coverage.Min, "coverage_max", coverage.Max)
		return nil
	}

	var ranges []models.GapRange
	if window.Start.Before(coverage.Min) {
		ranges = append(ranges, models.GapRange{Start: window.Start, End: coverage.Min})
	}
	if window.End.After(coverage.Max) {
		ranges = append(ranges, models.GapRange{Start: coverage.Max, End: window.End})
	}
	if len(ranges) == 0 {
		// Coverage exists but neither boundary extends past it, and
		// containment already failed: fall back to the full window.
		ranges = append(ranges, window)
	}

	d.logger.Debug("computed gap ranges", "count", len(ranges))
	return ranges
}
