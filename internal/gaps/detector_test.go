package gaps

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manu2954/MarketSummariser-2.0/internal/models"
)

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestDetectNoCoverage(t *testing.T) {
	d := NewDetector()
	window := models.TimeWindow{Start: ts(t, "2024-05-01T00:00:00Z"), End: ts(t, "2024-05-02T00:00:00Z")}

	ranges := d.Detect(nil, window)

	require.Len(t, ranges, 1)
	assert.Equal(t, window.Start, ranges[0].Start)
	assert.Equal(t, window.End, ranges[0].End)
}

func TestDetectFullyCovered(t *testing.T) {
	d := NewDetector()
	coverage := &models.CoverageRange{Min: ts(t, "2024-05-01T00:00:00Z"), Max: ts(t, "2024-05-10T00:00:00Z")}
	window := models.TimeWindow{Start: ts(t, "2024-05-03T00:00:00Z"), End: ts(t, "2024-05-07T00:00:00Z")}

	assert.Empty(t, d.Detect(coverage, window))
}

func TestDetectExactCoverageBounds(t *testing.T) {
	d := NewDetector()
	coverage := &models.CoverageRange{Min: ts(t, "2024-05-01T00:00:00Z"), Max: ts(t, "2024-05-10T00:00:00Z")}
	window := models.TimeWindow{Start: coverage.Min, End: coverage.Max}

	// Containment is inclusive at both bounds.
	assert.Empty(t, d.Detect(coverage, window))
}

func TestDetectLeadingGap(t *testing.T) {
	d := NewDetector()
	coverage := &models.CoverageRange{Min: ts(t, "2024-05-05T00:00:00Z"), Max: ts(t, "2024-05-10T00:00:00Z")}
	window := models.TimeWindow{Start: ts(t, "2024-05-01T00:00:00Z"), End: ts(t, "2024-05-08T00:00:00Z")}

	ranges := d.Detect(coverage, window)

	require.Len(t, ranges, 1)
	assert.Equal(t, window.Start, ranges[0].Start)
	assert.Equal(t, coverage.Min, ranges[0].End)
}

func TestDetectTrailingGap(t *testing.T) {
	d := NewDetector()
	coverage := &models.CoverageRange{Min: ts(t, "2024-05-01T00:00:00Z"), Max: ts(t, "2024-05-05T00:00:00Z")}
	window := models.TimeWindow{Start: ts(t, "2024-05-03T00:00:00Z"), End: ts(t, "2024-05-10T00:00:00Z")}

	ranges := d.Detect(coverage, window)

	require.Len(t, ranges, 1)
	assert.Equal(t, coverage.Max, ranges[0].Start)
	assert.Equal(t, window.End, ranges[0].End)
}

func TestDetectGapsOnBothSides(t *testing.T) {
	d := NewDetector()
	coverage := &models.CoverageRange{Min: ts(t, "2024-05-03T00:00:00Z"), Max: ts(t, "2024-05-07T00:00:00Z")}
	window := models.TimeWindow{Start: ts(t, "2024-05-01T00:00:00Z"), End: ts(t, "2024-05-10T00:00:00Z")}

	ranges := d.Detect(coverage, window)

	require.Len(t, ranges, 2)
	assert.Equal(t, window.Start, ranges[0].Start)
	assert.Equal(t, coverage.Min, ranges[0].End)
	assert.Equal(t, coverage.Max, ranges[1].Start)
	assert.Equal(t, window.End, ranges[1].End)
}

func TestDetectInteriorHoleInvisible(t *testing.T) {
	d := NewDetector()
	// Coverage bounds span the window even though rows inside may be
	// missing; boundary detection reports nothing to fetch.
	coverage := &models.CoverageRange{Min: ts(t, "2024-05-01T00:00:00Z"), Max: ts(t, "2024-05-10T00:00:00Z")}
	window := models.TimeWindow{Start: ts(t, "2024-05-02T00:00:00Z"), End: ts(t, "2024-05-09T00:00:00Z")}

	assert.Empty(t, d.Detect(coverage, window))
}

func TestDetectDisjointCoverage(t *testing.T) {
	d := NewDetector()
	// Stored rows end well before the requested window starts.
	coverage := &models.CoverageRange{Min: ts(t, "2024-04-01T00:00:00Z"), Max: ts(t, "2024-04-10T00:00:00Z")}
	window := models.TimeWindow{Start: ts(t, "2024-05-01T00:00:00Z"), End: ts(t, "2024-05-10T00:00:00Z")}

	ranges := d.Detect(coverage, window)

	require.Len(t, ranges, 1)
	assert.Equal(t, coverage.Max, ranges[0].Start)
	assert.Equal(t, window.End, ranges[0].End)
}

func TestDetectWithLoggerOption(t *testing.T) {
	d := NewDetector(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	window := models.TimeWindow{Start: ts(t, "2024-05-01T00:00:00Z"), End: ts(t, "2024-05-02T00:00:00Z")}

	require.Len(t, d.Detect(nil, window), 1)
}
