package models

import "fmt"

// VolumeStats is the aggregate produced by the stats operation: row
// count, arithmetic mean, and 95th percentile of volume over the
// resolved window. Rows counts only records with a usable volume value.
type VolumeStats struct {
	Symbol    string     `json:"symbol"`
	Interval  string     `json:"interval"`
	Window    TimeWindow `json:"window"`
	Rows      int        `json:"rows"`
	AvgVolume float64    `json:"avg_volume"`
	P95Volume float64    `json:"p95_volume"`
}

// String implements fmt.Stringer in the form the CLI prints.
func (s *VolumeStats) String() string {
	return fmt.Sprintf("rows=%d, avg_volume=%.6f, p95_volume=%.6f", s.Rows, s.AvgVolume, s.P95Volume)
}

// SyncResult reports the outcome of a sync operation.
type SyncResult struct {
	Symbol   string     `json:"symbol"`
	Interval string     `json:"interval"`
	Window   TimeWindow `json:"window"`

	// Rows is the total row count of the merged store after the sync.
	Rows int `json:"rows"`

	// Fetched is the number of rows retrieved from upstream in this run,
	// before deduplication.
	Fetched int `json:"fetched"`

	// MissingEstimate is the informational gap estimate over the merged
	// store (expected rows for its span minus actual rows). Never used
	// for correctness decisions.
	MissingEstimate int `json:"missing_estimate"`

	// Persisted is false for dry runs and empty merges.
	Persisted bool `json:"persisted"`

	// Path is the persisted store location, empty when nothing was
	// written.
	Path string `json:"path,omitempty"`
}

// SliceResult reports the outcome of a slice operation: the sync that
// refreshed the base store plus the exported sub-window.
type SliceResult struct {
	Sync       SyncResult `json:"sync"`
	SliceRows  int        `json:"slice_rows"`
	SlicePath  string     `json:"slice_path"`
	SliceStart string     `json:"slice_start"`
	SliceEnd   string     `json:"slice_end"`
}
