package models

import (
	"fmt"
	"time"
)

// TimeWindow is a pair of instants with the invariant Start ≤ End.
// Whether the bounds are UTC or display-timezone instants depends on
// the stage of the pipeline; the instants themselves are unambiguous.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeWindow builds a window and enforces the ordering invariant.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	w := TimeWindow{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return TimeWindow{}, err
	}
	return w, nil
}

// Validate checks the ordering invariant.
func (w TimeWindow) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("window bounds cannot be zero")
	}
	if w.Start.After(w.End) {
		return fmt.Errorf("window start %s is after end %s",
			w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}
	return nil
}

// Duration returns End − Start.
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains reports whether t falls inside the window, both bounds
// inclusive.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// In returns the window with both bounds converted to loc. The instants
// are unchanged.
func (w TimeWindow) In(loc *time.Location) TimeWindow {
	return TimeWindow{Start: w.Start.In(loc), End: w.End.In(loc)}
}

// String implements fmt.Stringer.
func (w TimeWindow) String() string {
	return fmt.Sprintf("[%s, %s]", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// GapRange is a sub-window of a request that is not covered locally and
// therefore requires an upstream fetch. A request decomposes into zero,
// one, or two gap ranges.
type GapRange = TimeWindow

// CoverageRange is the [min, max] timestamp span of a stored record
// set for one (symbol, interval). A store with no rows has no coverage.
type CoverageRange struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

// ContainsWindow reports whether the coverage fully contains w, i.e.
// Min ≤ w.Start and Max ≥ w.End.
func (c CoverageRange) ContainsWindow(w TimeWindow) bool {
	return !c.Min.After(w.Start) && !c.Max.Before(w.End)
}

// String implements fmt.Stringer.
func (c CoverageRange) String() string {
	return fmt.Sprintf("[%s, %s]", c.Min.Format(TimestampLayout), c.Max.Format(TimestampLayout))
}
