// Package window resolves requested time windows from explicit bounds,
// relative lookback expressions, and input timezones into concrete UTC
// windows. Resolution happens before any network or storage activity,
// so every failure here is an input error.
package window

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	apperrors "github.com/Manu2954/MarketSummariser-2.0/internal/errors"
	"github.com/Manu2954/MarketSummariser-2.0/internal/models"
)

// Request carries the raw window inputs as the caller supplied them.
// Empty strings mean "not given".
type Request struct {
	// Start and End are ISO 8601 timestamps, with or without an
	// embedded offset.
	Start string
	End   string

	// Lookback is a relative duration like "30m", "12h", "3d".
	Lookback string

	// InputTimezone is the IANA zone used to interpret Start/End when
	// supplied. It overrides any offset embedded in the timestamps.
	InputTimezone string
}

// Resolver turns Requests into concrete UTC windows.
type Resolver struct {
	now func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// NewResolver creates a Resolver using the real clock unless overridden.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve applies the resolution rules in order:
//
//  1. Neither bound given: lookback is required, window = [now−lookback, now].
//  2. Start given, end absent: end = now.
//  3. End given, start absent: lookback is required, start = end−lookback.
//  4. Both given: used as-is.
//
// The resolved window is returned in UTC and must satisfy start ≤ end.
func (r *Resolver) Resolve(req Request) (models.TimeWindow, error) {
	var inputLoc *time.Location
	if req.InputTimezone != "" {
		loc, err := time.LoadLocation(req.InputTimezone)
		if err != nil {
			return models.TimeWindow{}, apperrors.Wrap(err, apperrors.ErrorTypeInvalidConfig,
				"unknown input timezone "+strconv.Quote(req.InputTimezone))
		}
		inputLoc = loc
	}

	var startAt, endAt time.Time
	if req.Start != "" {
		t, err := ParseTimestamp(req.Start, inputLoc)
		if err != nil {
			return models.TimeWindow{}, err
		}
		startAt = t
	}
	if req.End != "" {
		t, err := ParseTimestamp(req.End, inputLoc)
		if err != nil {
			return models.TimeWindow{}, err
		}
		endAt = t
	}

	now := r.now().UTC()
	switch {
	case startAt.IsZero() && endAt.IsZero():
		if req.Lookback == "" {
			return models.TimeWindow{}, apperrors.NewMissingWindowInput("provide either start/end or lookback")
		}
		lookback, err := ParseLookback(req.Lookback)
		if err != nil {
			return models.TimeWindow{}, err
		}
		startAt = now.Add(-lookback)
		endAt = now
	case !startAt.IsZero() && endAt.IsZero():
		endAt = now
	case startAt.IsZero() && !endAt.IsZero():
		if req.Lookback == "" {
			return models.TimeWindow{}, apperrors.NewMissingWindowInput("provide start or lookback with end")
		}
		lookback, err := ParseLookback(req.Lookback)
		if err != nil {
			return models.TimeWindow{}, err
		}
		startAt = endAt.Add(-lookback)
	}

	if startAt.After(endAt) {
		return models.TimeWindow{}, apperrors.NewInvalidWindow(startAt, endAt)
	}
	return models.TimeWindow{Start: startAt, End: endAt}, nil
}

// ParseLookback parses a relative duration expression: an integer
// immediately followed by one of m (minutes), h (hours), d (days),
// case-insensitive.
func ParseLookback(expr string) (time.Duration, error) {
	trimmed := strings.ToLower(strings.TrimSpace(expr))
	if trimmed == "" {
		return 0, apperrors.New(apperrors.ErrorTypeInvalidDuration, "lookback value is empty")
	}

	var digits, unit strings.Builder
	for _, r := range trimmed {
		switch {
		case unicode.IsDigit(r):
			digits.WriteRune(r)
		case unicode.IsLetter(r):
			unit.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, apperrors.NewInvalidDuration(expr)
	}
	value, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, apperrors.NewInvalidDuration(expr)
	}

	switch unit.String() {
	case "m":
		return time.Duration(value) * time.Minute, nil
	case "h":
		return time.Duration(value) * time.Hour, nil
	case "d":
		return time.Duration(value) * 24 * time.Hour, nil
	default:
		return 0, apperrors.NewInvalidDuration(expr)
	}
}

// timestampLayouts are the accepted forms, tried in order. Layouts with
// an offset come first so the embedded-offset case is recognized.
var timestampLayouts = []struct {
	layout    string
	hasOffset bool
}{
	{layout: time.RFC3339, hasOffset: true},
	{layout: "2006-01-02 15:04:05Z07:00", hasOffset: true},
	{layout: "2006-01-02T15:04:05", hasOffset: false},
	{layout: "2006-01-02 15:04:05", hasOffset: false},
	{layout: "2006-01-02", hasOffset: false},
}

// ParseTimestamp parses an ISO 8601 timestamp and returns the instant
// in UTC. When inputLoc is non-nil the wall-clock fields are
// reinterpreted in that zone, overriding any embedded offset; otherwise
// an embedded offset is honored and a naive timestamp is read as UTC.
func ParseTimestamp(raw string, inputLoc *time.Location) (time.Time, error) {
	value := strings.TrimSpace(raw)

	for _, entry := range timestampLayouts {
		parsed, err := time.Parse(entry.layout, value)
		if err != nil {
			continue
		}
		if inputLoc != nil {
			y, mo, d := parsed.Date()
			h, mi, s := parsed.Clock()
			return time.Date(y, mo, d, h, mi, s, parsed.Nanosecond(), inputLoc).UTC(), nil
		}
		if entry.hasOffset {
			return parsed.UTC(), nil
		}
		y, mo, d := parsed.Date()
		h, mi, s := parsed.Clock()
		return time.Date(y, mo, d, h, mi, s, parsed.Nanosecond(), time.UTC), nil
	}

	return time.Time{}, apperrors.New(apperrors.ErrorTypeInvalidWindow,
		"cannot parse timestamp "+strconv.Quote(raw))
}
