// Package errors provides the classified error type shared by all
// components of the sync engine. Every failure surfaced to a caller
// carries an ErrorType from the taxonomy below plus enough context
// (symbol, interval, window) to diagnose it without re-running with
// verbose logging.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorType classifies a failure for handling decisions.
type ErrorType string

const (
	// Window resolution failures, detected before any network activity.
	ErrorTypeInvalidDuration    ErrorType = "invalid_duration"     // Lookback expression does not match <int><m|h|d>
	ErrorTypeMissingWindowInput ErrorType = "missing_window_input" // Neither bounds nor lookback supplied
	ErrorTypeInvalidWindow      ErrorType = "invalid_window"       // Resolved start is after resolved end

	// Upstream and storage failures.
	ErrorTypeUpstreamFetch     ErrorType = "upstream_fetch_failed" // Transport or non-2xx response during pagination
	ErrorTypeCorruptLocalStore ErrorType = "corrupt_local_store"   // Persisted store exists but fails to parse
	ErrorTypeStorage           ErrorType = "storage_failed"        // Filesystem write/rename failures

	// Definition failures, validated eagerly before any I/O.
	ErrorTypeInvalidConfig    ErrorType = "invalid_config"    // Configuration file or value rejected
	ErrorTypeInvalidOperation ErrorType = "invalid_operation" // Operation definition missing fields or unknown type

	ErrorTypeNoData ErrorType = "no_data" // Requested window holds no usable rows
)

// ClassifiedError is an error annotated with its taxonomy type and the
// identifying context of the operation that produced it.
type ClassifiedError struct {
	Err     error          `json:"error"`
	Type    ErrorType      `json:"type"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// Error implements the error interface.
func (ce *ClassifiedError) Error() string {
	msg := ce.Message
	if ctx := ce.contextString(); ctx != "" {
		msg = msg + " (" + ctx + ")"
	}
	if ce.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", ce.Type, msg, ce.Err)
	}
	return fmt.Sprintf("[%s] %s", ce.Type, msg)
}

// Unwrap returns the underlying cause, if any.
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// Is reports whether target is a ClassifiedError of the same type. A
// zero-context &ClassifiedError{Type: T} therefore acts as the sentinel
// for T in errors.Is chains.
func (ce *ClassifiedError) Is(target error) bool {
	if t, ok := target.(*ClassifiedError); ok {
		return ce.Type == t.Type
	}
	return errors.Is(ce.Err, target)
}

// With attaches a context field and returns the same error for
// chaining.
func (ce *ClassifiedError) With(key string, value any) *ClassifiedError {
	if ce.Context == nil {
		ce.Context = make(map[string]any)
	}
	ce.Context[key] = value
	return ce
}

func (ce *ClassifiedError) contextString() string {
	if len(ce.Context) == 0 {
		return ""
	}
	keys := make([]string, 0, len(ce.Context))
	for k := range ce.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, ce.Context[k]))
	}
	return strings.Join(parts, " ")
}

// New creates a ClassifiedError with no underlying cause.
func New(errorType ErrorType, message string) *ClassifiedError {
	return &ClassifiedError{Type: errorType, Message: message}
}

// Wrap annotates an existing error with a type and message. Returns nil
// when err is nil so call sites can wrap unconditionally.
func Wrap(err error, errorType ErrorType, message string) *ClassifiedError {
	if err == nil {
		return nil
	}
	return &ClassifiedError{Err: err, Type: errorType, Message: message}
}

// Constructors for the common cases. Each returns a ClassifiedError so
// context fields can be chained on.

// NewInvalidDuration reports a lookback expression that does not match
// the <integer><m|h|d> grammar.
func NewInvalidDuration(expr string) *ClassifiedError {
	return New(ErrorTypeInvalidDuration,
		fmt.Sprintf("unsupported duration %q, use formats like 30m, 12h, 3d", expr))
}

// NewMissingWindowInput reports that the window cannot be resolved from
// the supplied inputs.
func NewMissingWindowInput(message string) *ClassifiedError {
	return New(ErrorTypeMissingWindowInput, message)
}

// NewInvalidWindow reports a resolved window whose start is after its
// end.
func NewInvalidWindow(start, end time.Time) *ClassifiedError {
	return New(ErrorTypeInvalidWindow, "start time must not be after end time").
		With("start", start.Format(time.RFC3339)).
		With("end", end.Format(time.RFC3339))
}

// NewUpstreamFetch wraps a transport or HTTP failure from the upstream
// API. Fatal for the whole operation: nothing fetched earlier in the
// same run is persisted.
func NewUpstreamFetch(err error, symbol, interval string) *ClassifiedError {
	return Wrap(err, ErrorTypeUpstreamFetch, "upstream fetch failed").
		With("symbol", symbol).
		With("interval", interval)
}

// NewCorruptLocalStore wraps a parse failure on the persisted store.
func NewCorruptLocalStore(err error, path string) *ClassifiedError {
	return Wrap(err, ErrorTypeCorruptLocalStore, "persisted store failed to parse").
		With("path", path)
}

// NewStorage wraps a filesystem failure while persisting.
func NewStorage(err error, path string) *ClassifiedError {
	return Wrap(err, ErrorTypeStorage, "store write failed").
		With("path", path)
}

// NewInvalidConfig reports a rejected configuration value.
func NewInvalidConfig(message string) *ClassifiedError {
	return New(ErrorTypeInvalidConfig, message)
}

// NewInvalidOperation reports a rejected operation definition.
func NewInvalidOperation(name, message string) *ClassifiedError {
	return New(ErrorTypeInvalidOperation, message).With("operation", name)
}

// NewNoData reports that the requested window holds no usable rows.
func NewNoData(symbol, interval string) *ClassifiedError {
	return New(ErrorTypeNoData, "no volume data available for requested window").
		With("symbol", symbol).
		With("interval", interval)
}

// GetErrorType extracts the taxonomy type from anywhere in err's chain,
// or "" when the chain holds no ClassifiedError.
func GetErrorType(err error) ErrorType {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ""
}

// IsType reports whether err's chain contains a ClassifiedError of the
// given type.
func IsType(err error, errorType ErrorType) bool {
	return GetErrorType(err) == errorType
}
