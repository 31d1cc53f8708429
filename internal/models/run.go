package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus tracks the lifecycle of one engine invocation.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"   // RunStatusRunning indicates the operation is executing
	RunStatusCompleted RunStatus = "completed" // RunStatusCompleted indicates the operation finished successfully
	RunStatusFailed    RunStatus = "failed"    // RunStatusFailed indicates the operation terminated with an error
)

// OperationType identifies which engine operation a run executes.
type OperationType string

const (
	OperationTypeVolumeStats   OperationType = "volume_stats"   // point-in-time volume statistics
	OperationTypeFetch         OperationType = "fetch"          // incremental sync into the local store
	OperationTypeGenerateSlice OperationType = "generate_slice" // sync plus sub-window export
)

// ValidOperationType reports whether t names a known operation.
func ValidOperationType(t OperationType) bool {
	switch t {
	case OperationTypeVolumeStats, OperationTypeFetch, OperationTypeGenerateSlice:
		return true
	}
	return false
}

// OperationRun is the in-memory record of a single engine invocation,
// used to correlate every log line of that invocation under one run ID.
// Runs are never persisted.
type OperationRun struct {
	ID         string        `json:"id"`
	Name       string        `json:"name,omitempty"`
	Type       OperationType `json:"type"`
	Symbol     string        `json:"symbol"`
	Interval   string        `json:"interval"`
	Status     RunStatus     `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// NewOperationRun creates a running OperationRun with a fresh UUID.
// Name is the registry operation name when the run came from the
// registry, empty for ad-hoc invocations.
func NewOperationRun(name string, opType OperationType, symbol, interval string) *OperationRun {
	return &OperationRun{
		ID:        uuid.New().String(),
		Name:      name,
		Type:      opType,
		Symbol:    symbol,
		Interval:  interval,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
}

// Complete marks the run finished successfully.
func (r *OperationRun) Complete() {
	r.Status = RunStatusCompleted
	r.FinishedAt = time.Now().UTC()
}

// Fail marks the run failed with the given error.
func (r *OperationRun) Fail(err error) {
	r.Status = RunStatusFailed
	r.FinishedAt = time.Now().UTC()
	if err != nil {
		r.Error = err.Error()
	}
}

// ElapsedTime returns how long the run took, or the time since start
// when it is still running.
func (r *OperationRun) ElapsedTime() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
