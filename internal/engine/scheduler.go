package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	apperrors "github.com/Manu2954/MarketSummariser-2.0/internal/errors"
)

// Scheduler repeatedly runs one named registry operation on a cron
// schedule until stopped. Runs are strictly sequential: cron fires each
// tick on its own goroutine, but a tick that arrives while the previous
// run is still executing is skipped with a warning instead of
// overlapping it.
type Scheduler struct {
	registry *Registry
	cron     *cron.Cron
	logger   *slog.Logger

	isRunning int32
	busy      int32
}

// NewScheduler creates a Scheduler driving the given registry.
func NewScheduler(registry *Registry) *Scheduler {
	return NewSchedulerWithLogger(registry, slog.Default().With("component", "scheduler"))
}

// NewSchedulerWithLogger is NewScheduler with an explicit logger.
func NewSchedulerWithLogger(registry *Registry, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		registry: registry,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start registers the operation on the schedule and starts the cron
// loop. The schedule accepts standard five-field cron expressions and
// descriptors like "@every 5m" or "@hourly". The operation must exist
// in the registry; an unknown name fails here rather than on the first
// tick.
func (s *Scheduler) Start(ctx context.Context, operation, schedule string) error {
	if !atomic.CompareAndSwapInt32(&s.isRunning, 0, 1) {
		return fmt.Errorf("scheduler is already running")
	}

	if _, ok := s.registry.Lookup(operation); !ok {
		atomic.StoreInt32(&s.isRunning, 0)
		return apperrors.NewInvalidOperation(operation, "operation is not defined")
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		s.execute(ctx, operation)
	})
	if err != nil {
		atomic.StoreInt32(&s.isRunning, 0)
		return apperrors.Wrap(err, apperrors.ErrorTypeInvalidConfig,
			fmt.Sprintf("invalid schedule %q", schedule))
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		"operation", operation,
		"schedule", schedule,
		"next_run", s.cron.Entry(entryID).Next,
	)
	return nil
}

// Stop halts the cron loop and waits for an in-flight run to finish,
// bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.isRunning, 1, 0) {
		return fmt.Errorf("scheduler is not running")
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out", "error", ctx.Err())
		return ctx.Err()
	}
}

// IsRunning reports whether the scheduler has been started and not yet
// stopped.
func (s *Scheduler) IsRunning() bool {
	return atomic.LoadInt32(&s.isRunning) == 1
}

// execute runs one scheduled invocation, skipping it when the previous
// one has not finished.
func (s *Scheduler) execute(ctx context.Context, operation string) {
	if !atomic.CompareAndSwapInt32(&s.busy, 0, 1) {
		s.logger.Warn("previous run still in progress, skipping this tick",
			"operation", operation)
		return
	}
	defer atomic.StoreInt32(&s.busy, 0)

	started := time.Now()
	if _, err := s.registry.Run(ctx, operation); err != nil {
		s.logger.Error("scheduled run failed",
			"operation", operation,
			"error", err,
			"elapsed", time.Since(started),
		)
		return
	}
	s.logger.Info("scheduled run completed",
		"operation", operation,
		"elapsed", time.Since(started),
	)
}
