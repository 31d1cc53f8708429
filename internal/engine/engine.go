// Package engine orchestrates the synchronization pipeline end to end:
// window resolution, gap detection against local coverage, paginated
// upstream fetching, normalization, merge, and persist or aggregate.
// The engine is strictly sequential. It never spawns goroutines; every
// stage runs to completion before the next begins, and a failure in any
// stage aborts the whole operation without persisting partial results.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/Manu2954/MarketSummariser-2.0/internal/config"
	apperrors "github.com/Manu2954/MarketSummariser-2.0/internal/errors"
	"github.com/Manu2954/MarketSummariser-2.0/internal/exchange"
	"github.com/Manu2954/MarketSummariser-2.0/internal/export"
	"github.com/Manu2954/MarketSummariser-2.0/internal/gaps"
	"github.com/Manu2954/MarketSummariser-2.0/internal/models"
	"github.com/Manu2954/MarketSummariser-2.0/internal/stats"
	"github.com/Manu2954/MarketSummariser-2.0/internal/storage"
	"github.com/Manu2954/MarketSummariser-2.0/internal/window"
)

// Engine runs the sync, stats, and slice operations against one
// configured store layout and upstream endpoint. A single Engine is
// safe to reuse across sequential operations; concurrent invocations
// against the same (symbol, interval) are an external coordination
// problem, the store has no file locking.
type Engine struct {
	cfg        *config.AppConfig
	location   *time.Location
	resolver   *window.Resolver
	detector   *gaps.Detector
	source     exchange.KlineSource
	normalizer *exchange.Normalizer
	store      storage.Store
	aggregator *stats.Aggregator
	logger     *slog.Logger
}

// Option overrides one of the default components, mainly for tests.
type Option func(*Engine)

// WithSource replaces the upstream klines source.
func WithSource(source exchange.KlineSource) Option {
	return func(e *Engine) {
		e.source = source
	}
}

// WithStore replaces the record store.
func WithStore(store storage.Store) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithResolver replaces the window resolver, used by tests to pin the
// clock.
func WithResolver(resolver *window.Resolver) Option {
	return func(e *Engine) {
		e.resolver = resolver
	}
}

// New creates an Engine with the default wiring derived from cfg: a
// Binance klines client and a CSV-backed store.
func New(cfg *config.AppConfig, opts ...Option) (*Engine, error) {
	return NewWithLogger(cfg, slog.Default().With("component", "engine"), opts...)
}

// NewWithLogger is New with an explicit logger. The logger is the base
// for the per-run loggers every operation derives.
func NewWithLogger(cfg *config.AppConfig, logger *slog.Logger, opts ...Option) (*Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:        cfg,
		location:   loc,
		resolver:   window.NewResolver(),
		detector:   gaps.NewDetector(gaps.WithLogger(logger.With("component", "gap_detector"))),
		source:     exchange.NewClientWithLogger(cfg.Request, logger.With("component", "binance_client")),
		normalizer: exchange.NewNormalizerWithLogger(loc, logger.With("component", "normalizer")),
		store:      storage.NewCSVStoreWithLogger(cfg.CSV, loc, logger.With("component", "csv_store")),
		aggregator: stats.NewAggregatorWithLogger(logger.With("component", "stats")),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Location returns the configured display timezone.
func (e *Engine) Location() *time.Location {
	return e.location
}

// ResolveWindow resolves raw window inputs into a concrete UTC window.
func (e *Engine) ResolveWindow(req window.Request) (models.TimeWindow, error) {
	return e.resolver.Resolve(req)
}

// StorePath returns where the store for (symbol, interval) lives.
func (e *Engine) StorePath(symbol, interval string) string {
	return e.store.Location(symbol, interval)
}

// Sync brings the local store for (symbol, interval) up to date over
// the given window: gaps between the window and the stored coverage are
// fetched from upstream, normalized, merged, and persisted. With dryRun
// the fetch and merge still happen but nothing is written.
func (e *Engine) Sync(ctx context.Context, symbol, interval string, win models.TimeWindow, dryRun bool) (*models.SyncResult, error) {
	run := models.NewOperationRun("", models.OperationTypeFetch, symbol, interval)
	log := e.runLogger(run, win)
	log.Info("sync started", "dry_run", dryRun)

	result, _, err := e.sync(ctx, log, symbol, interval, win, dryRun)
	if err != nil {
		run.Fail(err)
		log.Error("sync failed", "error", err, "elapsed", run.ElapsedTime())
		return nil, err
	}

	run.Complete()
	log.Info("sync completed",
		"rows", result.Rows,
		"fetched", result.Fetched,
		"missing_estimate", result.MissingEstimate,
		"persisted", result.Persisted,
		"elapsed", run.ElapsedTime(),
	)
	return result, nil
}

// Stats computes volume statistics over the window, first ensuring the
// local store covers it. New rows fetched to close gaps are persisted
// before aggregation, so the statistics always describe what is on
// disk.
func (e *Engine) Stats(ctx context.Context, symbol, interval string, win models.TimeWindow) (*models.VolumeStats, error) {
	run := models.NewOperationRun("", models.OperationTypeVolumeStats, symbol, interval)
	log := e.runLogger(run, win)
	log.Info("stats started")

	merged, fetched, err := e.ensure(ctx, log, symbol, interval, win)
	if err != nil {
		run.Fail(err)
		log.Error("stats failed", "error", err, "elapsed", run.ElapsedTime())
		return nil, err
	}
	if fetched > 0 {
		if err := e.store.Persist(ctx, merged, symbol, interval); err != nil {
			run.Fail(err)
			log.Error("stats failed", "error", err, "elapsed", run.ElapsedTime())
			return nil, err
		}
	}

	records, err := e.store.Load(ctx, symbol, interval)
	if err != nil {
		run.Fail(err)
		log.Error("stats failed", "error", err, "elapsed", run.ElapsedTime())
		return nil, err
	}

	result, err := e.aggregator.VolumeStats(records, win, symbol, interval)
	if err != nil {
		run.Fail(err)
		log.Warn("stats produced no result", "error", err, "elapsed", run.ElapsedTime())
		return nil, err
	}

	run.Complete()
	log.Info("stats completed",
		"rows", result.Rows,
		"avg_volume", result.AvgVolume,
		"p95_volume", result.P95Volume,
		"elapsed", run.ElapsedTime(),
	)
	return result, nil
}

// Slice syncs the window like Sync and then exports the records inside
// it to outputPath. An empty outputPath derives the target from the
// store file, "<stem>_sliced<ext>". The output format follows the
// target extension, falling back to CSV.
func (e *Engine) Slice(ctx context.Context, symbol, interval string, win models.TimeWindow, outputPath string) (*models.SliceResult, error) {
	run := models.NewOperationRun("", models.OperationTypeGenerateSlice, symbol, interval)
	log := e.runLogger(run, win)
	log.Info("slice started", "output", outputPath)

	syncResult, merged, err := e.sync(ctx, log, symbol, interval, win, false)
	if err != nil {
		run.Fail(err)
		log.Error("slice failed", "error", err, "elapsed", run.ElapsedTime())
		return nil, err
	}

	var sliced []models.CandleRecord
	for _, rec := range merged {
		if win.Contains(rec.Timestamp) {
			sliced = append(sliced, rec)
		}
	}

	target := outputPath
	if target == "" {
		target = export.DefaultSlicePath(e.store.Location(symbol, interval))
	}
	saver := export.SaverForPath(target)
	rows := export.FromCandles(sliced, e.location)
	if err := saver.Save(rows, target); err != nil {
		err = apperrors.NewStorage(err, target)
		run.Fail(err)
		log.Error("slice failed", "error", err, "elapsed", run.ElapsedTime())
		return nil, err
	}

	result := &models.SliceResult{
		Sync:       *syncResult,
		SliceRows:  len(rows),
		SlicePath:  target,
		SliceStart: win.Start.In(e.location).Format(models.TimestampLayout),
		SliceEnd:   win.End.In(e.location).Format(models.TimestampLayout),
	}

	run.Complete()
	log.Info("slice completed",
		"slice_rows", result.SliceRows,
		"slice_path", result.SlicePath,
		"format", saver.Extension(),
		"elapsed", run.ElapsedTime(),
	)
	return result, nil
}

// sync is the shared body of Sync and Slice: ensure coverage, estimate
// remaining holes, persist unless dry-running.
func (e *Engine) sync(ctx context.Context, log *slog.Logger, symbol, interval string, win models.TimeWindow, dryRun bool) (*models.SyncResult, []models.CandleRecord, error) {
	merged, fetched, err := e.ensure(ctx, log, symbol, interval, win)
	if err != nil {
		return nil, nil, err
	}

	result := &models.SyncResult{
		Symbol:   symbol,
		Interval: interval,
		Window:   win,
		Rows:     len(merged),
		Fetched:  fetched,
	}
	result.MissingEstimate = e.estimateMissing(log, merged, interval)

	if dryRun {
		log.Info("dry run, skipping persist", "rows", result.Rows)
		return result, merged, nil
	}

	if err := e.store.Persist(ctx, merged, symbol, interval); err != nil {
		return nil, nil, err
	}
	if len(merged) > 0 {
		result.Persisted = true
		result.Path = e.store.Location(symbol, interval)
	}
	return result, merged, nil
}

// ensure loads the store, detects the gaps between its coverage and the
// window, and fetches each gap from upstream. It returns the merged
// record set and how many rows came back from upstream, before
// deduplication. Any fetch or normalization failure is fatal: nothing
// fetched earlier in the same call survives.
func (e *Engine) ensure(ctx context.Context, log *slog.Logger, symbol, interval string, win models.TimeWindow) ([]models.CandleRecord, int, error) {
	stored, err := e.store.Load(ctx, symbol, interval)
	if err != nil {
		return nil, 0, err
	}

	coverage := storage.Coverage(stored)
	gapRanges := e.detector.Detect(coverage, win)
	if len(gapRanges) == 0 {
		log.Debug("window fully covered locally", "rows", len(stored))
		return stored, 0, nil
	}

	merged := stored
	fetched := 0
	for _, gap := range gapRanges {
		rows, err := e.source.FetchKlines(ctx, exchange.FetchRequest{
			Symbol:   symbol,
			Interval: interval,
			Start:    gap.Start,
			End:      gap.End,
		})
		if err != nil {
			return nil, 0, err
		}
		batch, err := e.normalizer.Normalize(rows, symbol, interval)
		if err != nil {
			return nil, 0, err
		}
		fetched += len(batch)
		merged = storage.Merge(merged, batch)
		e.logFetch(log, gap, batch, merged, interval)
	}
	return merged, fetched, nil
}

// logFetch reports one completed gap fetch: how many rows arrived, the
// first and last timestamps of the batch, and the hole estimate over
// the merged set so far.
func (e *Engine) logFetch(log *slog.Logger, gap models.GapRange, batch, merged []models.CandleRecord, interval string) {
	attrs := []any{
		"gap", gap.String(),
		"rows", len(batch),
		"missing_estimate", e.estimateMissing(log, merged, interval),
	}
	if len(batch) > 0 {
		attrs = append(attrs,
			"first", batch[0].TimestampString(),
			"last", batch[len(batch)-1].TimestampString(),
		)
	}
	log.Info("fetched gap range", attrs...)
}

// estimateMissing wraps storage.EstimateMissing as the informational
// figure it is: an unrecognized interval downgrades to a warning and a
// zero estimate instead of failing the operation.
func (e *Engine) estimateMissing(log *slog.Logger, records []models.CandleRecord, interval string) int {
	missing, err := storage.EstimateMissing(records, interval)
	if err != nil {
		log.Warn("cannot estimate missing rows", "error", err)
		return 0
	}
	return missing
}

// runLogger derives the logger every log line of one invocation goes
// through, carrying the run ID and operation identity.
func (e *Engine) runLogger(run *models.OperationRun, win models.TimeWindow) *slog.Logger {
	return e.logger.With(
		"run_id", run.ID,
		"operation", string(run.Type),
		"symbol", run.Symbol,
		"interval", run.Interval,
		"window", win.String(),
	)
}
