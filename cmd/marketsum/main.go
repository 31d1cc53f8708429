// Market Summariser CLI
// This application maintains local candle (OHLCV) stores synced
// incrementally against the Binance klines API and reports volume
// statistics over arbitrary time windows.
//
// Usage:
//
//	marketsum sync --symbol BTCUSDT --interval 1h --lookback 24h
//	marketsum stats --symbol BTCUSDT --interval 1h --start 2024-01-01 --end 2024-01-31
//	marketsum slice --symbol BTCUSDT --interval 1h --lookback 7d --output btc_week.parquet
//	marketsum run --operation daily-stats
//	marketsum schedule --operation daily-sync --every "@every 1h"
//
// For detailed help on any command, use: marketsum <command> --help
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Manu2954/MarketSummariser-2.0/internal/config"
	"github.com/Manu2954/MarketSummariser-2.0/internal/engine"
	apperrors "github.com/Manu2954/MarketSummariser-2.0/internal/errors"
	"github.com/Manu2954/MarketSummariser-2.0/internal/logger"
	"github.com/Manu2954/MarketSummariser-2.0/internal/models"
	"github.com/Manu2954/MarketSummariser-2.0/internal/window"
)

const (
	appName = "marketsum"
	version = "2.0.0"
)

// Exit codes: success, operation failure, usage or configuration error.
const (
	exitSuccess    = 0
	exitFailure    = 1
	exitUsageError = 2
)

// CLI bundles the configured application components one command needs.
type CLI struct {
	config *config.AppConfig
	logs   *logger.Manager
	logger *slog.Logger
	engine *engine.Engine
}

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		return exitUsageError
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "sync":
		return runSync(ctx, args)
	case "stats":
		return runStats(ctx, args)
	case "slice":
		return runSlice(ctx, args)
	case "run":
		return runOperation(ctx, args)
	case "schedule":
		return runSchedule(ctx, args)
	case "version", "--version", "-v":
		fmt.Printf("%s version %s\n", appName, version)
		return exitSuccess
	case "help", "--help", "-h":
		if len(args) > 0 {
			printCommandHelp(args[0])
		} else {
			printUsage()
		}
		return exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", command)
		printUsage()
		return exitUsageError
	}
}

// newCLI loads configuration and wires the logger and engine. The
// config path precedence is flag, then MARKETSUM_CONFIG, then the
// default location.
func newCLI(configPath string) (*CLI, error) {
	if configPath == "" {
		configPath = os.Getenv(config.EnvConfigPath)
	}
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}

	logs, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	slog.SetDefault(logs.Logger())

	eng, err := engine.NewWithLogger(cfg, logs.Component("engine"))
	if err != nil {
		_ = logs.Close()
		return nil, err
	}

	return &CLI{
		config: cfg,
		logs:   logs,
		logger: logs.Component("cli"),
		engine: eng,
	}, nil
}

// Close flushes the log file writer.
func (c *CLI) Close() {
	_ = c.logs.Close()
}

// windowFlags are the window inputs every operational command shares.
type windowFlags struct {
	Start       string
	End         string
	Lookback    string
	TimeInputTZ string
}

func (f *windowFlags) request() window.Request {
	return window.Request{
		Start:         f.Start,
		End:           f.End,
		Lookback:      f.Lookback,
		InputTimezone: f.TimeInputTZ,
	}
}

// syncFlags holds flags for the sync command.
type syncFlags struct {
	windowFlags
	Symbol   string
	Interval string
	Config   string
	DryRun   bool
	Help     bool
}

// statsFlags holds flags for the stats command.
type statsFlags struct {
	windowFlags
	Symbol   string
	Interval string
	Config   string
	Help     bool
}

// sliceFlags holds flags for the slice command.
type sliceFlags struct {
	windowFlags
	Symbol   string
	Interval string
	Config   string
	Output   string
	Help     bool
}

// runFlags holds flags for the run command.
type runFlags struct {
	Operation string
	Ops       string
	Config    string
	Help      bool
}

// scheduleFlags holds flags for the schedule command.
type scheduleFlags struct {
	Operation string
	Every     string
	Ops       string
	Config    string
	Help      bool
}

func runSync(ctx context.Context, args []string) int {
	flags, err := parseSyncFlags(args)
	if err != nil {
		return usageError("sync", err)
	}
	if flags.Help {
		printCommandHelp("sync")
		return exitSuccess
	}
	if code := requireSymbolInterval(flags.Symbol, flags.Interval); code != exitSuccess {
		return code
	}

	cli, err := newCLI(flags.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsageError
	}
	defer cli.Close()

	win, err := cli.engine.ResolveWindow(flags.request())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsageError
	}

	result, err := cli.engine.Sync(ctx, flags.Symbol, flags.Interval, win, flags.DryRun)
	if err != nil {
		cli.logger.Error("sync failed", "error", err)
		return exitFailure
	}
	printSyncResult(result)
	return exitSuccess
}

func runStats(ctx context.Context, args []string) int {
	flags, err := parseStatsFlags(args)
	if err != nil {
		return usageError("stats", err)
	}
	if flags.Help {
		printCommandHelp("stats")
		return exitSuccess
	}
	if code := requireSymbolInterval(flags.Symbol, flags.Interval); code != exitSuccess {
		return code
	}

	cli, err := newCLI(flags.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsageError
	}
	defer cli.Close()

	win, err := cli.engine.ResolveWindow(flags.request())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsageError
	}

	result, err := cli.engine.Stats(ctx, flags.Symbol, flags.Interval, win)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNoData) {
			fmt.Fprintf(os.Stderr, "No usable rows for %s %s in the requested window\n",
				flags.Symbol, flags.Interval)
			return exitFailure
		}
		cli.logger.Error("stats failed", "error", err)
		return exitFailure
	}
	printVolumeStats(result, cli.engine.Location())
	return exitSuccess
}

func runSlice(ctx context.Context, args []string) int {
	flags, err := parseSliceFlags(args)
	if err != nil {
		return usageError("slice", err)
	}
	if flags.Help {
		printCommandHelp("slice")
		return exitSuccess
	}
	if code := requireSymbolInterval(flags.Symbol, flags.Interval); code != exitSuccess {
		return code
	}

	cli, err := newCLI(flags.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsageError
	}
	defer cli.Close()

	win, err := cli.engine.ResolveWindow(flags.request())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsageError
	}

	result, err := cli.engine.Slice(ctx, flags.Symbol, flags.Interval, win, flags.Output)
	if err != nil {
		cli.logger.Error("slice failed", "error", err)
		return exitFailure
	}
	printSliceResult(result)
	return exitSuccess
}

func runOperation(ctx context.Context, args []string) int {
	flags, err := parseRunFlags(args)
	if err != nil {
		return usageError("run", err)
	}
	if flags.Help {
		printCommandHelp("run")
		return exitSuccess
	}
	if flags.Operation == "" {
		fmt.Fprintln(os.Stderr, "Error: --operation is required")
		return exitUsageError
	}

	cli, err := newCLI(flags.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsageError
	}
	defer cli.Close()

	registry, err := engine.LoadRegistryWithLogger(flags.Ops, cli.engine, cli.logs.Component("registry"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsageError
	}

	outcome, err := registry.Run(ctx, flags.Operation)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeInvalidOperation) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitUsageError
		}
		cli.logger.Error("operation failed", "operation", flags.Operation, "error", err)
		return exitFailure
	}

	switch {
	case outcome.Sync != nil:
		printSyncResult(outcome.Sync)
	case outcome.Stats != nil:
		printVolumeStats(outcome.Stats, cli.engine.Location())
	case outcome.Slice != nil:
		printSliceResult(outcome.Slice)
	}
	return exitSuccess
}

func runSchedule(ctx context.Context, args []string) int {
	flags, err := parseScheduleFlags(args)
	if err != nil {
		return usageError("schedule", err)
	}
	if flags.Help {
		printCommandHelp("schedule")
		return exitSuccess
	}
	if flags.Operation == "" {
		fmt.Fprintln(os.Stderr, "Error: --operation is required")
		return exitUsageError
	}
	if flags.Every == "" {
		fmt.Fprintln(os.Stderr, "Error: --every is required")
		return exitUsageError
	}

	cli, err := newCLI(flags.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsageError
	}
	defer cli.Close()

	registry, err := engine.LoadRegistryWithLogger(flags.Ops, cli.engine, cli.logs.Component("registry"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsageError
	}

	sched := engine.NewSchedulerWithLogger(registry, cli.logs.Component("scheduler"))
	if err := sched.Start(ctx, flags.Operation, flags.Every); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsageError
	}

	fmt.Printf("Running operation %q on schedule %q\n", flags.Operation, flags.Every)
	fmt.Println("Press Ctrl+C to stop gracefully")

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		cli.logger.Error("scheduler did not stop cleanly", "error", err)
		return exitFailure
	}
	return exitSuccess
}

// Result printers

func printSyncResult(result *models.SyncResult) {
	if !result.Persisted {
		fmt.Printf("Dry run: %d rows for %s %s (%d fetched), nothing persisted\n",
			result.Rows, result.Symbol, result.Interval, result.Fetched)
		return
	}
	fmt.Printf("Synced %s %s: %d rows in %s (%d fetched, missing estimate %d)\n",
		result.Symbol, result.Interval, result.Rows, result.Path,
		result.Fetched, result.MissingEstimate)
}

func printVolumeStats(result *models.VolumeStats, loc *time.Location) {
	win := result.Window.In(loc)
	fmt.Printf("Volume statistics for %s %s, %s to %s:\n",
		result.Symbol, result.Interval,
		win.Start.Format(models.TimestampLayout),
		win.End.Format(models.TimestampLayout))
	fmt.Printf("  rows:       %d\n", result.Rows)
	fmt.Printf("  avg_volume: %.6f\n", result.AvgVolume)
	fmt.Printf("  p95_volume: %.6f\n", result.P95Volume)
}

func printSliceResult(result *models.SliceResult) {
	fmt.Printf("Sliced %s %s: %d rows, %s to %s, written to %s\n",
		result.Sync.Symbol, result.Sync.Interval, result.SliceRows,
		result.SliceStart, result.SliceEnd, result.SlicePath)
}

// Shared validation and error helpers

func requireSymbolInterval(symbol, interval string) int {
	if symbol == "" {
		fmt.Fprintln(os.Stderr, "Error: --symbol is required")
		return exitUsageError
	}
	if interval == "" {
		fmt.Fprintln(os.Stderr, "Error: --interval is required")
		return exitUsageError
	}
	return exitSuccess
}

func usageError(command string, err error) int {
	fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
	printCommandHelp(command)
	return exitUsageError
}

// Flag parsing functions

// parseSyncFlags parses command line arguments for the sync command.
func parseSyncFlags(args []string) (*syncFlags, error) {
	flags := &syncFlags{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--symbol", "-s":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Symbol, i = value, skip
		case "--interval", "-i":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Interval, i = value, skip
		case "--start":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Start, i = value, skip
		case "--end":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.End, i = value, skip
		case "--lookback", "-l":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Lookback, i = value, skip
		case "--time-input-tz":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.TimeInputTZ, i = value, skip
		case "--config", "-c":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Config, i = value, skip
		case "--dry-run":
			flags.DryRun = true
		case "--help", "-h":
			flags.Help = true
		default:
			return nil, fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	return flags, nil
}

// parseStatsFlags parses command line arguments for the stats command.
func parseStatsFlags(args []string) (*statsFlags, error) {
	flags := &statsFlags{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--symbol", "-s":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Symbol, i = value, skip
		case "--interval", "-i":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Interval, i = value, skip
		case "--start":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Start, i = value, skip
		case "--end":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.End, i = value, skip
		case "--lookback", "-l":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Lookback, i = value, skip
		case "--time-input-tz":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.TimeInputTZ, i = value, skip
		case "--config", "-c":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Config, i = value, skip
		case "--help", "-h":
			flags.Help = true
		default:
			return nil, fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	return flags, nil
}

// parseSliceFlags parses command line arguments for the slice command.
func parseSliceFlags(args []string) (*sliceFlags, error) {
	flags := &sliceFlags{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--symbol", "-s":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Symbol, i = value, skip
		case "--interval", "-i":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Interval, i = value, skip
		case "--start":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Start, i = value, skip
		case "--end":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.End, i = value, skip
		case "--lookback", "-l":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Lookback, i = value, skip
		case "--time-input-tz":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.TimeInputTZ, i = value, skip
		case "--config", "-c":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Config, i = value, skip
		case "--output", "-o":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Output, i = value, skip
		case "--help", "-h":
			flags.Help = true
		default:
			return nil, fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	return flags, nil
}

// parseRunFlags parses command line arguments for the run command.
func parseRunFlags(args []string) (*runFlags, error) {
	flags := &runFlags{
		Ops: engine.DefaultOperationsPath,
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--operation", "-n":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Operation, i = value, skip
		case "--ops":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Ops, i = value, skip
		case "--config", "-c":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Config, i = value, skip
		case "--help", "-h":
			flags.Help = true
		default:
			return nil, fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	return flags, nil
}

// parseScheduleFlags parses command line arguments for the schedule
// command.
func parseScheduleFlags(args []string) (*scheduleFlags, error) {
	flags := &scheduleFlags{
		Ops: engine.DefaultOperationsPath,
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--operation", "-n":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Operation, i = value, skip
		case "--every", "-e":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Every, i = value, skip
		case "--ops":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Ops, i = value, skip
		case "--config", "-c":
			value, skip, err := flagValue(args, i)
			if err != nil {
				return nil, err
			}
			flags.Config, i = value, skip
		case "--help", "-h":
			flags.Help = true
		default:
			return nil, fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	return flags, nil
}

// flagValue returns the value following args[i] and the index to resume
// the scan from.
func flagValue(args []string, i int) (string, int, error) {
	if i+1 >= len(args) {
		return "", i, fmt.Errorf("%s requires a value", args[i])
	}
	return args[i+1], i + 1, nil
}

// Help and usage functions

// printUsage prints the main usage information.
func printUsage() {
	fmt.Printf(`%s - Market Summariser CLI v%s

USAGE:
    %s <command> [options]

COMMANDS:
    sync        Bring the local candle store up to date over a time window
    stats       Report volume statistics over a time window
    slice       Sync a window and export it to CSV, JSON, or Parquet
    run         Run a named operation from the operations file
    schedule    Run a named operation repeatedly on a cron schedule
    version     Show version information
    help        Show help for a command

GLOBAL OPTIONS:
    --help, -h     Show help information
    --version, -v  Show version information

EXAMPLES:
    # Sync the last 24 hours of BTCUSDT hourly candles
    %s sync --symbol BTCUSDT --interval 1h --lookback 24h

    # Volume statistics for January 2024, timestamps read as Kolkata time
    %s stats --symbol BTCUSDT --interval 1h \
        --start "2024-01-01 00:00:00" --end "2024-01-31 23:00:00" \
        --time-input-tz Asia/Kolkata

    # Export the last week as Parquet
    %s slice --symbol ETHUSDT --interval 4h --lookback 7d --output eth_week.parquet

    # Run the operation named daily-stats from operations.yml
    %s run --operation daily-stats

    # Sync every hour until interrupted
    %s schedule --operation daily-sync --every "@every 1h"

CONFIGURATION:
    Configuration is read from %s (override with --config or
    %s). A .env file in the working directory is loaded at
    startup. %s and %s override the
    upstream endpoint.

For detailed help on any command, use: %s <command> --help
`, appName, version, appName, appName, appName, appName, appName, appName,
		config.DefaultConfigPath, config.EnvConfigPath,
		config.EnvBaseURL, config.EnvKlinesPath, appName)
}

// printCommandHelp prints detailed help for a specific command.
func printCommandHelp(command string) {
	switch command {
	case "sync":
		fmt.Printf(`%s sync - Bring the local candle store up to date

USAGE:
    %s sync [options]

OPTIONS:
    --symbol, -s <symbol>     Trading symbol, e.g. BTCUSDT (required)
    --interval, -i <interval> Candle interval, e.g. 1m, 1h, 4h, 1d (required)
    --start <time>            Window start (ISO 8601, offset optional)
    --end <time>              Window end (ISO 8601, offset optional)
    --lookback, -l <dur>      Relative window like 30m, 12h, 3d
    --time-input-tz <zone>    IANA zone used to read --start/--end
    --config, -c <path>       Configuration file path
    --dry-run                 Fetch and merge but do not write the store
    --help, -h                Show this help message

WINDOW RULES:
    With neither --start nor --end, --lookback is required and the
    window ends now. With only --start, the window ends now. With only
    --end, --lookback is required. Bounds are inclusive.

EXAMPLES:
    %s sync --symbol BTCUSDT --interval 1h --lookback 24h
    %s sync --symbol ETHUSDT --interval 1d --start 2024-01-01 --end 2024-03-31
    %s sync --symbol BTCUSDT --interval 1h --lookback 7d --dry-run
`, appName, appName, appName, appName, appName)

	case "stats":
		fmt.Printf(`%s stats - Report volume statistics

USAGE:
    %s stats [options]

OPTIONS:
    --symbol, -s <symbol>     Trading symbol (required)
    --interval, -i <interval> Candle interval (required)
    --start <time>            Window start (ISO 8601)
    --end <time>              Window end (ISO 8601)
    --lookback, -l <dur>      Relative window like 30m, 12h, 3d
    --time-input-tz <zone>    IANA zone used to read --start/--end
    --config, -c <path>       Configuration file path
    --help, -h                Show this help message

OUTPUT:
    Row count, arithmetic mean, and the interpolated 95th percentile of
    volume over the window. Rows missing a usable volume are skipped.
    Gaps between the window and the local store are fetched first, so
    the numbers always describe persisted data.

EXAMPLES:
    %s stats --symbol BTCUSDT --interval 1h --lookback 24h
    %s stats --symbol BTCUSDT --interval 1d --start 2024-01-01 --end 2024-06-30
`, appName, appName, appName, appName)

	case "slice":
		fmt.Printf(`%s slice - Sync a window and export it

USAGE:
    %s slice [options]

OPTIONS:
    --symbol, -s <symbol>     Trading symbol (required)
    --interval, -i <interval> Candle interval (required)
    --start <time>            Window start (ISO 8601)
    --end <time>              Window end (ISO 8601)
    --lookback, -l <dur>      Relative window like 30m, 12h, 3d
    --time-input-tz <zone>    IANA zone used to read --start/--end
    --config, -c <path>       Configuration file path
    --output, -o <path>       Export target; format follows the extension
    --help, -h                Show this help message

OUTPUT FORMATS:
    .csv      Same column layout as the store file (default)
    .json     Pretty-printed array of row objects
    .parquet  One row group, optional fields for missing values

    Without --output the slice lands next to the store file as
    <store>_sliced.csv. Unknown extensions fall back to CSV.

EXAMPLES:
    %s slice --symbol BTCUSDT --interval 1h --lookback 7d
    %s slice --symbol ETHUSDT --interval 4h --start 2024-05-01 --end 2024-05-31 \
        --output eth_may.parquet
`, appName, appName, appName, appName)

	case "run":
		fmt.Printf(`%s run - Run a named operation

USAGE:
    %s run [options]

OPTIONS:
    --operation, -n <name>    Operation name from the operations file (required)
    --ops <path>              Operations file path (default: %s)
    --config, -c <path>       Configuration file path
    --help, -h                Show this help message

OPERATIONS FILE:
    A YAML file with a defaults map and an operations list. Each
    operation names a type (volume_stats, fetch, or generate_slice),
    a symbol, an interval, and window inputs. Empty fields inherit from
    defaults.

    defaults:
      symbol: BTCUSDT
      interval: 1h
    operations:
      - name: daily-stats
        type: volume_stats
        lookback: 24h
      - name: daily-sync
        type: fetch
        lookback: 24h

EXAMPLES:
    %s run --operation daily-stats
    %s run --operation daily-sync --ops ops/production.yml
`, appName, appName, engine.DefaultOperationsPath, appName, appName)

	case "schedule":
		fmt.Printf(`%s schedule - Run a named operation on a schedule

USAGE:
    %s schedule [options]

OPTIONS:
    --operation, -n <name>    Operation name from the operations file (required)
    --every, -e <schedule>    Cron expression or descriptor (required)
                              Examples: "@every 5m", "@hourly", "0 * * * *"
    --ops <path>              Operations file path (default: %s)
    --config, -c <path>       Configuration file path
    --help, -h                Show this help message

NOTES:
    - Runs are strictly sequential; a tick that fires while the previous
      run is still executing is skipped with a warning
    - The scheduler runs until interrupted (Ctrl+C)

EXAMPLES:
    %s schedule --operation daily-sync --every "@every 1h"
    %s schedule --operation daily-stats --every "30 0 * * *"
`, appName, appName, engine.DefaultOperationsPath, appName, appName)

	default:
		fmt.Fprintf(os.Stderr, "No help available for command: %s\n", command)
		printUsage()
	}
}
