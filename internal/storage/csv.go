package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Manu2954/MarketSummariser-2.0/internal/config"
	apperrors "github.com/Manu2954/MarketSummariser-2.0/internal/errors"
	"github.com/Manu2954/MarketSummariser-2.0/internal/models"
)

// csvHeader is the persisted column layout. Readers of the store files
// depend on these exact names and positions.
var csvHeader = []string{
	"timestamp",
	"open",
	"high",
	"low",
	"close",
	"volume",
	"quote_volume",
	"trades",
	"taker_buy_base",
	"taker_buy_quote",
	"interval",
	"symbol",
}

// CSVStore persists record sets as one CSV file per (symbol, interval),
// located by expanding the configured path template.
//
// Timestamps are written as naive wall-clock strings in the display
// timezone; the same timezone is required to read them back. NaN
// numeric values and nil trade counts are written as empty cells.
type CSVStore struct {
	cfg      config.CSVConfig
	location *time.Location
	logger   *slog.Logger
}

// NewCSVStore creates a CSV-backed store. A nil location means UTC.
func NewCSVStore(cfg config.CSVConfig, location *time.Location) *CSVStore {
	if location == nil {
		location = time.UTC
	}
	return &CSVStore{
		cfg:      cfg,
		location: location,
		logger:   slog.Default().With("component", "csv_store"),
	}
}

// NewCSVStoreWithLogger creates a CSV-backed store with a custom logger.
func NewCSVStoreWithLogger(cfg config.CSVConfig, location *time.Location, logger *slog.Logger) *CSVStore {
	s := NewCSVStore(cfg, location)
	s.logger = logger
	return s
}

// Location implements the Store interface.
func (s *CSVStore) Location(symbol, interval string) string {
	return s.cfg.StorePath(symbol, interval)
}

// Load implements the Store interface. A missing file is an empty set.
// A file that fails to parse is logged as a warning and treated as
// empty rather than failing the operation; the next successful persist
// replaces it.
func (s *CSVStore) Load(ctx context.Context, symbol, interval string) ([]models.CandleRecord, error) {
	if ctx.Err() != nil {
		return nil, apperrors.NewStorage(ctx.Err(), s.Location(symbol, interval))
	}

	path := s.Location(symbol, interval)
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		s.logger.Debug("no local store yet", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStorage(err, path)
	}
	defer file.Close()

	records, err := s.parse(file)
	if err != nil {
		s.logger.Warn("local store is unreadable, treating as empty",
			"path", path,
			"error", err)
		return nil, nil
	}

	SortRecords(records)
	s.logger.Debug("loaded local store", "path", path, "rows", len(records))
	return records, nil
}

// Persist implements the Store interface. The file is rewritten in
// full; append mode first merges the given records with whatever the
// file currently holds.
func (s *CSVStore) Persist(ctx context.Context, records []models.CandleRecord, symbol, interval string) error {
	if ctx.Err() != nil {
		return apperrors.NewStorage(ctx.Err(), s.Location(symbol, interval))
	}

	path := s.Location(symbol, interval)
	if len(records) == 0 {
		s.logger.Info("no data to write", "path", path)
		return nil
	}

	out := records
	if s.cfg.Append {
		existing, err := s.Load(ctx, symbol, interval)
		if err != nil {
			return err
		}
		out = Merge(existing, records)
	} else {
		out = Merge(nil, records)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.NewStorage(err, path)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorage(err, path)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return apperrors.NewStorage(err, path)
	}
	for _, rec := range out {
		if err := w.Write(s.encodeRow(rec)); err != nil {
			return apperrors.NewStorage(err, path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperrors.NewStorage(err, path)
	}

	s.logger.Info("persisted local store", "path", path, "rows", len(out))
	return nil
}

// parse reads the full CSV body into records. Structural problems
// (bad header, wrong arity, unparsable timestamp or numeric text) fail
// the whole file; empty cells decode as the missing-value markers.
func (s *CSVStore) parse(file *os.File) ([]models.CandleRecord, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(csvHeader)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewCorruptLocalStore(err, file.Name())
	}
	if len(rows) == 0 {
		return nil, nil
	}

	if err := s.checkHeader(rows[0]); err != nil {
		return nil, apperrors.NewCorruptLocalStore(err, file.Name())
	}

	records := make([]models.CandleRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := s.decodeRow(row)
		if err != nil {
			return nil, apperrors.NewCorruptLocalStore(
				fmt.Errorf("row %d: %w", i+2, err), file.Name())
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *CSVStore) checkHeader(row []string) error {
	for i, name := range csvHeader {
		if row[i] != name {
			return fmt.Errorf("unexpected header column %d: got %q, want %q", i, row[i], name)
		}
	}
	return nil
}

func (s *CSVStore) decodeRow(row []string) (models.CandleRecord, error) {
	ts, err := time.ParseInLocation(models.TimestampLayout, row[0], s.location)
	if err != nil {
		return models.CandleRecord{}, fmt.Errorf("bad timestamp %q: %w", row[0], err)
	}

	rec := models.CandleRecord{
		Timestamp: ts,
		Interval:  row[10],
		Symbol:    row[11],
	}

	floats := []struct {
		cell string
		dst  *float64
	}{
		{row[1], &rec.Open},
		{row[2], &rec.High},
		{row[3], &rec.Low},
		{row[4], &rec.Close},
		{row[5], &rec.Volume},
		{row[6], &rec.QuoteVolume},
		{row[8], &rec.TakerBuyBase},
		{row[9], &rec.TakerBuyQuote},
	}
	for _, f := range floats {
		v, err := decodeFloatCell(f.cell)
		if err != nil {
			return models.CandleRecord{}, err
		}
		*f.dst = v
	}

	trades, err := decodeTradesCell(row[7])
	if err != nil {
		return models.CandleRecord{}, err
	}
	rec.Trades = trades

	return rec, nil
}

func (s *CSVStore) encodeRow(rec models.CandleRecord) []string {
	return []string{
		rec.Timestamp.In(s.location).Format(models.TimestampLayout),
		encodeFloatCell(rec.Open),
		encodeFloatCell(rec.High),
		encodeFloatCell(rec.Low),
		encodeFloatCell(rec.Close),
		encodeFloatCell(rec.Volume),
		encodeFloatCell(rec.QuoteVolume),
		encodeTradesCell(rec.Trades),
		encodeFloatCell(rec.TakerBuyBase),
		encodeFloatCell(rec.TakerBuyQuote),
		rec.Interval,
		rec.Symbol,
	}
}

// Empty cells are the on-disk spelling of missing values: NaN for
// numeric columns, nil for the trade count.

func encodeFloatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func decodeFloatCell(cell string) (float64, error) {
	if cell == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("bad numeric cell %q: %w", cell, err)
	}
	return v, nil
}

func encodeTradesCell(trades *int64) string {
	if trades == nil {
		return ""
	}
	return strconv.FormatInt(*trades, 10)
}

func decodeTradesCell(cell string) (*int64, error) {
	if cell == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(cell, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad trade count cell %q: %w", cell, err)
	}
	return &v, nil
}
