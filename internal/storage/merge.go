package storage

import (
	"sort"
	"time"

	"github.com/Manu2954/MarketSummariser-2.0/internal/models"
)

// Merge combines an existing record set with newly fetched records.
// Duplicate natural keys keep the first occurrence, so rows already in
// the store win over refetched ones. The result is sorted ascending by
// timestamp.
func Merge(existing, incoming []models.CandleRecord) []models.CandleRecord {
	merged := make([]models.CandleRecord, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))

	for _, rec := range existing {
		if _, dup := seen[rec.Key()]; dup {
			continue
		}
		seen[rec.Key()] = struct{}{}
		merged = append(merged, rec)
	}
	for _, rec := range incoming {
		if _, dup := seen[rec.Key()]; dup {
			continue
		}
		seen[rec.Key()] = struct{}{}
		merged = append(merged, rec)
	}

	SortRecords(merged)
	return merged
}

// SortRecords orders records ascending by timestamp, in place. The
// sort is stable so records sharing a wall-clock timestamp keep their
// merge order.
func SortRecords(records []models.CandleRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
}

// Coverage returns the [min, max] timestamp range of the record set,
// or nil when the set is empty. The records need not be sorted.
func Coverage(records []models.CandleRecord) *models.CoverageRange {
	if len(records) == 0 {
		return nil
	}
	cov := &models.CoverageRange{Min: records[0].Timestamp, Max: records[0].Timestamp}
	for _, rec := range records[1:] {
		if rec.Timestamp.Before(cov.Min) {
			cov.Min = rec.Timestamp
		}
		if rec.Timestamp.After(cov.Max) {
			cov.Max = rec.Timestamp
		}
	}
	return cov
}

// EstimateMissing reports how many candles the set appears to be
// missing between its first and last row, assuming one candle per
// interval step. The estimate is informational: it cannot see holes
// outside the stored range and trusts the interval notation.
func EstimateMissing(records []models.CandleRecord, interval string) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	step, err := models.IntervalSeconds(interval)
	if err != nil {
		return 0, err
	}

	cov := Coverage(records)
	span := int64(cov.Max.Sub(cov.Min) / time.Second)
	expected := span/step + 1
	missing := expected - int64(len(records))
	if missing < 0 {
		return 0, nil
	}
	return int(missing), nil
}
