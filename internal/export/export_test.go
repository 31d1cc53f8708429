package export

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manu2954/MarketSummariser-2.0/internal/models"
)

func sampleCandles(t *testing.T) []models.CandleRecord {
	t.Helper()
	first, err := time.Parse(time.RFC3339, "2024-05-01T00:00:00Z")
	require.NoError(t, err)

	trades := int64(42)
	return []models.CandleRecord{
		{
			Timestamp: first,
			Open:      100, High: 101, Low: 99, Close: 100.5,
			Volume: 1.25, QuoteVolume: 125.5,
			Trades:       &trades,
			TakerBuyBase: 0.5, TakerBuyQuote: 50.25,
			Interval: "1h",
			Symbol:   "BTCUSDT",
		},
		{
			Timestamp: first.Add(time.Hour),
			Open:      100.5, High: 102, Low: 100, Close: 101,
			Volume: math.NaN(), QuoteVolume: math.NaN(),
			Trades:       nil,
			TakerBuyBase: 0.75, TakerBuyQuote: 75.5,
			Interval: "1h",
			Symbol:   "BTCUSDT",
		},
	}
}

func TestFromCandles(t *testing.T) {
	t.Run("maps values and missing markers", func(t *testing.T) {
		rows := FromCandles(sampleCandles(t), time.UTC)

		require.Len(t, rows, 2)
		assert.Equal(t, "2024-05-01 00:00:00", rows[0].Timestamp)
		require.NotNil(t, rows[0].Open)
		assert.Equal(t, 100.0, *rows[0].Open)
		require.NotNil(t, rows[0].Trades)
		assert.Equal(t, int64(42), *rows[0].Trades)

		assert.Nil(t, rows[1].Volume)
		assert.Nil(t, rows[1].QuoteVolume)
		assert.Nil(t, rows[1].Trades)
	})

	t.Run("formats timestamps in the display timezone", func(t *testing.T) {
		kolkata, err := time.LoadLocation("Asia/Kolkata")
		require.NoError(t, err)

		rows := FromCandles(sampleCandles(t), kolkata)

		assert.Equal(t, "2024-05-01 05:30:00", rows[0].Timestamp)
	})

	t.Run("nil location means UTC", func(t *testing.T) {
		rows := FromCandles(sampleCandles(t), nil)

		assert.Equal(t, "2024-05-01 00:00:00", rows[0].Timestamp)
	})
}

func TestNewSaver(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"csv", "csv"},
		{"CSV", "csv"},
		{" parquet ", "parquet"},
		{"json", "json"},
	}
	for _, tt := range tests {
		s := NewSaver(tt.format)
		require.NotNil(t, s, tt.format)
		assert.Equal(t, tt.want, s.Extension())
	}

	assert.Nil(t, NewSaver("xlsx"))
	assert.Nil(t, NewSaver(""))
}

func TestSaverForPath(t *testing.T) {
	assert.Equal(t, "csv", SaverForPath("data/BTCUSDT_1h_sliced.csv").Extension())
	assert.Equal(t, "parquet", SaverForPath("out/slice.parquet").Extension())
	assert.Equal(t, "json", SaverForPath("slice.JSON").Extension())
	// Unknown and missing extensions fall back to the store format.
	assert.Equal(t, "csv", SaverForPath("slice.xlsx").Extension())
	assert.Equal(t, "csv", SaverForPath("slice").Extension())
}

func TestDefaultSlicePath(t *testing.T) {
	assert.Equal(t, "data/BTCUSDT_1h_sliced.csv", DefaultSlicePath("data/BTCUSDT_1h.csv"))
	assert.Equal(t, "store_sliced", DefaultSlicePath("store"))
}

func TestCSVSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slice.csv")
	rows := FromCandles(sampleCandles(t), time.UTC)

	require.NoError(t, CSVSaver{}.Save(rows, path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp,open,high,low,close,volume,quote_volume,trades,taker_buy_base,taker_buy_quote,interval,symbol", lines[0])
	assert.Equal(t, "2024-05-01 00:00:00,100,101,99,100.5,1.25,125.5,42,0.5,50.25,1h,BTCUSDT", lines[1])
	// Missing values stay empty.
	assert.Equal(t, "2024-05-01 01:00:00,100.5,102,100,101,,,,0.75,75.5,1h,BTCUSDT", lines[2])
}

func TestJSONSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slice.json")
	rows := FromCandles(sampleCandles(t), time.UTC)

	require.NoError(t, JSONSaver{}.Save(rows, path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []Record
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, rows[0].Timestamp, decoded[0].Timestamp)
	assert.Nil(t, decoded[1].Volume)
	// Missing values are encoded as JSON null, not NaN.
	assert.Contains(t, string(body), `"volume": null`)
}

func TestParquetSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slice.parquet")
	rows := FromCandles(sampleCandles(t), time.UTC)

	require.NoError(t, ParquetSaver{}.Save(rows, path))

	decoded, err := parquet.ReadFile[Record](path)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, rows[0].Timestamp, decoded[0].Timestamp)
	require.NotNil(t, decoded[0].Volume)
	assert.Equal(t, 1.25, *decoded[0].Volume)
	assert.Nil(t, decoded[1].Volume)
}
