package export

import (
	"encoding/csv"
	"os"
	"strconv"
)

// sliceHeader matches the store file layout so a sliced CSV is
// column-compatible with the store it came from.
var sliceHeader = []string{
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

// CSVSaver writes slices in the store's own CSV layout.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(rows []Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(sliceHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write([]string{
			row.Timestamp,
			floatCell(row.Open),
			floatCell(row.High),
			floatCell(row.Low),
			floatCell(row.Close),
			floatCell(row.Volume),
			floatCell(row.QuoteVolume),
			countCell(row.Trades),
			floatCell(row.TakerBuyBase),
			floatCell(row.TakerBuyQuote),
			row.Interval,
			row.Symbol,
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func countCell(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
