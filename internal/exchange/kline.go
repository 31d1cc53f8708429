package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// klineFieldCount is the arity of an upstream kline row.
const klineFieldCount = 12

// RawKline is one kline row exactly as the upstream delivers it: a
// twelve-element JSON array of open time, OHLC prices, volumes, close
// time, and trade count. Numeric fields arrive as JSON strings on the
// live API but the decoder also accepts bare numbers, so recorded
// fixtures and proxies that re-encode the payload keep working.
//
// Fields hold the raw textual form; interpretation is left to the
// normalizer, which decides what a malformed value becomes.
type RawKline struct {
	OpenTime      string
	Open          string
	High          string
	Low           string
	Close         string
	Volume        string
	CloseTime     string
	QuoteVolume   string
	Trades        string
	TakerBuyBase  string
	TakerBuyQuote string
}

// UnmarshalJSON decodes a kline row from its wire form. Rows with
// fewer than twelve elements are rejected; extra elements are ignored.
func (k *RawKline) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("kline row is not a JSON array: %w", err)
	}
	if len(fields) < klineFieldCount {
		return fmt.Errorf("kline row has %d fields, want %d", len(fields), klineFieldCount)
	}

	k.OpenTime = flattenField(fields[0])
	k.Open = flattenField(fields[1])
	k.High = flattenField(fields[2])
	k.Low = flattenField(fields[3])
	k.Close = flattenField(fields[4])
	k.Volume = flattenField(fields[5])
	k.CloseTime = flattenField(fields[6])
	k.QuoteVolume = flattenField(fields[7])
	k.Trades = flattenField(fields[8])
	k.TakerBuyBase = flattenField(fields[9])
	k.TakerBuyQuote = flattenField(fields[10])
	// fields[11] is documented by the upstream as "ignore".

	return nil
}

// OpenTimeMS parses the row's open time as epoch milliseconds.
func (k RawKline) OpenTimeMS() (int64, error) {
	ms, err := strconv.ParseInt(k.OpenTime, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid kline open time %q: %w", k.OpenTime, err)
	}
	return ms, nil
}

// CloseTimeMS parses the row's close time as epoch milliseconds. The
// pagination cursor advances from this value.
func (k RawKline) CloseTimeMS() (int64, error) {
	ms, err := strconv.ParseInt(k.CloseTime, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid kline close time %q: %w", k.CloseTime, err)
	}
	return ms, nil
}

// flattenField reduces a JSON value to its textual content: strings
// are unquoted, numbers and other literals keep their raw spelling.
func flattenField(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
