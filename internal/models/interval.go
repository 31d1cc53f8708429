package models

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// IntervalSeconds converts an interval expression like "1m", "4h",
// "1d", "1w" into its length in seconds. Note the unit set here
// includes weeks, which the lookback grammar does not accept; the two
// grammars are intentionally separate.
func IntervalSeconds(interval string) (int64, error) {
	expr := strings.ToLower(strings.TrimSpace(interval))
	if expr == "" {
		return 0, fmt.Errorf("interval is empty")
	}

	var digits, unit strings.Builder
	for _, r := range expr {
		switch {
		case unicode.IsDigit(r):
			digits.WriteRune(r)
		case unicode.IsLetter(r):
			unit.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, fmt.Errorf("unsupported interval %q", interval)
	}
	value, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unsupported interval %q: %w", interval, err)
	}

	var perUnit int64
	switch unit.String() {
	case "m":
		perUnit = 60
	case "h":
		perUnit = 3600
	case "d":
		perUnit = 86400
	case "w":
		perUnit = 604800
	default:
		return 0, fmt.Errorf("unsupported interval %q", interval)
	}
	return value * perUnit, nil
}
