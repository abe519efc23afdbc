package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// parseHours parses a declared decimal-hours value. Empty input is zero
// hours, not an error: break rows frequently carry only interval timestamps.
func parseHours(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return decimal.Zero, nil
	}

	hours, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse hours %q: %w", raw, err)
	}
	if hours.IsNegative() {
		return decimal.Zero, fmt.Errorf("hours must not be negative: %q", raw)
	}
	return hours, nil
}

func parseServiceDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date of service")
	}

	layouts := []string{
		"01/02/2006",
		"1/2/2006",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date format: %q", value)
}

func parseIntervalTime(raw string) (*time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	layouts := []string{
		"01/02/2006 15:04",
		"1/2/2006 15:04",
		"01/02/2006 03:04 PM",
		"2006-01-02 15:04",
	}
	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return &parsed, nil
		}
	}

	return nil, fmt.Errorf("unsupported datetime format: %q", value)
}
