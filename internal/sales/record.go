package sales

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one line of the transaction log.
type Record struct {
	ItemID   string
	Date     time.Time
	Quantity decimal.Decimal
	Revenue  decimal.Decimal
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02.01.2006",
}

var amountReplacer = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", ",", ".")

// ParseAmount parses a locale formatted number such as "1 234,56".
// Spaces are thousands separators and the comma is the decimal separator.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := amountReplacer.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero, errors.New("empty amount")
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return value, nil
}

// ParseDate parses a transaction date and truncates it to the calendar day in UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: unsupported format", raw)
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseMonth parses a "YYYY-MM" month into its year and month.
func ParseMonth(raw string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(raw))
	if err != nil {
		return 0, 0, fmt.Errorf("parse month %q: %w", raw, err)
	}
	return t.Year(), t.Month(), nil
}
