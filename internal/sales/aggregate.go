package sales

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Summary holds the dashboard metrics of a set of records.
type Summary struct {
	Quantity     decimal.Decimal
	Revenue      decimal.Decimal
	AveragePrice decimal.Decimal
}

// DailyPoint is one day of a time series.
type DailyPoint struct {
	Date     time.Time
	Quantity decimal.Decimal
	Revenue  decimal.Decimal
}

// Summarize totals quantity and revenue. The average price is zero when no
// units were sold.
func Summarize(records []Record) Summary {
	s := Summary{Quantity: decimal.Zero, Revenue: decimal.Zero, AveragePrice: decimal.Zero}
	for _, r := range records {
		s.Quantity = s.Quantity.Add(r.Quantity)
		s.Revenue = s.Revenue.Add(r.Revenue)
	}
	if s.Quantity.IsPositive() {
		s.AveragePrice = s.Revenue.Div(s.Quantity)
	}
	return s
}

// AverageUnitPrice returns the average sale price of item over its whole history.
func AverageUnitPrice(ctx context.Context, repo Repository, item string) (float64, error) {
	records, err := repo.Records(ctx, Filter{Items: []string{item}})
	if err != nil {
		return 0, fmt.Errorf("load records for item %q: %w", item, err)
	}
	return Summarize(records).AveragePrice.InexactFloat64(), nil
}

// Daily groups records by calendar day in ascending date order.
func Daily(records []Record) []DailyPoint {
	byDay := make(map[time.Time]*DailyPoint)
	for _, r := range records {
		day := Day(r.Date)
		point, ok := byDay[day]
		if !ok {
			point = &DailyPoint{Date: day, Quantity: decimal.Zero, Revenue: decimal.Zero}
			byDay[day] = point
		}
		point.Quantity = point.Quantity.Add(r.Quantity)
		point.Revenue = point.Revenue.Add(r.Revenue)
	}

	points := make([]DailyPoint, 0, len(byDay))
	for _, point := range byDay {
		points = append(points, *point)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// InMonth keeps the records dated within the given month.
func InMonth(records []Record, year int, month time.Month) []Record {
	out := make([]Record, 0)
	for _, r := range records {
		if r.Date.Year() == year && r.Date.Month() == month {
			out = append(out, r)
		}
	}
	return out
}
