package sales

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `ID;Date;Amount;SumS
A-1;2025-01-30;2;1 000,50
A-1;2025-02-01;1;500
B-7;2025-02-01;3;1 234,56
A-1;2025-02-14;0;0
B-7;2025-03-02;1;99,9
`

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRecords(t *testing.T) []Record {
	t.Helper()
	records, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	return records
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"1 234,56":      "1234.56",
		"1\u00a0234,5":  "1234.5",
		"12\u202f000":   "12000",
		"42":            "42",
		"3.75":          "3.75",
		"-10,5":         "-10.5",
	}
	for raw, want := range cases {
		got, err := ParseAmount(raw)
		require.NoError(t, err, raw)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "%q parsed to %s, want %s", raw, got, want)
	}

	for _, raw := range []string{"", "  ", "abc", "1,2,3"} {
		_, err := ParseAmount(raw)
		assert.Error(t, err, raw)
	}
}

func TestParseDate(t *testing.T) {
	for _, raw := range []string{"2025-02-14", "2025-02-14 18:30:00", "14.02.2025"} {
		got, err := ParseDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, date(2025, time.February, 14), got)
	}

	_, err := ParseDate("14/02/2025")
	assert.Error(t, err)
}

func TestParseMonth(t *testing.T) {
	year, month, err := ParseMonth("2025-02")
	require.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, time.February, month)

	_, _, err = ParseMonth("February")
	assert.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	records := mustRecords(t)
	require.Len(t, records, 5)

	assert.Equal(t, "A-1", records[0].ItemID)
	assert.Equal(t, date(2025, time.January, 30), records[0].Date)
	assert.True(t, records[0].Revenue.Equal(decimal.RequireFromString("1000.50")))
	assert.True(t, records[2].Quantity.Equal(decimal.NewFromInt(3)))
}

func TestReadCSV_HeaderAnyOrderAndCase(t *testing.T) {
	records, err := ReadCSV(strings.NewReader("\ufeffsums;id;DATE;amount\n10,5;X;2025-02-01;1\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "X", records[0].ItemID)
	assert.True(t, records[0].Revenue.Equal(decimal.RequireFromString("10.5")))
}

func TestReadCSV_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":           "",
		"missing column":  "ID;Date;Amount\nA;2025-02-01;1\n",
		"bad date":        "ID;Date;Amount;SumS\nA;yesterday;1;10\n",
		"bad revenue":     "ID;Date;Amount;SumS\nA;2025-02-01;1;ten\n",
		"negative amount": "ID;Date;Amount;SumS\nA;2025-02-01;-1;10\n",
		"missing item id": "ID;Date;Amount;SumS\n;2025-02-01;1;10\n",
		"ragged row":      "ID;Date;Amount;SumS\nA;2025-02-01;1\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestReadCSV_ErrorNamesLine(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("ID;Date;Amount;SumS\nA;2025-02-01;1;10\nB;2025-02-02;1;oops\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(mustRecords(t))

	all, err := repo.Records(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	byItem, err := repo.Records(ctx, Filter{Items: []string{"B-7"}})
	require.NoError(t, err)
	assert.Len(t, byItem, 2)

	inclusive, err := repo.Records(ctx, Filter{From: date(2025, time.February, 1), To: date(2025, time.February, 14)})
	require.NoError(t, err)
	assert.Len(t, inclusive, 3)

	withTime, err := repo.Records(ctx, Filter{To: time.Date(2025, time.January, 30, 8, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Len(t, withTime, 1)
}

func TestMemoryRepository_ItemsAndBounds(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(mustRecords(t))

	items, err := repo.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A-1", "B-7"}, items)

	from, to, err := repo.Bounds(ctx)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.January, 30), from)
	assert.Equal(t, date(2025, time.March, 2), to)

	empty := NewMemoryRepository(nil)
	from, to, err = empty.Bounds(ctx)
	require.NoError(t, err)
	assert.True(t, from.IsZero() && to.IsZero())
}

func TestMemoryRepository_ItemsKeepFileOrder(t *testing.T) {
	records, err := ReadCSV(strings.NewReader("ID;Date;Amount;SumS\nZ-9;2025-02-10;1;10\nA-1;2025-02-01;1;10\nZ-9;2025-01-01;1;10\n"))
	require.NoError(t, err)
	repo := NewMemoryRepository(records)

	items, err := repo.Items(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Z-9", "A-1"}, items)

	ordered, err := repo.Records(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	assert.Equal(t, date(2025, time.January, 1), ordered[0].Date)
}

func TestSummarize(t *testing.T) {
	summary := Summarize(mustRecords(t))

	assert.True(t, summary.Quantity.Equal(decimal.NewFromInt(7)))
	assert.True(t, summary.Revenue.Equal(decimal.RequireFromString("2834.96")))
	assert.InDelta(t, 2834.96/7, summary.AveragePrice.InexactFloat64(), 1e-9)
}

func TestSummarize_ZeroQuantity(t *testing.T) {
	summary := Summarize([]Record{{ItemID: "Z", Quantity: decimal.Zero, Revenue: decimal.NewFromInt(10)}})
	assert.True(t, summary.AveragePrice.IsZero())

	assert.True(t, Summarize(nil).AveragePrice.IsZero())
}

func TestAverageUnitPrice_UsesFullHistory(t *testing.T) {
	repo := NewMemoryRepository(mustRecords(t))

	price, err := AverageUnitPrice(context.Background(), repo, "A-1")
	require.NoError(t, err)
	assert.InDelta(t, 1500.50/3, price, 1e-9)

	missing, err := AverageUnitPrice(context.Background(), repo, "nope")
	require.NoError(t, err)
	assert.Zero(t, missing)
}

func TestDailyAndMonth(t *testing.T) {
	february := InMonth(mustRecords(t), 2025, time.February)
	require.Len(t, february, 3)

	points := Daily(february)
	require.Len(t, points, 2)
	assert.Equal(t, date(2025, time.February, 1), points[0].Date)
	assert.True(t, points[0].Quantity.Equal(decimal.NewFromInt(4)))
	assert.True(t, points[0].Revenue.Equal(decimal.RequireFromString("1734.56")))
	assert.Equal(t, date(2025, time.February, 14), points[1].Date)
}
