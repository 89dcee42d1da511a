package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/salesdash/internal/sales"
)

func sampleReport() Report {
	day := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	return Report{
		Filter: sales.Filter{Items: []string{"A"}, From: day},
		Summary: sales.Summary{
			Quantity:     decimal.NewFromInt(3),
			Revenue:      decimal.RequireFromString("1500.75"),
			AveragePrice: decimal.RequireFromString("500.25"),
		},
		Month: "2025-02",
		Daily: []sales.DailyPoint{
			{Date: day, Quantity: decimal.NewFromInt(1), Revenue: decimal.NewFromInt(500)},
			{Date: day.AddDate(0, 0, 1), Quantity: decimal.NewFromInt(2), Revenue: decimal.RequireFromString("1000.75")},
		},
		GeneratedAt: day,
	}
}

func TestBuildXLSX(t *testing.T) {
	content, err := BuildXLSX(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	items, err := f.GetCellValue("summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "A", items)

	revenue, err := f.GetCellValue("summary", "B6")
	require.NoError(t, err)
	assert.Equal(t, "1500.75", revenue)

	rows, err := f.GetRows("daily")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2025-02-02", rows[2][0])
}

func TestBuildPDF(t *testing.T) {
	content, err := BuildPDF(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
}

func TestLabels(t *testing.T) {
	r := Report{}
	assert.Equal(t, "all", r.itemsLabel())
	assert.Equal(t, "start .. end", r.periodLabel())
}
