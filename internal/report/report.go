package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/salesdash/internal/sales"
)

// Report is the exportable dashboard view.
type Report struct {
	Filter      sales.Filter
	Summary     sales.Summary
	Month       string
	Daily       []sales.DailyPoint
	GeneratedAt time.Time
}

func (r Report) itemsLabel() string {
	if len(r.Filter.Items) == 0 {
		return "all"
	}
	return strings.Join(r.Filter.Items, ", ")
}

func (r Report) periodLabel() string {
	from, to := "start", "end"
	if !r.Filter.From.IsZero() {
		from = r.Filter.From.Format("2006-01-02")
	}
	if !r.Filter.To.IsZero() {
		to = r.Filter.To.Format("2006-01-02")
	}
	return from + " .. " + to
}

// BuildXLSX renders the report as a workbook with a summary and a daily sheet.
func BuildXLSX(r Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	dailySheet := "daily"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	if _, err := f.NewSheet(dailySheet); err != nil {
		return nil, fmt.Errorf("create daily sheet: %w", err)
	}

	rows := [][]any{
		{"Sales report"},
		{},
		{"Items", r.itemsLabel()},
		{"Period", r.periodLabel()},
		{"Units sold", r.Summary.Quantity.InexactFloat64()},
		{"Revenue", r.Summary.Revenue.InexactFloat64()},
		{"Average price", r.Summary.AveragePrice.Round(2).InexactFloat64()},
		{"Generated", r.GeneratedAt.Format(time.RFC3339)},
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write summary row: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	_ = f.SetCellStyle(summarySheet, "A1", "A8", bold)

	header := []any{"Date (" + r.Month + ")", "Units", "Revenue"}
	if err := f.SetSheetRow(dailySheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write daily header: %w", err)
	}
	_ = f.SetCellStyle(dailySheet, "A1", "C1", bold)
	for i, point := range r.Daily {
		row := []any{point.Date.Format("2006-01-02"), point.Quantity.InexactFloat64(), point.Revenue.InexactFloat64()}
		if err := f.SetSheetRow(dailySheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("write daily row: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildPDF renders a one-page summary with the daily table.
func BuildPDF(r Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Sales report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{
		fmt.Sprintf("Items: %s", r.itemsLabel()),
		fmt.Sprintf("Period: %s", r.periodLabel()),
		fmt.Sprintf("Units sold: %s", r.Summary.Quantity.String()),
		fmt.Sprintf("Revenue (RUB): %s", r.Summary.Revenue.StringFixed(2)),
		fmt.Sprintf("Average price (RUB): %s", r.Summary.AveragePrice.StringFixed(2)),
		fmt.Sprintf("Generated: %s", r.GeneratedAt.Format(time.RFC3339)),
	} {
		pdf.Cell(0, 6, line)
		pdf.Ln(5)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, "Day ("+r.Month+")", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Units", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Revenue", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, point := range r.Daily {
		pdf.CellFormat(40, 6, point.Date.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, point.Quantity.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, point.Revenue.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
