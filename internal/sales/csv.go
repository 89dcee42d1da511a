package sales

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	columnItem     = "id"
	columnDate     = "date"
	columnQuantity = "amount"
	columnRevenue  = "sums"
)

// ReadCSV reads a semicolon separated transaction log with the columns
// ID, Date, Amount and SumS.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv is empty")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, required := range []string{columnItem, columnDate, columnQuantity, columnRevenue} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("csv header is missing column %q", required)
		}
	}

	records := make([]Record, 0)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		record, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, record)
	}

	return records, nil
}

func parseRow(row []string, index map[string]int) (Record, error) {
	item := strings.TrimSpace(row[index[columnItem]])
	if item == "" {
		return Record{}, errors.New("item id is required")
	}

	date, err := ParseDate(row[index[columnDate]])
	if err != nil {
		return Record{}, err
	}

	quantity, err := ParseAmount(row[index[columnQuantity]])
	if err != nil {
		return Record{}, fmt.Errorf("quantity: %w", err)
	}
	if quantity.IsNegative() {
		return Record{}, fmt.Errorf("quantity %s must not be negative", quantity)
	}

	revenue, err := ParseAmount(row[index[columnRevenue]])
	if err != nil {
		return Record{}, fmt.Errorf("revenue: %w", err)
	}

	return Record{ItemID: item, Date: date, Quantity: quantity, Revenue: revenue}, nil
}
