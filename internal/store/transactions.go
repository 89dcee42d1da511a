package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/salesdash/internal/sales"
)

const dateLayout = "2006-01-02"

// Transactions is the sqlite backed transaction log.
type Transactions struct {
	db *sql.DB
}

var _ sales.Repository = (*Transactions)(nil)

// NewTransactions wraps db as a sales.Repository.
func NewTransactions(db *sql.DB) *Transactions {
	return &Transactions{db: db}
}

func (t *Transactions) Items(ctx context.Context) ([]string, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT item_id
		FROM transactions
		GROUP BY item_id
		ORDER BY MIN(id)
	`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := make([]string, 0)
	for rows.Next() {
		var item string
		if err := rows.Scan(&item); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return items, nil
}

func (t *Transactions) Bounds(ctx context.Context) (time.Time, time.Time, error) {
	var minDate, maxDate sql.NullString
	err := t.db.QueryRowContext(ctx, `SELECT MIN(sale_date), MAX(sale_date) FROM transactions`).Scan(&minDate, &maxDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("query date bounds: %w", err)
	}
	if !minDate.Valid || !maxDate.Valid {
		return time.Time{}, time.Time{}, nil
	}

	from, err := time.Parse(dateLayout, minDate.String)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse min date: %w", err)
	}
	to, err := time.Parse(dateLayout, maxDate.String)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse max date: %w", err)
	}
	return from, to, nil
}

func (t *Transactions) Records(ctx context.Context, f sales.Filter) ([]sales.Record, error) {
	var (
		where []string
		args  []any
	)
	if len(f.Items) > 0 {
		placeholders := make([]string, len(f.Items))
		for i, item := range f.Items {
			placeholders[i] = "?"
			args = append(args, item)
		}
		where = append(where, "item_id IN ("+strings.Join(placeholders, ", ")+")")
	}
	if !f.From.IsZero() {
		where = append(where, "sale_date >= ?")
		args = append(args, sales.Day(f.From).Format(dateLayout))
	}
	if !f.To.IsZero() {
		where = append(where, "sale_date <= ?")
		args = append(args, sales.Day(f.To).Format(dateLayout))
	}

	query := `SELECT item_id, sale_date, quantity, revenue FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY sale_date, id"

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	records := make([]sales.Record, 0)
	for rows.Next() {
		var (
			r                           sales.Record
			saleDate, quantity, revenue string
		)
		if err := rows.Scan(&r.ItemID, &saleDate, &quantity, &revenue); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if r.Date, err = time.Parse(dateLayout, saleDate); err != nil {
			return nil, fmt.Errorf("parse sale date %q: %w", saleDate, err)
		}
		if r.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("parse quantity %q: %w", quantity, err)
		}
		if r.Revenue, err = decimal.NewFromString(revenue); err != nil {
			return nil, fmt.Errorf("parse revenue %q: %w", revenue, err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return records, nil
}

// Count returns the number of stored transactions.
func (t *Transactions) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := t.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

// LastImportChecksum returns the checksum of the most recent import.
// ok is false when nothing was imported yet.
func (t *Transactions) LastImportChecksum(ctx context.Context) (checksum string, ok bool, err error) {
	err = t.db.QueryRowContext(ctx, `
		SELECT checksum
		FROM dataset_imports
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&checksum)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query last import: %w", err)
	}
	return checksum, true, nil
}

// ReplaceAll swaps the stored dataset for records and records the import.
func (t *Transactions) ReplaceAll(ctx context.Context, records []sales.Record, source, checksum string) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (item_id, sale_date, quantity, revenue)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare transaction insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ItemID, r.Date.Format(dateLayout), r.Quantity.String(), r.Revenue.String()); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO dataset_imports (source, checksum, row_count)
		VALUES (?, ?, ?)
	`, source, checksum, len(records)); err != nil {
		return fmt.Errorf("record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import transaction: %w", err)
	}
	return nil
}
