package sales

import (
	"context"
	"sort"
	"time"
)

// Filter selects records by item and by an inclusive calendar-day range.
// Empty Items selects every item; a zero From or To leaves that side open.
type Filter struct {
	Items []string
	From  time.Time
	To    time.Time
}

// Match reports whether r passes the filter.
func (f Filter) Match(r Record) bool {
	if len(f.Items) > 0 {
		found := false
		for _, item := range f.Items {
			if item == r.ItemID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.From.IsZero() && r.Date.Before(Day(f.From)) {
		return false
	}
	if !f.To.IsZero() && r.Date.After(Day(f.To)) {
		return false
	}
	return true
}

// Repository gives read access to the transaction log.
type Repository interface {
	// Items returns the distinct item ids in first-seen order.
	Items(ctx context.Context) ([]string, error)
	// Bounds returns the earliest and latest transaction days.
	Bounds(ctx context.Context) (from, to time.Time, err error)
	// Records returns the transactions matching f ordered by date.
	Records(ctx context.Context, f Filter) ([]Record, error)
}

// MemoryRepository serves records from memory.
type MemoryRepository struct {
	items   []string
	records []Record
}

// NewMemoryRepository creates a repository over a copy of records. Items keep
// the order in which they first appear in records.
func NewMemoryRepository(records []Record) *MemoryRepository {
	seen := make(map[string]struct{})
	items := make([]string, 0)
	for _, r := range records {
		if _, ok := seen[r.ItemID]; ok {
			continue
		}
		seen[r.ItemID] = struct{}{}
		items = append(items, r.ItemID)
	}

	copied := make([]Record, len(records))
	copy(copied, records)
	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].Date.Before(copied[j].Date)
	})
	return &MemoryRepository{items: items, records: copied}
}

func (m *MemoryRepository) Items(ctx context.Context) ([]string, error) {
	items := make([]string, len(m.items))
	copy(items, m.items)
	return items, nil
}

func (m *MemoryRepository) Bounds(ctx context.Context) (time.Time, time.Time, error) {
	if len(m.records) == 0 {
		return time.Time{}, time.Time{}, nil
	}
	return m.records[0].Date, m.records[len(m.records)-1].Date, nil
}

func (m *MemoryRepository) Records(ctx context.Context, f Filter) ([]Record, error) {
	out := make([]Record, 0)
	for _, r := range m.records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}
