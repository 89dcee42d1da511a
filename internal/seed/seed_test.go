package seed

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/salesdash/internal/db"
	"github.com/Simplici0/salesdash/internal/migrations"
)

const ordersCSV = "ID;Date;Amount;SumS\nA;2025-02-01;2;1 000,00\nB;2025-02-02;1;250,50\n"

func newSeedTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "seed-test.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(context.Background(), database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database
}

func writeDataset(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	database := newSeedTestDB(t)
	dataPath := filepath.Join(t.TempDir(), "orders.csv")
	writeDataset(t, dataPath, ordersCSV)

	cfg := Config{
		AnalystEmail:    "analyst@example.com",
		AnalystPassword: "12345",
		DataPath:        dataPath,
	}

	for i := 0; i < 5; i++ {
		stats, err := Run(ctx, database, cfg, zap.NewNop())
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != 3 {
				t.Fatalf("expected 3 inserts in first run, got %d", stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 || stats.Updates != 0 {
			t.Fatalf("expected no changes in iteration %d, got %+v", i, stats)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM users WHERE email = ?`, "analyst@example.com", 1)
	assertCount(t, database, `SELECT COUNT(*) FROM transactions`, nil, 2)
	assertCount(t, database, `SELECT COUNT(*) FROM dataset_imports`, nil, 1)

	var hash string
	if err := database.QueryRow(`SELECT password_hash FROM users WHERE email = ?`, "analyst@example.com").Scan(&hash); err != nil {
		t.Fatalf("query analyst hash: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("12345")); err != nil {
		t.Fatalf("expected analyst hash to match password: %v", err)
	}
}

func TestRunReimportsChangedDataset(t *testing.T) {
	ctx := context.Background()
	database := newSeedTestDB(t)
	dataPath := filepath.Join(t.TempDir(), "orders.csv")
	writeDataset(t, dataPath, ordersCSV)

	if _, err := Run(ctx, database, Config{DataPath: dataPath}, zap.NewNop()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	writeDataset(t, dataPath, ordersCSV+"C;2025-02-03;4;400\n")
	stats, err := Run(ctx, database, Config{DataPath: dataPath}, zap.NewNop())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if stats.Updates != 1 || stats.Inserts != 3 {
		t.Fatalf("unexpected stats after change: %+v", stats)
	}

	assertCount(t, database, `SELECT COUNT(*) FROM transactions`, nil, 3)
	assertCount(t, database, `SELECT COUNT(*) FROM dataset_imports`, nil, 2)
}

func TestRunMissingDataset(t *testing.T) {
	ctx := context.Background()
	database := newSeedTestDB(t)
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "orders.csv")

	if _, err := Run(ctx, database, Config{DataPath: dataPath}, zap.NewNop()); err == nil {
		t.Fatalf("expected error for missing dataset on first run")
	}

	writeDataset(t, dataPath, ordersCSV)
	if _, err := Run(ctx, database, Config{DataPath: dataPath}, zap.NewNop()); err != nil {
		t.Fatalf("import run: %v", err)
	}

	if err := os.Remove(dataPath); err != nil {
		t.Fatalf("remove dataset: %v", err)
	}
	if _, err := Run(ctx, database, Config{DataPath: dataPath}, zap.NewNop()); err != nil {
		t.Fatalf("expected previous import to be served, got %v", err)
	}
	assertCount(t, database, `SELECT COUNT(*) FROM transactions`, nil, 2)
}

func TestRunRejectsMalformedDataset(t *testing.T) {
	database := newSeedTestDB(t)
	dataPath := filepath.Join(t.TempDir(), "orders.csv")
	writeDataset(t, dataPath, "ID;Date;Amount;SumS\nA;not-a-date;1;1\n")

	if _, err := Run(context.Background(), database, Config{DataPath: dataPath}, zap.NewNop()); err == nil {
		t.Fatalf("expected parse error")
	}
	assertCount(t, database, `SELECT COUNT(*) FROM transactions`, nil, 0)
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
