package seed

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/salesdash/internal/sales"
	"github.com/Simplici0/salesdash/internal/store"
)

// Config contains the values required by startup seed.
type Config struct {
	AnalystEmail    string
	AnalystPassword string
	DataPath        string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way: it ensures the analyst
// account and reimports the dataset only when the source file changed.
func Run(ctx context.Context, db *sql.DB, cfg Config, logger *zap.Logger) (Stats, error) {
	stats := Stats{}

	if err := seedAnalyst(ctx, db, cfg.AnalystEmail, cfg.AnalystPassword, &stats); err != nil {
		return Stats{}, err
	}
	if err := importDataset(ctx, store.NewTransactions(db), cfg.DataPath, &stats, logger); err != nil {
		return Stats{}, err
	}

	return stats, nil
}

func seedAnalyst(ctx context.Context, db *sql.DB, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check analyst user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash analyst password: %w", err)
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return fmt.Errorf("insert analyst user: %w", err)
	}
	stats.Inserts++
	return nil
}

func importDataset(ctx context.Context, repo *store.Transactions, path string, stats *Stats, logger *zap.Logger) error {
	previous, imported, err := repo.LastImportChecksum(ctx)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && imported {
			logger.Warn("dataset file missing, serving previous import", zap.String("path", path))
			return nil
		}
		return fmt.Errorf("read dataset %s: %w", path, err)
	}

	sum := sha256.Sum256(content)
	checksum := hex.EncodeToString(sum[:])
	if imported && checksum == previous {
		logger.Debug("dataset unchanged", zap.String("path", path))
		return nil
	}

	records, err := sales.ReadCSV(bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("parse dataset %s: %w", path, err)
	}

	if err := repo.ReplaceAll(ctx, records, path, checksum); err != nil {
		return err
	}

	stats.Inserts += len(records)
	if imported {
		stats.Updates++
	}
	logger.Info("dataset imported",
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Bool("replaced", imported))
	return nil
}
