package reputation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteStore is a durable ReputationStore backed by SQLite, for deployments
// that need reputation to survive restarts.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (creating if needed) a SQLite reputation database.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sender_reputation (
			sender TEXT PRIMARY KEY,
			score REAL NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create reputation table: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Reputation returns the sender's score, or NeutralScore if unknown or on
// query failure. Lookup failures degrade to neutral rather than blocking the
// pipeline.
func (s *SQLiteStore) Reputation(ctx context.Context, sender string) float64 {
	var score float64
	err := s.db.QueryRowContext(ctx, `
		SELECT score FROM sender_reputation WHERE sender = ?
	`, sender).Scan(&score)
	if err != nil {
		if err != sql.ErrNoRows {
			s.logger.Error("failed to query sender reputation",
				zap.String("sender", sender),
				zap.Error(err))
		}
		return NeutralScore
	}
	return score
}

// SetReputation overwrites the sender's score, clamped to [0,1].
func (s *SQLiteStore) SetReputation(ctx context.Context, sender string, score float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sender_reputation (sender, score, updated_at)
		VALUES (?, ?, ?)
	`, sender, clampScore(score), time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to store sender reputation: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
