package reputation

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLStore is a durable ReputationStore backed by MySQL, for deployments
// where multiple filter instances share one reputation view.
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore connects to MySQL and prepares the reputation table.
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sender_reputation (
			sender VARCHAR(255) PRIMARY KEY,
			score FLOAT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create reputation table: %w", err)
	}

	return &MySQLStore{db: db, logger: logger}, nil
}

// Reputation returns the sender's score, or NeutralScore if unknown or on
// query failure.
func (s *MySQLStore) Reputation(ctx context.Context, sender string) float64 {
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
func (s *MySQLStore) SetReputation(ctx context.Context, sender string, score float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sender_reputation (sender, score)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE score = VALUES(score)
	`, sender, clampScore(score))
	if err != nil {
		return fmt.Errorf("failed to store sender reputation: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
