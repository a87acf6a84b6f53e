package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/chrisholloway5/hmailserver-security/internal/adapters/reputation"
	"github.com/chrisholloway5/hmailserver-security/internal/config"
	"github.com/chrisholloway5/hmailserver-security/internal/core"
)

// ReputationFactory creates reputation stores based on configuration.
type ReputationFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewReputationFactory creates a new reputation factory.
func NewReputationFactory(cfg *config.Config, logger *zap.Logger) *ReputationFactory {
	return &ReputationFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateReputationStore creates a reputation store based on the configuration.
func (f *ReputationFactory) CreateReputationStore() (core.ReputationStore, error) {
	repCfg := f.cfg.GetReputation()

	switch repCfg.Type {
	case "memory":
		return reputation.NewMemoryStore(f.logger), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(repCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return reputation.NewSQLiteStore(repCfg.SQLitePath, f.logger)
	case "mysql":
		return reputation.NewMySQLStore(repCfg.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported reputation store type: %s", repCfg.Type)
	}
}
