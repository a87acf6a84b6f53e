package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chrisholloway5/hmailserver-security/internal/adapters/filter"
	"github.com/chrisholloway5/hmailserver-security/internal/config"
	"github.com/chrisholloway5/hmailserver-security/internal/ports"
	"github.com/chrisholloway5/hmailserver-security/internal/security"
)

// FilterFactory creates email filters based on configuration.
type FilterFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	analyzer *security.Analyzer
}

// NewFilterFactory creates a new filter factory.
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, analyzer *security.Analyzer) *FilterFactory {
	return &FilterFactory{
		cfg:      cfg,
		logger:   logger,
		analyzer: analyzer,
	}
}

// CreateEmailFilter creates an email filter based on the configuration.
func (f *FilterFactory) CreateEmailFilter() (ports.EmailFilter, error) {
	switch f.cfg.GetString("server.filter_type") {
	case "smtp":
		return filter.NewSMTPFilter(
			f.analyzer,
			f.logger,
			f.cfg.GetString("server.listen_address"),
			f.cfg.GetBool("server.block_threats"),
			filter.VerdictHeaders{
				Status:     f.cfg.GetString("server.headers.status"),
				Threat:     f.cfg.GetString("server.headers.threat"),
				Level:      f.cfg.GetString("server.headers.level"),
				Confidence: f.cfg.GetString("server.headers.confidence"),
			},
			filter.Downstream{
				Enabled: f.cfg.GetBool("server.downstream.enabled"),
				Address: f.cfg.GetString("server.downstream.address"),
				Port:    f.cfg.GetInt("server.downstream.port"),
			},
		), nil
	case "cli":
		return filter.NewCliFilter(f.analyzer, f.logger, false)
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", f.cfg.GetString("server.filter_type"))
	}
}
