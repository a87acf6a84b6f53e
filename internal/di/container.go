package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/chrisholloway5/hmailserver-security/internal/config"
	"github.com/chrisholloway5/hmailserver-security/internal/core"
	"github.com/chrisholloway5/hmailserver-security/internal/factory"
	"github.com/chrisholloway5/hmailserver-security/internal/logging"
	"github.com/chrisholloway5/hmailserver-security/internal/ports"
	"github.com/chrisholloway5/hmailserver-security/internal/security"
	"github.com/chrisholloway5/hmailserver-security/internal/utils"
)

// BuildContainer creates and configures a dependency injection container.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewAdvisorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewReputationFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register reputation store
	if err := container.Provide(func(f *factory.ReputationFactory) (core.ReputationStore, error) {
		return f.CreateReputationStore()
	}); err != nil {
		return nil, err
	}

	// Register the analyzer, configured from the app config: security level
	// floor, JSON security config, and the optional advisor.
	if err := container.Provide(func(
		cfg *config.Config,
		logger *zap.Logger,
		reputationStore core.ReputationStore,
		advisorFactory *factory.AdvisorFactory,
	) (*security.Analyzer, error) {
		analyzer := security.NewAnalyzer(reputationStore, logger)
		if err := analyzer.Initialize(cfg.GetString("security.config_path")); err != nil {
			return nil, err
		}
		analyzer.SetSecurityLevel(core.ParseSecurityLevel(cfg.GetString("security.level")))

		advisor, err := advisorFactory.CreateAdvisor()
		if err != nil {
			return nil, err
		}
		if advisor != nil {
			analyzer.SetAdvisor(advisor)
			analyzer.EnableAIIntegration(true)
		}
		return analyzer, nil
	}); err != nil {
		return nil, err
	}

	// Register email filter
	if err := container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
