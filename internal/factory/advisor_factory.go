package factory

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/chrisholloway5/hmailserver-security/internal/adapters/bedrock"
	"github.com/chrisholloway5/hmailserver-security/internal/adapters/gemini"
	"github.com/chrisholloway5/hmailserver-security/internal/adapters/openai"
	"github.com/chrisholloway5/hmailserver-security/internal/config"
	"github.com/chrisholloway5/hmailserver-security/internal/core"
	"github.com/chrisholloway5/hmailserver-security/internal/utils"
)

// AdvisorFactory creates AI advisors.
type AdvisorFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewAdvisorFactory creates a new advisor factory.
func NewAdvisorFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *AdvisorFactory {
	return &AdvisorFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateAdvisor creates an advisor for the configured provider, or nil when
// the advisor is disabled.
func (f *AdvisorFactory) CreateAdvisor() (core.Advisor, error) {
	advisorCfg := f.cfg.GetAdvisor()
	if !advisorCfg.Enabled {
		return nil, nil
	}

	switch advisorCfg.Provider {
	case "openai":
		c := f.cfg.GetOpenAI()
		return openai.NewAdvisor(
			c.APIKey, c.ModelName, c.MaxTokens, c.Temperature, c.TopP,
			c.MaxBodySize, f.logger, f.textProcessor,
		), nil
	case "gemini":
		c := f.cfg.GetGemini()
		return gemini.NewAdvisor(
			c.APIKey, c.ModelName, c.MaxTokens, c.Temperature, c.TopP,
			c.MaxBodySize, f.logger, f.textProcessor,
		)
	case "bedrock":
		c := f.cfg.GetBedrock()
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(c.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}
		client := bedrockruntime.NewFromConfig(awsCfg)
		return bedrock.NewAdvisor(
			client, c.ModelID, c.MaxTokens, c.Temperature, c.TopP,
			c.MaxBodySize, f.logger, f.textProcessor,
		), nil
	default:
		return nil, fmt.Errorf("unsupported advisor provider: %s", advisorCfg.Provider)
	}
}
