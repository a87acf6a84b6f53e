package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/chrisholloway5/hmailserver-security/internal/adapters/filter"
	"github.com/chrisholloway5/hmailserver-security/internal/adapters/reputation"
	"github.com/chrisholloway5/hmailserver-security/internal/config"
	"github.com/chrisholloway5/hmailserver-security/internal/core"
	"github.com/chrisholloway5/hmailserver-security/internal/factory"
	"github.com/chrisholloway5/hmailserver-security/internal/logging"
	"github.com/chrisholloway5/hmailserver-security/internal/security"
	"github.com/chrisholloway5/hmailserver-security/internal/utils"
)

var (
	// Advisor flags
	provider    = flag.String("provider", "", "AI advisor provider (openai, gemini, bedrock); empty disables the advisor")
	maxTokens   = flag.Int("max-tokens", 1000, "Maximum tokens for advisor response")
	temperature = flag.Float64("temperature", 0.1, "Temperature for advisor generation")
	topP        = flag.Float64("top-p", 0.9, "Top-p for advisor generation")
	maxBodySize = flag.Int("max-body-size", 4096, "Maximum message body size to send to the advisor")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4", "OpenAI model name")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Pipeline flags
	securityConfig = flag.String("security-config", "", "Path to the JSON security config")
	securityLevel  = flag.String("security-level", "low", "Minimum severity floor (low, medium, high, critical)")

	// Input flags
	inputFile = flag.String("file", "", "Input message file (use stdin if not specified)")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog   = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := createConfigFromFlags()

	analyzer := security.NewAnalyzer(reputation.NewMemoryStore(logger), logger)
	if err := analyzer.Initialize(*securityConfig); err != nil {
		logger.Fatal("Failed to load security config", zap.Error(err))
	}
	analyzer.SetSecurityLevel(core.ParseSecurityLevel(*securityLevel))

	if *provider != "" {
		textProcessor := utils.NewTextProcessor(logger)
		advisorFactory := factory.NewAdvisorFactory(cfg, logger, textProcessor)
		advisor, err := advisorFactory.CreateAdvisor()
		if err != nil {
			logger.Fatal("Failed to create advisor", zap.Error(err))
		}
		analyzer.SetAdvisor(advisor)
		analyzer.EnableAIIntegration(true)
	} else {
		analyzer.EnableAIIntegration(false)
	}

	msg, err := readMessage(logger)
	if err != nil {
		logger.Fatal("Failed to read message", zap.Error(err))
	}

	cliFilter, err := filter.NewCliFilter(analyzer, logger, *verbose)
	if err != nil {
		logger.Fatal("Failed to create CLI filter", zap.Error(err))
	}

	verdict := cliFilter.ProcessMessage(context.Background(), msg)
	if !verdict.IsSecure {
		os.Exit(2)
	}
}

// readMessage parses an RFC 5322 message from the input file or stdin.
func readMessage(logger *zap.Logger) (*core.Message, error) {
	var reader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file %s: %w", *inputFile, err)
		}
		defer file.Close()
		reader = file
		logger.Info("Reading message from file", zap.String("file", *inputFile))
	} else {
		reader = os.Stdin
		logger.Info("Reading message from stdin")
	}

	parsed, err := mail.ReadMessage(bufio.NewReader(reader))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	bodyBytes, err := io.ReadAll(parsed.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}

	recipients := []string{}
	if to := parsed.Header.Get("To"); to != "" {
		for _, r := range strings.Split(to, ",") {
			recipients = append(recipients, strings.TrimSpace(r))
		}
	}

	headers := make(map[string][]string, len(parsed.Header))
	for k, v := range parsed.Header {
		headers[k] = v
	}

	return &core.Message{
		Sender:     parsed.Header.Get("From"),
		Recipients: recipients,
		Subject:    parsed.Header.Get("Subject"),
		Body:       string(bodyBytes),
		Headers:    headers,
	}, nil
}

// createConfigFromFlags creates a configuration from command line flags.
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	if *provider != "" {
		v.Set("advisor.enabled", true)
		v.Set("advisor.provider", *provider)
	}

	switch *provider {
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
		v.Set("openai.max_body_size", *maxBodySize)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
		v.Set("gemini.max_body_size", *maxBodySize)
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
		v.Set("bedrock.max_body_size", *maxBodySize)
	}

	return config.NewFromViper(v)
}
