// Package openai implements the AI advisor on top of the OpenAI chat API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/chrisholloway5/hmailserver-security/internal/core"
	"github.com/chrisholloway5/hmailserver-security/internal/utils"
)

const promptFormat = `You are an email security classifier. Assess the following email for spam, phishing and malware indicators.
Respond with a JSON object containing:
- is_secure: boolean (false if the email is a threat)
- threat: one of "none", "spam", "phishing", "malware", "suspicious"
- severity: one of "low", "medium", "high", "critical"
- confidence: number between 0 and 1
- reason: string (brief explanation)

Email:
From: %s
To: %s
Subject: %s
Attachments: %s
Body:
%s

Respond only with the JSON object and nothing else.`

// assessmentResponse is the structured response expected from the model.
type assessmentResponse struct {
	IsSecure   bool    `json:"is_secure"`
	Threat     string  `json:"threat"`
	Severity   string  `json:"severity"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Advisor is an implementation of the core.Advisor interface using OpenAI.
type Advisor struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewAdvisor creates a new OpenAI advisor.
func NewAdvisor(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Advisor {
	return &Advisor{
		client:        openai.NewClient(apiKey),
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Assess asks the model for a pre-verdict on the message.
func (a *Advisor) Assess(ctx context.Context, msg *core.Message) (*core.Verdict, error) {
	prompt := buildPrompt(msg, a.textProcessor, a.maxBodySize)

	req := openai.ChatCompletionRequest{
		Model: a.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an email security classifier. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
		TopP:        a.topP,
	}
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: "json"}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	assessment, err := parseAssessment(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return verdictFromAssessment(assessment), nil
}

func buildPrompt(msg *core.Message, tp *utils.TextProcessor, maxBodySize int) string {
	to := ""
	if len(msg.Recipients) > 0 {
		to = msg.Recipients[0]
		if len(msg.Recipients) > 1 {
			to += fmt.Sprintf(" and %d others", len(msg.Recipients)-1)
		}
	}
	attachments := "none"
	if len(msg.Attachments) > 0 {
		attachments = fmt.Sprintf("%v", msg.Attachments)
	}
	body := tp.ProcessText(msg.Body, maxBodySize)
	return fmt.Sprintf(promptFormat, msg.Sender, to, msg.Subject, attachments, body)
}

// parseAssessment decodes the model output, tolerating prose around the JSON
// object.
func parseAssessment(responseText string) (*assessmentResponse, error) {
	var assessment assessmentResponse
	if err := json.Unmarshal([]byte(responseText), &assessment); err == nil {
		return &assessment, nil
	}

	jsonStart := -1
	jsonEnd := -1
	for i := 0; i < len(responseText); i++ {
		if responseText[i] == '{' {
			jsonStart = i
			break
		}
	}
	for i := len(responseText) - 1; i >= 0; i-- {
		if responseText[i] == '}' {
			jsonEnd = i + 1
			break
		}
	}
	if jsonStart < 0 || jsonStart >= jsonEnd {
		return nil, fmt.Errorf("failed to extract JSON from model response")
	}
	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd]), &assessment); err != nil {
		return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	return &assessment, nil
}

func verdictFromAssessment(assessment *assessmentResponse) *core.Verdict {
	threat := core.ThreatKind(assessment.Threat)
	switch threat {
	case core.ThreatNone, core.ThreatSpam, core.ThreatPhishing, core.ThreatMalware, core.ThreatSuspicious:
	default:
		threat = core.ThreatSuspicious
	}
	if assessment.IsSecure {
		threat = core.ThreatNone
	}
	return &core.Verdict{
		IsSecure:   assessment.IsSecure,
		Threat:     threat,
		Level:      core.ParseSecurityLevel(assessment.Severity),
		Confidence: assessment.Confidence,
		Reason:     assessment.Reason,
		Metadata:   make(map[string]string),
	}
}
