// Package gemini implements the AI advisor on top of Google Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

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

// Advisor is an implementation of the core.Advisor interface using Gemini.
type Advisor struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewAdvisor creates a new Gemini advisor.
func NewAdvisor(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*Advisor, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &Advisor{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the underlying Gemini client.
func (a *Advisor) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

// Assess asks the model for a pre-verdict on the message.
func (a *Advisor) Assess(ctx context.Context, msg *core.Message) (*core.Verdict, error) {
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
	body := a.textProcessor.ProcessText(msg.Body, a.maxBodySize)
	prompt := fmt.Sprintf(promptFormat, msg.Sender, to, msg.Subject, attachments, body)

	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	var assessment assessmentResponse
	if err := json.Unmarshal([]byte(responseText), &assessment); err != nil {
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
	}

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
	}, nil
}
