// Package bedrock implements the AI advisor on top of Amazon Bedrock.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
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

// Advisor is an implementation of the core.Advisor interface using Bedrock.
type Advisor struct {
	client        *bedrockruntime.Client
	modelID       string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewAdvisor creates a new Bedrock advisor.
func NewAdvisor(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Advisor {
	return &Advisor{
		client:        client,
		modelID:       modelID,
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

	var payload []byte
	var err error
	switch {
	case a.isAnthropicModel():
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": a.maxTokens,
			"temperature":          a.temperature,
			"top_p":                a.topP,
		})
	case a.isAmazonTitanModel():
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": a.maxTokens,
				"temperature":   a.temperature,
				"topP":          a.topP,
			},
		})
	default:
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  a.maxTokens,
			"temperature": a.temperature,
			"top_p":       a.topP,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := a.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &a.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	responseText, err := a.extractText(resp.Body)
	if err != nil {
		return nil, err
	}

	assessment, err := parseAssessment(responseText)
	if err != nil {
		return nil, err
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

// extractText pulls the generated text out of the model-specific response
// envelope.
func (a *Advisor) extractText(body []byte) (string, error) {
	switch {
	case a.isAnthropicModel():
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	case a.isAmazonTitanModel():
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	default:
		var genericResp struct {
			Output   string `json:"output"`
			Text     string `json:"text"`
			Response string `json:"response"`
		}
		if err := json.Unmarshal(body, &genericResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		if genericResp.Output != "" {
			return genericResp.Output, nil
		}
		if genericResp.Text != "" {
			return genericResp.Text, nil
		}
		if genericResp.Response != "" {
			return genericResp.Response, nil
		}
		return string(body), nil
	}
}

func parseAssessment(responseText string) (*assessmentResponse, error) {
	var assessment assessmentResponse
	if err := json.Unmarshal([]byte(responseText), &assessment); err == nil {
		return &assessment, nil
	}

	jsonStart := strings.IndexByte(responseText, '{')
	jsonEnd := strings.LastIndexByte(responseText, '}') + 1
	if jsonStart < 0 || jsonStart >= jsonEnd {
		return nil, fmt.Errorf("failed to extract JSON from model response")
	}
	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd]), &assessment); err != nil {
		return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	return &assessment, nil
}

func (a *Advisor) isAnthropicModel() bool {
	return strings.HasPrefix(a.modelID, "anthropic.claude")
}

func (a *Advisor) isAmazonTitanModel() bool {
	return strings.HasPrefix(a.modelID, "amazon.titan")
}
