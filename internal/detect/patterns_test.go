package detect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatternDetector_Detect(t *testing.T) {
	detector := NewPatternDetector(NewSignatureSet())

	tests := []struct {
		name           string
		body           string
		wantConfidence float64
		wantTriggered  bool
	}{
		{
			name:           "Empty body",
			body:           "",
			wantConfidence: 0.0,
			wantTriggered:  false,
		},
		{
			name:           "Scam vocabulary",
			body:           "wire transfer via bitcoin for your inheritance",
			wantConfidence: 0.6,
			wantTriggered:  true,
		},
		{
			name:           "Shouting alone",
			body:           "THIS IS ALL CAPS CONTENT",
			wantConfidence: 0.2,
			wantTriggered:  false,
		},
		{
			name:           "Excessive exclamation marks",
			body:           "Hello!!!!!! there",
			wantConfidence: 0.3,
			wantTriggered:  false,
		},
		{
			name:           "Combined shouting, vocabulary and punctuation",
			body:           "WIN BITCOIN NOW!!!!!!",
			wantConfidence: 0.7,
			wantTriggered:  true,
		},
		{
			name:           "Normal correspondence",
			body:           "Hi team, the quarterly report is attached. Thanks!",
			wantConfidence: 0.0,
			wantTriggered:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confidence, triggered := detector.Detect(tt.body)
			assert.InDelta(t, tt.wantConfidence, confidence, 0.001)
			assert.Equal(t, tt.wantTriggered, triggered)
		})
	}
}

func TestPatternDetector_CustomSignatures(t *testing.T) {
	signatures := NewSignatureSet()
	detector := NewPatternDetector(signatures)

	signatures.Add("crypto giveaway", SignatureSuspicious)

	confidence, triggered := detector.Detect("Join our CRYPTO GIVEAWAY today")
	assert.InDelta(t, 0.4, confidence, 0.001, "signature match plus caps ratio")
	assert.False(t, triggered)
}

func TestBehaviorDetector_Detect(t *testing.T) {
	detector := NewBehaviorDetector()

	tests := []struct {
		name          string
		bodies        []string
		wantScore     float64
		wantTriggered bool
	}{
		{
			name:          "No history",
			bodies:        nil,
			wantScore:     0.0,
			wantTriggered: false,
		},
		{
			name:          "High volume of distinct messages",
			bodies:        distinctBodies(11),
			wantScore:     0.3,
			wantTriggered: false,
		},
		{
			name:          "Few identical messages",
			bodies:        []string{"same content", "same content", "same content"},
			wantScore:     0.4,
			wantTriggered: false,
		},
		{
			name:          "High volume of identical messages",
			bodies:        repeatedBodies("buy now", 12),
			wantScore:     0.7,
			wantTriggered: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, triggered := detector.Detect("sender@example.com", tt.bodies)
			assert.InDelta(t, tt.wantScore, score, 0.001)
			assert.Equal(t, tt.wantTriggered, triggered)
		})
	}
}

func distinctBodies(n int) []string {
	bodies := make([]string, n)
	for i := range bodies {
		bodies[i] = "message " + strings.Repeat("x", i+1)
	}
	return bodies
}

func repeatedBodies(body string, n int) []string {
	bodies := make([]string, n)
	for i := range bodies {
		bodies[i] = body
	}
	return bodies
}
