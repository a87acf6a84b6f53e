package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newPhishingDetector() (*PhishingDetector, *SignatureSet) {
	signatures := NewSignatureSet()
	return NewPhishingDetector(NewURLAnalyzer(NewBlocklist()), signatures), signatures
}

func TestPhishingDetector_Detect(t *testing.T) {
	detector, _ := newPhishingDetector()

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
			name:           "Credential harvesting with urgency",
			body:           "URGENT action required: please verify your account immediately or your account will be closed. Suspicious activity detected.",
			wantConfidence: 1.0,
			wantTriggered:  true,
		},
		{
			name:           "Single phrase stays under threshold",
			body:           "Please verify your account when you have a moment.",
			wantConfidence: 0.2,
			wantTriggered:  false,
		},
		{
			name:           "Blocklisted URL plus phrase and urgency",
			body:           "Urgent: click http://phishing-example.net/login to verify your account",
			wantConfidence: 0.7,
			wantTriggered:  true,
		},
		{
			name:           "Benign newsletter",
			body:           "Here is this week's engineering digest. Enjoy the reading!",
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

func TestPhishingDetector_CustomSignatures(t *testing.T) {
	detector, signatures := newPhishingDetector()

	confidence, _ := detector.Detect("Reset your password today")
	assert.InDelta(t, 0.0, confidence, 0.001)

	signatures.Add("reset.your.password", SignaturePhishing)

	confidence, triggered := detector.Detect("Reset your password today")
	assert.InDelta(t, 0.2, confidence, 0.001)
	assert.False(t, triggered)

	signatures.Remove("reset.your.password")

	confidence, _ = detector.Detect("Reset your password today")
	assert.InDelta(t, 0.0, confidence, 0.001)
}
