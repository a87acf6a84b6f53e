package detect

import (
	"strings"
	"unicode"
)

const (
	suspiciousThreshold = 0.4
	behaviorThreshold   = 0.5
)

var suspiciousPatterns = []string{
	"wire transfer", "western union", "money gram", "bitcoin", "cryptocurrency",
	"inheritance", "beneficiary", "confidential", "classified", "top secret",
}

// PatternDetector scores message bodies for scam vocabulary, shouting and
// excessive punctuation.
type PatternDetector struct {
	signatures *SignatureSet
}

// NewPatternDetector creates a suspicious-pattern detector. Operator-registered
// suspicious signatures extend the built-in vocabulary.
func NewPatternDetector(signatures *SignatureSet) *PatternDetector {
	return &PatternDetector{signatures: signatures}
}

// Detect returns a confidence in [0,1] and whether it crosses the
// suspicious-pattern threshold.
func (d *PatternDetector) Detect(body string) (confidence float64, triggered bool) {
	if body == "" {
		return 0.0, false
	}

	lower := strings.ToLower(body)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(lower, pattern) {
			confidence += 0.2
		}
	}
	for _, sig := range d.signatures.OfKind(SignatureSuspicious) {
		if strings.Contains(lower, sig) {
			confidence += 0.2
		}
	}

	// Capitalization ratio is computed over the raw body; case folding first
	// would erase the signal.
	letters, capitals := 0, 0
	for _, r := range body {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				capitals++
			}
		}
	}
	if letters > 0 && float64(capitals)/float64(letters) > 0.3 {
		confidence += 0.2
	}

	if strings.Count(body, "!") > 5 {
		confidence += 0.3
	}

	confidence = clamp(confidence)
	return confidence, confidence > suspiciousThreshold
}

// BehaviorDetector scores a sender's recent sending pattern for volume and
// repetition anomalies.
type BehaviorDetector struct{}

// NewBehaviorDetector creates a behavioral anomaly detector.
func NewBehaviorDetector() *BehaviorDetector {
	return &BehaviorDetector{}
}

// Detect returns an anomaly score for the sender's recent message bodies and
// whether it crosses the behavioral threshold. Burst volume and identical
// repeated content each contribute.
func (d *BehaviorDetector) Detect(sender string, recentBodies []string) (anomalyScore float64, triggered bool) {
	if len(recentBodies) > 10 {
		anomalyScore += 0.3
	}

	if len(recentBodies) >= 2 {
		identical := true
		for i := 1; i < len(recentBodies); i++ {
			if recentBodies[i] != recentBodies[i-1] {
				identical = false
				break
			}
		}
		if identical {
			anomalyScore += 0.4
		}
	}

	return anomalyScore, anomalyScore > behaviorThreshold
}
