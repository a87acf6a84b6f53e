package security

import (
	"strings"

	"github.com/chrisholloway5/hmailserver-security/internal/core"
	"github.com/chrisholloway5/hmailserver-security/internal/detect"
)

var spamPatterns = []string{
	"lottery", "winner", "congratulations", "urgent", "act now",
	"click here", "limited time", "free money", "no obligation",
}

// spamScore rates the message against the spam vocabulary, registered spam
// signatures, sender reputation and punctuation excess. Triggered above
// spamThreshold.
func (a *Analyzer) spamScore(msg *core.Message, reputation float64, useReputation bool) (float64, bool) {
	content := strings.ToLower(msg.Subject + " " + msg.Body)

	confidence := 0.0
	for _, pattern := range spamPatterns {
		if strings.Contains(content, pattern) {
			confidence += 0.15
		}
	}

	// Registered spam signatures use the dotted form shared with the
	// phishing phrase set.
	dotted := strings.ReplaceAll(content, " ", ".")
	for _, sig := range a.signatures.OfKind(detect.SignatureSpam) {
		if strings.Contains(dotted, sig) {
			confidence += 0.15
		}
	}

	if useReputation && reputation < 0.3 {
		confidence += 0.4
	}

	if strings.Count(content, "!") > 3 {
		confidence += 0.2
	}

	confidence = clamp(confidence)
	return confidence, confidence > spamThreshold
}
