package detect

import "strings"

// phishingThreshold is the confidence above which phishing is reported.
const phishingThreshold = 0.6

// phishingPhrases are matched against the body with spaces replaced by dots,
// so a signature covers both "verify your account" and "verify.your.account".
var phishingPhrases = []string{
	"verify.your.account",
	"suspended.account",
	"click.here.to.verify",
	"update.your.information",
	"confirm.your.identity",
	"urgent.action.required",
	"account.will.be.closed",
	"suspicious.activity.detected",
}

var urgencyWords = []string{"immediate", "urgent", "expire", "suspend", "terminate", "limited time"}

// PhishingDetector scores message bodies for credential-harvesting language
// and risky embedded URLs.
type PhishingDetector struct {
	urls       *URLAnalyzer
	signatures *SignatureSet
}

// NewPhishingDetector creates a phishing detector. The signature set extends
// the built-in phrase list with operator-registered phishing signatures.
func NewPhishingDetector(urls *URLAnalyzer, signatures *SignatureSet) *PhishingDetector {
	return &PhishingDetector{urls: urls, signatures: signatures}
}

// Detect returns a confidence in [0,1] and whether it crosses the phishing
// threshold. An empty body yields 0.
func (d *PhishingDetector) Detect(body string) (confidence float64, triggered bool) {
	if body == "" {
		return 0.0, false
	}

	lower := strings.ToLower(body)
	dotted := strings.ReplaceAll(lower, " ", ".")

	for _, phrase := range phishingPhrases {
		if strings.Contains(dotted, phrase) {
			confidence += 0.2
		}
	}
	for _, sig := range d.signatures.OfKind(SignaturePhishing) {
		if strings.Contains(dotted, sig) {
			confidence += 0.2
		}
	}

	for _, url := range ExtractURLs(body) {
		risk, _ := d.urls.Analyze(url)
		confidence += risk * 0.4
	}

	for _, word := range urgencyWords {
		if strings.Contains(lower, word) {
			confidence += 0.1
		}
	}

	confidence = clamp(confidence)
	return confidence, confidence > phishingThreshold
}
