package core

import "time"

// Message is a normalized inbound email handed to the analyzer. It is treated
// as immutable for the duration of one analysis.
type Message struct {
	Sender      string
	Recipients  []string
	Subject     string
	Body        string
	Attachments []string
	Headers     map[string][]string
}

// ThreatKind classifies the dominant threat found in a message.
type ThreatKind string

const (
	ThreatNone            ThreatKind = "none"
	ThreatSpam            ThreatKind = "spam"
	ThreatPhishing        ThreatKind = "phishing"
	ThreatMalware         ThreatKind = "malware"
	ThreatSuspicious      ThreatKind = "suspicious"
	ThreatPolicyViolation ThreatKind = "policy_violation"
)

// SecurityLevel grades verdict severity. Levels are ordered so they can be
// compared and floored.
type SecurityLevel int

const (
	LevelLow SecurityLevel = iota
	LevelMedium
	LevelHigh
	LevelCritical
)

// String returns the human-readable level name.
func (l SecurityLevel) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseSecurityLevel converts a level name to a SecurityLevel, defaulting to
// LevelLow for unrecognized input.
func ParseSecurityLevel(name string) SecurityLevel {
	switch name {
	case "medium":
		return LevelMedium
	case "high":
		return LevelHigh
	case "critical":
		return LevelCritical
	default:
		return LevelLow
	}
}

// Verdict is the fused output of one analysis.
type Verdict struct {
	IsSecure        bool
	Threat          ThreatKind
	Level           SecurityLevel
	Confidence      float64
	Reason          string
	Recommendations []string
	Metadata        map[string]string
}

// SecurityEvent is a verdict retained in the audit log together with the time
// it was produced.
type SecurityEvent struct {
	Verdict   Verdict
	Timestamp time.Time
}
