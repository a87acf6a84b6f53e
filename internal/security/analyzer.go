// Package security implements the email analysis pipeline: it fuses detector
// confidences, policy checks, sender reputation and an optional AI advisor
// into a single verdict per message.
package security

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chrisholloway5/hmailserver-security/internal/core"
	"github.com/chrisholloway5/hmailserver-security/internal/detect"
	"github.com/chrisholloway5/hmailserver-security/internal/policy"
)

const (
	spamThreshold    = 0.5
	secureThreshold  = 0.5
	eventLogCapacity = 1000
)

// advisorCallKey marks contexts that originate from an advisor invocation, so
// an advisor calling back into the analyzer cannot recurse through step 1.
type advisorCallKey struct{}

// Analyzer runs the full security pipeline for one message per call. A single
// Analyze is synchronous; the analyzer itself is safe for concurrent use.
type Analyzer struct {
	logger     *zap.Logger
	reputation core.ReputationStore
	policies   *policy.Engine
	events     *core.EventLog
	blocklist  *detect.Blocklist
	signatures *detect.SignatureSet
	phishing   *detect.PhishingDetector
	malware    *detect.MalwareDetector
	patterns   *detect.PatternDetector
	behavior   *detect.BehaviorDetector
	history    *senderHistory

	mu      sync.RWMutex
	advisor core.Advisor
	cfg     Config
	floor   core.SecurityLevel
}

// NewAnalyzer creates an analyzer with default configuration, default
// policies, and the built-in blocklist and signature seeds.
func NewAnalyzer(reputation core.ReputationStore, logger *zap.Logger) *Analyzer {
	blocklist := detect.NewBlocklist()
	signatures := detect.NewSignatureSet()
	urls := detect.NewURLAnalyzer(blocklist)

	return &Analyzer{
		logger:     logger,
		reputation: reputation,
		policies:   policy.NewEngine(),
		events:     core.NewEventLog(eventLogCapacity),
		blocklist:  blocklist,
		signatures: signatures,
		phishing:   detect.NewPhishingDetector(urls, signatures),
		malware:    detect.NewMalwareDetector(),
		patterns:   detect.NewPatternDetector(signatures),
		behavior:   detect.NewBehaviorDetector(),
		history:    newSenderHistory(historyDepth),
		cfg:        DefaultConfig(),
		floor:      core.LevelLow,
	}
}

// SetSecurityLevel sets a severity floor: no verdict reports a level below it.
func (a *Analyzer) SetSecurityLevel(level core.SecurityLevel) {
	a.mu.Lock()
	a.floor = level
	a.mu.Unlock()
}

// EnableAIIntegration toggles the advisor step without discarding the
// configured advisor.
func (a *Analyzer) EnableAIIntegration(enable bool) {
	a.mu.Lock()
	a.cfg.AIIntegration = enable
	a.mu.Unlock()
}

// SetAdvisor installs the external classifier consulted in step 1. Advisors
// must not call Analyze recursively; the analyzer skips the advisor step for
// contexts already inside an advisor call.
func (a *Analyzer) SetAdvisor(advisor core.Advisor) {
	a.mu.Lock()
	a.advisor = advisor
	a.mu.Unlock()
}

// AddThreatSignature registers a detection signature of the given kind.
func (a *Analyzer) AddThreatSignature(signature string, kind detect.SignatureKind) {
	a.signatures.Add(signature, kind)
}

// RemoveThreatSignature unregisters a detection signature.
func (a *Analyzer) RemoveThreatSignature(signature string) {
	a.signatures.Remove(signature)
}

// AddBlockedHost adds a host substring to the URL blocklist.
func (a *Analyzer) AddBlockedHost(host string) {
	a.blocklist.Add(host)
}

// IsURLBlocklisted reports whether the URL matches the blocklist.
func (a *Analyzer) IsURLBlocklisted(url string) bool {
	return a.blocklist.Contains(url)
}

// AddSecurityPolicy registers a named policy predicate.
func (a *Analyzer) AddSecurityPolicy(name string, predicate policy.Predicate) {
	a.policies.Add(name, predicate)
}

// RemoveSecurityPolicy unregisters a policy by name.
func (a *Analyzer) RemoveSecurityPolicy(name string) {
	a.policies.Remove(name)
}

// GetActivePolicies returns registered policy names in evaluation order.
func (a *Analyzer) GetActivePolicies() []string {
	return a.policies.ActivePolicies()
}

// RecentEvents returns the last n security events in insertion order.
func (a *Analyzer) RecentEvents(n int) []core.SecurityEvent {
	return a.events.Recent(n)
}

// SenderReputation returns the sender's reputation score.
func (a *Analyzer) SenderReputation(ctx context.Context, sender string) float64 {
	return a.reputation.Reputation(ctx, sender)
}

// UpdateSenderReputation overwrites the sender's reputation, clamped to [0,1].
func (a *Analyzer) UpdateSenderReputation(ctx context.Context, sender string, score float64) error {
	return a.reputation.SetReputation(ctx, sender, score)
}

// Analyze runs the pipeline on one message. It never returns an error: detector
// failures contribute zero, and any other failure yields the fail-closed
// verdict (insecure, suspicious, high severity).
func (a *Analyzer) Analyze(ctx context.Context, msg *core.Message) (verdict *core.Verdict) {
	a.mu.RLock()
	advisor := a.advisor
	cfg := a.cfg
	floor := a.floor
	a.mu.RUnlock()

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("analysis pipeline failure",
				zap.String("sender", msg.Sender),
				zap.Any("panic", r))
			verdict = a.failClosed(fmt.Sprintf("Analysis error: %v", r), floor)
		}
	}()

	verdict = &core.Verdict{
		IsSecure: true,
		Threat:   core.ThreatNone,
		Level:    core.LevelLow,
		Metadata: make(map[string]string),
	}

	var scores []float64
	var detected []string
	pinned := false

	reputation := a.reputation.Reputation(ctx, msg.Sender)

	// Step 1: optional AI advisor. No analyzer locks are held here; the
	// advisor may do network I/O.
	if cfg.AIIntegration && advisor != nil && ctx.Value(advisorCallKey{}) == nil {
		advisorCtx := context.WithValue(ctx, advisorCallKey{}, struct{}{})
		if pre, err := advisor.Assess(advisorCtx, msg); err != nil {
			a.logger.Warn("advisor unavailable, continuing without it",
				zap.String("sender", msg.Sender),
				zap.Error(err))
		} else if pre != nil && !pre.IsSecure {
			verdict.IsSecure = false
			verdict.Threat = pre.Threat
			verdict.Level = pre.Level
			verdict.Reason = pre.Reason
			scores = append(scores, clamp(pre.Confidence))
			detected = append(detected, "AI_CLASSIFICATION")
		}
	}

	// Step 2: spam sub-scorer.
	if conf, triggered := a.safeDetect("spam", func() (float64, bool) {
		return a.spamScore(msg, reputation, cfg.CheckSenderReputation)
	}); triggered {
		verdict.IsSecure = false
		verdict.Threat = core.ThreatSpam
		scores = append(scores, conf)
		detected = append(detected, "SPAM")
	}

	// Step 3: suspicious language patterns.
	if conf, triggered := a.safeDetect("patterns", func() (float64, bool) {
		return a.patterns.Detect(msg.Body)
	}); triggered {
		verdict.IsSecure = false
		verdict.Threat = core.ThreatSuspicious
		scores = append(scores, conf)
		detected = append(detected, "SUSPICIOUS_PATTERNS")
	}

	// Step 4: phishing pins severity to high.
	if conf, triggered := a.safeDetect("phishing", func() (float64, bool) {
		return a.phishing.Detect(msg.Body)
	}); triggered {
		verdict.IsSecure = false
		verdict.Threat = core.ThreatPhishing
		verdict.Level = core.LevelHigh
		pinned = true
		scores = append(scores, conf)
		detected = append(detected, "PHISHING")
	}

	// Step 5: malware pins severity to critical.
	if cfg.ScanAttachments {
		if conf, triggered := a.safeDetect("malware", func() (float64, bool) {
			return a.malware.Detect(msg.Attachments)
		}); triggered {
			verdict.IsSecure = false
			verdict.Threat = core.ThreatMalware
			verdict.Level = core.LevelCritical
			pinned = true
			scores = append(scores, conf)
			detected = append(detected, "MALWARE")
		}
	}

	// Optional behavioral check, off by default so the documented step order
	// stays authoritative.
	if cfg.TrackSenderBehavior && msg.Sender != "" {
		recent := a.history.record(msg.Sender, msg.Body)
		if conf, triggered := a.safeDetect("behavior", func() (float64, bool) {
			return a.behavior.Detect(msg.Sender, recent)
		}); triggered {
			verdict.IsSecure = false
			verdict.Threat = core.ThreatSuspicious
			scores = append(scores, conf)
			detected = append(detected, "BEHAVIOR")
		}
	}

	// Step 6: policy checks. User-supplied predicates run unguarded on
	// purpose: a predicate failure is a pipeline failure, not a detector
	// miss, and maps to the fail-closed verdict.
	if violated := a.policies.Violates(msg); violated != "" {
		verdict.IsSecure = false
		verdict.Threat = core.ThreatPolicyViolation
		scores = append(scores, 0.8)
		detected = append(detected, "POLICY_"+violated)
		verdict.Metadata["violated_policy"] = violated
	}

	// Step 7: fuse by max, then grade severity unless phishing or malware
	// already pinned it.
	for _, s := range scores {
		if s > verdict.Confidence {
			verdict.Confidence = s
		}
	}
	if !pinned {
		switch {
		case verdict.Confidence > 0.9:
			verdict.Level = core.LevelCritical
		case verdict.Confidence > 0.7:
			verdict.Level = core.LevelHigh
		case verdict.Confidence > secureThreshold:
			verdict.Level = core.LevelMedium
		default:
			verdict.Level = core.LevelLow
		}
	}
	if verdict.Level < floor {
		verdict.Level = floor
	}

	verdict.Recommendations = recommendations(verdict)

	verdict.Metadata["detected_threats"] = strings.Join(detected, ",")
	verdict.Metadata["sender_reputation"] = strconv.FormatFloat(reputation, 'f', 2, 64)
	verdict.Metadata["analysis_timestamp"] = strconv.FormatInt(time.Now().Unix(), 10)

	a.events.Append(*verdict)

	if cfg.CheckSenderReputation && !verdict.IsSecure && msg.Sender != "" {
		a.penalizeSender(ctx, msg.Sender, reputation, verdict.Confidence)
	}

	if !verdict.IsSecure {
		a.logger.Info("threat detected",
			zap.String("sender", msg.Sender),
			zap.String("threat", string(verdict.Threat)),
			zap.String("level", verdict.Level.String()),
			zap.Float64("confidence", verdict.Confidence),
			zap.String("signals", verdict.Metadata["detected_threats"]))
	}

	return verdict
}

// safeDetect runs a single detector, converting a panic into a zero
// contribution so one broken detector cannot take down the pipeline.
func (a *Analyzer) safeDetect(name string, fn func() (float64, bool)) (confidence float64, triggered bool) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("detector failure, contribution dropped",
				zap.String("detector", name),
				zap.Any("panic", r))
			confidence, triggered = 0.0, false
		}
	}()
	return fn()
}

// penalizeSender feeds a negative verdict back into the reputation store,
// lowering the sender's score in proportion to the aggregate confidence.
func (a *Analyzer) penalizeSender(ctx context.Context, sender string, current, confidence float64) {
	if err := a.reputation.SetReputation(ctx, sender, current-0.2*confidence); err != nil {
		a.logger.Error("failed to update sender reputation",
			zap.String("sender", sender),
			zap.Error(err))
	}
}

func (a *Analyzer) failClosed(reason string, floor core.SecurityLevel) *core.Verdict {
	level := core.LevelHigh
	if level < floor {
		level = floor
	}
	verdict := &core.Verdict{
		IsSecure:   false,
		Threat:     core.ThreatSuspicious,
		Level:      level,
		Confidence: 0.5,
		Reason:     reason,
		Recommendations: []string{
			"Quarantine email for further analysis",
		},
		Metadata: make(map[string]string),
	}
	a.events.Append(*verdict)
	return verdict
}

func recommendations(verdict *core.Verdict) []string {
	if verdict.IsSecure {
		return nil
	}
	recs := []string{"Quarantine email for further analysis"}
	switch verdict.Threat {
	case core.ThreatPhishing:
		recs = append(recs,
			"Warn user about phishing attempt",
			"Block sender domain")
	case core.ThreatMalware:
		recs = append(recs,
			"Scan all attachments with updated signatures",
			"Alert security team immediately")
	}
	return recs
}

func clamp(score float64) float64 {
	if score > 1.0 {
		return 1.0
	}
	if score < 0.0 {
		return 0.0
	}
	return score
}
