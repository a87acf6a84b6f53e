package filter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chrisholloway5/hmailserver-security/internal/core"
	"github.com/chrisholloway5/hmailserver-security/internal/security"
)

// CliFilter implements a command-line interface for one-shot analysis.
type CliFilter struct {
	analyzer *security.Analyzer
	logger   *zap.Logger
	verbose  bool
}

// NewCliFilter creates a new CLI filter.
func NewCliFilter(analyzer *security.Analyzer, logger *zap.Logger, verbose bool) (*CliFilter, error) {
	return &CliFilter{
		analyzer: analyzer,
		logger:   logger,
		verbose:  verbose,
	}, nil
}

// ProcessMessage analyzes a message and displays the verdict.
func (f *CliFilter) ProcessMessage(ctx context.Context, msg *core.Message) *core.Verdict {
	f.logger.Debug("processing message", zap.String("sender", msg.Sender))

	fmt.Printf("\n=== Message Summary ===\n")
	fmt.Printf("From: %s\n", msg.Sender)
	fmt.Printf("To: %s\n", strings.Join(msg.Recipients, ", "))
	fmt.Printf("Subject: %s\n", msg.Subject)
	fmt.Printf("Attachments: %d\n", len(msg.Attachments))
	fmt.Printf("Body length: %d bytes\n", len(msg.Body))

	if f.verbose {
		preview := msg.Body
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nBody preview:\n%s\n", preview)
	}

	fmt.Printf("\n=== Analysis ===\n")
	startTime := time.Now()
	verdict := f.analyzer.Analyze(ctx, msg)
	duration := time.Since(startTime)

	fmt.Printf("\n=== Verdict ===\n")
	fmt.Printf("Secure: %t\n", verdict.IsSecure)
	fmt.Printf("Threat: %s\n", verdict.Threat)
	fmt.Printf("Level: %s\n", verdict.Level)
	fmt.Printf("Confidence: %.4f\n", verdict.Confidence)
	if verdict.Reason != "" {
		fmt.Printf("Reason: %s\n", verdict.Reason)
	}
	for _, rec := range verdict.Recommendations {
		fmt.Printf("Recommendation: %s\n", rec)
	}
	if threats := verdict.Metadata["detected_threats"]; threats != "" {
		fmt.Printf("Signals: %s\n", threats)
	}
	fmt.Printf("Processing time: %v\n", duration)

	return verdict
}

// Start is a no-op for the CLI filter.
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter.
func (f *CliFilter) Stop() error {
	return nil
}
