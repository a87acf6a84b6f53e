package core

import (
	"context"
)

// Advisor is an optional external classifier consulted before the built-in
// detectors. Its verdict is treated as untrusted input: one more confidence
// signal, never the final word.
type Advisor interface {
	// Assess produces a pre-verdict for the message, or an error if the
	// advisor is unavailable. Errors are logged and the pipeline continues.
	Assess(ctx context.Context, msg *Message) (*Verdict, error)
}

// AdvisorFunc adapts a plain function to the Advisor interface.
type AdvisorFunc func(ctx context.Context, msg *Message) (*Verdict, error)

// Assess calls the wrapped function.
func (f AdvisorFunc) Assess(ctx context.Context, msg *Message) (*Verdict, error) {
	return f(ctx, msg)
}

// ReputationStore maps sender identities to reputation scores in [0,1].
// Unknown senders score the neutral 0.5. Implementations must be safe for
// concurrent use.
type ReputationStore interface {
	// Reputation returns the sender's score, or 0.5 if unknown.
	Reputation(ctx context.Context, sender string) float64

	// SetReputation overwrites the sender's score, clamped to [0,1].
	SetReputation(ctx context.Context, sender string, score float64) error
}
