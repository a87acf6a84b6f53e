// Package reputation provides sender reputation stores backing the analyzer.
// Scores live in [0,1]; unknown senders are neutral at 0.5.
package reputation

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// NeutralScore is returned for senders with no recorded history.
const NeutralScore = 0.5

// MemoryStore is an in-memory implementation of the ReputationStore interface.
// Lookups dominate writes, so reads take the shared lock.
type MemoryStore struct {
	mu     sync.RWMutex
	scores map[string]float64
	logger *zap.Logger
}

// NewMemoryStore creates an empty in-memory reputation store.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		scores: make(map[string]float64),
		logger: logger,
	}
}

// Reputation returns the sender's score, or NeutralScore if unknown.
func (s *MemoryStore) Reputation(_ context.Context, sender string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if score, ok := s.scores[sender]; ok {
		return score
	}
	return NeutralScore
}

// SetReputation overwrites the sender's score, clamped to [0,1].
func (s *MemoryStore) SetReputation(_ context.Context, sender string, score float64) error {
	s.mu.Lock()
	s.scores[sender] = clampScore(score)
	s.mu.Unlock()
	return nil
}

// Len returns the number of senders with a recorded score.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scores)
}

func clampScore(score float64) float64 {
	if score < 0.0 {
		return 0.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}
