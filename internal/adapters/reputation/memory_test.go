package reputation

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryStore_UnknownSenderIsNeutral(t *testing.T) {
	store := NewMemoryStore(zap.NewNop())

	assert.Equal(t, NeutralScore, store.Reputation(context.Background(), "nobody@example.com"))
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_SetReputation(t *testing.T) {
	store := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.SetReputation(ctx, "alice@example.com", 0.8))
	assert.Equal(t, 0.8, store.Reputation(ctx, "alice@example.com"))
	assert.Equal(t, 1, store.Len())

	// Overwrites are idempotent, not cumulative.
	require.NoError(t, store.SetReputation(ctx, "alice@example.com", 0.8))
	assert.Equal(t, 0.8, store.Reputation(ctx, "alice@example.com"))
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_ClampsScores(t *testing.T) {
	store := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.SetReputation(ctx, "low@example.com", -0.4))
	assert.Equal(t, 0.0, store.Reputation(ctx, "low@example.com"))

	require.NoError(t, store.SetReputation(ctx, "high@example.com", 1.7))
	assert.Equal(t, 1.0, store.Reputation(ctx, "high@example.com"))
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = store.SetReputation(ctx, "shared@example.com", 0.25)
				_ = store.Reputation(ctx, "shared@example.com")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0.25, store.Reputation(ctx, "shared@example.com"))
}
