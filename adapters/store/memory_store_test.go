package store

import (
	"context"
	"testing"
	"time"

	"github.com/guild-genesis/herald/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "session", "v1", 0))
	got, err := s.Get(ctx, "session")
	require.NoError(t, err)
	assert.Equal(t, "v1", got)

	require.NoError(t, s.Delete(ctx, "session"))
	_, err = s.Get(ctx, "session")
	assert.ErrorIs(t, err, core.ErrNotFound)

	// Idempotent delete.
	require.NoError(t, s.Delete(ctx, "session"))
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "k", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
