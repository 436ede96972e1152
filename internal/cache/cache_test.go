package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(4)
	defer m.Close()

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	v, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, m.Set(ctx, "k", "w", -time.Second))
	v, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "w", v)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(4)
	defer m.Close()

	require.NoError(t, m.Set(ctx, "short", "v", 20*time.Millisecond))
	require.NoError(t, m.Set(ctx, "forever", "v", 0))

	require.Eventually(t, func() bool {
		_, err := m.Get(ctx, "short")
		return err == ErrMiss
	}, time.Second, 5*time.Millisecond)

	_, err := m.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2)
	defer m.Close()

	require.NoError(t, m.Set(ctx, "a", "1", 0))
	require.NoError(t, m.Set(ctx, "b", "2", 0))
	require.NoError(t, m.Set(ctx, "c", "3", 0))

	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)
	for key, want := range map[string]string{"b": "2", "c": "3"} {
		v, err := m.Get(ctx, key)
		require.NoError(t, err, key)
		assert.Equal(t, want, v)
	}
}
