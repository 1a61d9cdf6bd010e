package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryProcessedStore_RoundTrip(t *testing.T) {
	store := NewInMemoryProcessedStore(time.Hour)
	defer store.Close()

	ctx := context.Background()

	_, found, err := store.LastProcessedAt(ctx, 42)
	require.NoError(t, err)
	assert.False(t, found)

	at := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	require.NoError(t, store.MarkProcessed(ctx, 42, at))

	got, found, err := store.LastProcessedAt(ctx, 42)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, at, got)
}

func TestInMemoryProcessedStore_Overwrite(t *testing.T) {
	store := NewInMemoryProcessedStore(time.Hour)
	defer store.Close()

	ctx := context.Background()
	first := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	second := first.Add(10 * time.Minute)

	require.NoError(t, store.MarkProcessed(ctx, 42, first))
	require.NoError(t, store.MarkProcessed(ctx, 42, second))

	got, found, err := store.LastProcessedAt(ctx, 42)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, second, got)
}

func TestInMemoryProcessedStore_Expiry(t *testing.T) {
	store := NewInMemoryProcessedStore(10 * time.Millisecond)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.MarkProcessed(ctx, 42, time.Now()))

	time.Sleep(20 * time.Millisecond)

	_, found, err := store.LastProcessedAt(ctx, 42)
	require.NoError(t, err)
	assert.False(t, found, "expired record must not suppress a new export")
}

func TestInMemoryProcessedStore_Cleanup(t *testing.T) {
	store := NewInMemoryProcessedStore(10 * time.Millisecond)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.MarkProcessed(ctx, 1, time.Now()))
	require.NoError(t, store.MarkProcessed(ctx, 2, time.Now()))
	assert.Equal(t, 2, store.Size())

	time.Sleep(20 * time.Millisecond)
	store.cleanup()
	assert.Equal(t, 0, store.Size())
}

func TestInMemoryProcessedStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryProcessedStore(time.Hour)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
