package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	ctx := context.Background()

	t.Run("first mark succeeds, second does not", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		fresh, err := store.MarkProcessed(ctx, "payment-confirmation:txn-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, fresh)

		fresh, err = store.MarkProcessed(ctx, "payment-confirmation:txn-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, fresh)
	})

	t.Run("expired keys can be marked again", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		fresh, err := store.MarkProcessed(ctx, "txn-2", time.Millisecond)
		require.NoError(t, err)
		assert.True(t, fresh)

		time.Sleep(5 * time.Millisecond)

		fresh, err = store.MarkProcessed(ctx, "txn-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, fresh)
	})
}

func TestInMemoryIdempotencyStore_Unmark(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	_, err := store.MarkProcessed(ctx, "txn-3", time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.Unmark(ctx, "txn-3"))

	// unmarked keys are free for a retry
	fresh, err := store.MarkProcessed(ctx, "txn-3", time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	processed, err := store.IsProcessed(ctx, "txn-4")
	require.NoError(t, err)
	assert.False(t, processed)

	_, err = store.MarkProcessed(ctx, "txn-4", time.Hour)
	require.NoError(t, err)

	processed, err = store.IsProcessed(ctx, "txn-4")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	_, err := store.MarkProcessed(ctx, "txn-5", time.Millisecond)
	require.NoError(t, err)
	_, err = store.MarkProcessed(ctx, "txn-6", time.Hour)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
