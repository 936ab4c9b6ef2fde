package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_Reserve(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	t.Run("reserva una clave nueva", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "k1", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rechaza una clave tomada", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "k2", time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = store.Reserve(ctx, "k2", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok, "la segunda reserva debe fallar")
	})

	t.Run("permite reservar después del vencimiento", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "k3", 10*time.Millisecond)
		require.NoError(t, err)
		require.True(t, ok)

		time.Sleep(20 * time.Millisecond)

		ok, err = store.Reserve(ctx, "k3", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok, "una clave vencida se puede volver a reservar")
	})

	t.Run("release libera la clave", func(t *testing.T) {
		_, _ = store.Reserve(ctx, "k4", time.Hour)
		require.NoError(t, store.Release(ctx, "k4"))

		ok, err := store.Reserve(ctx, "k4", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestInMemoryIdempotencyStore_ConcurrentReserve(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()

	var (
		wg      sync.WaitGroup
		granted atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := store.Reserve(context.Background(), "same", time.Hour); ok {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), granted.Load(), "solo una goroutine debe obtener la clave")
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()

	now := time.Now()
	store.now = func() time.Time { return now }
	_, _ = store.Reserve(context.Background(), "short", time.Minute)
	_, _ = store.Reserve(context.Background(), "long", time.Hour)
	require.Equal(t, 2, store.Size())

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	store.cleanup()
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Millisecond)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
