package lock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutex(t *testing.T) {
	ctx := context.Background()

	t.Run("serializes access per key", func(t *testing.T) {
		locks := NewKeyedMutex()
		const goroutines = 50

		var wg sync.WaitGroup
		counter := 0
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				release, err := locks.Acquire(ctx, "shared-key")
				if err != nil {
					return
				}
				defer release()
				counter++
			}()
		}
		wg.Wait()

		assert.Equal(t, goroutines, counter)
	})

	t.Run("different keys do not block each other", func(t *testing.T) {
		locks := NewKeyedMutex()

		releaseA, err := locks.Acquire(ctx, "key-a")
		require.NoError(t, err)
		defer releaseA()

		// Must not deadlock while key-a is held.
		releaseB, err := locks.Acquire(ctx, "key-b")
		require.NoError(t, err)
		releaseB()
	})

	t.Run("released key can be reacquired", func(t *testing.T) {
		locks := NewKeyedMutex()

		release, err := locks.Acquire(ctx, "key")
		require.NoError(t, err)
		release()

		again, err := locks.Acquire(ctx, "key")
		require.NoError(t, err)
		again()
	})
}
