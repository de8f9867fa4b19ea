package person

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentgate/internal/person/models"
	id "talentgate/pkg/domain"
	"talentgate/pkg/platform/sentinel"
)

func newStoredPerson(t *testing.T, emailAddr string) *models.Person {
	t.Helper()
	p, err := models.NewPerson(id.NewPersonID(), models.Attributes{
		Email:     emailAddr,
		FirstName: "Jane",
		LastName:  "Doe",
	}, time.Now())
	require.NoError(t, err)
	return p
}

func TestCreateIfEmailAvailable(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and finds by email", func(t *testing.T) {
		store := NewInMemoryStore()
		p := newStoredPerson(t, "jane@example.com")
		require.NoError(t, store.CreateIfEmailAvailable(ctx, p))

		found, err := store.FindByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, p.ID, found.ID)
	})

	t.Run("taken email conflicts", func(t *testing.T) {
		store := NewInMemoryStore()
		require.NoError(t, store.CreateIfEmailAvailable(ctx, newStoredPerson(t, "jane@example.com")))

		err := store.CreateIfEmailAvailable(ctx, newStoredPerson(t, "jane@example.com"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, sentinel.ErrConflict))
	})
}

// TestConcurrentUniqueEmailViolation verifies that concurrent creation
// attempts for the same email result in exactly one success.
func TestConcurrentUniqueEmailViolation(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := store.CreateIfEmailAvailable(ctx, newStoredPerson(t, "race@example.com"))
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successCount.Load(), "exactly one create should succeed")
	assert.Equal(t, int32(goroutines-1), conflictCount.Load(), "all others should conflict")

	found, err := store.FindByEmail(ctx, "race@example.com")
	require.NoError(t, err)
	assert.NotNil(t, found)
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("mutates under the store lock", func(t *testing.T) {
		store := NewInMemoryStore()
		p := newStoredPerson(t, "jane@example.com")
		require.NoError(t, store.CreateIfEmailAvailable(ctx, p))

		updated, err := store.Execute(ctx, p.ID,
			func(*models.Person) error { return nil },
			func(p *models.Person) { p.RecordAssessment(88, true, time.Now()) },
		)
		require.NoError(t, err)
		assert.True(t, updated.Assessment.Completed)

		reread, err := store.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, reread.Assessment.Completed)
	})

	t.Run("validate failure leaves the row untouched", func(t *testing.T) {
		store := NewInMemoryStore()
		p := newStoredPerson(t, "jane@example.com")
		require.NoError(t, store.CreateIfEmailAvailable(ctx, p))

		veto := errors.New("nope")
		_, err := store.Execute(ctx, p.ID,
			func(*models.Person) error { return veto },
			func(p *models.Person) { p.FirstName = "changed" },
		)
		require.ErrorIs(t, err, veto)

		reread, err := store.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jane", reread.FirstName)
	})

	t.Run("unknown person is not found", func(t *testing.T) {
		store := NewInMemoryStore()
		_, err := store.Execute(ctx, id.NewPersonID(),
			func(*models.Person) error { return nil },
			func(*models.Person) {},
		)
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	p := newStoredPerson(t, "jane@example.com")
	require.NoError(t, store.CreateIfEmailAvailable(ctx, p))

	require.NoError(t, store.Delete(ctx, p.ID))

	_, err := store.FindByID(ctx, p.ID)
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	// Email is freed for reuse.
	require.NoError(t, store.CreateIfEmailAvailable(ctx, newStoredPerson(t, "jane@example.com")))
}
