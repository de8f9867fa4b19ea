package assessment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentgate/internal/person/models"
	id "talentgate/pkg/domain"
)

func newTestPerson(t *testing.T) *models.Person {
	t.Helper()
	p, err := models.NewPerson(id.NewPersonID(), models.Attributes{
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
	}, time.Now())
	require.NoError(t, err)
	return p
}

func TestNewGate(t *testing.T) {
	t.Run("rejects non-positive scale", func(t *testing.T) {
		_, err := NewGate(70, 0)
		require.Error(t, err)
	})

	t.Run("rejects threshold outside scale", func(t *testing.T) {
		_, err := NewGate(101, 100)
		require.Error(t, err)
	})

	t.Run("accepts threshold equal to scale", func(t *testing.T) {
		_, err := NewGate(100, 100)
		require.NoError(t, err)
	})
}

func TestGateScore(t *testing.T) {
	gate, err := NewGate(70, 100)
	require.NoError(t, err)

	t.Run("score at threshold passes", func(t *testing.T) {
		assert.Equal(t, VerdictPassed, gate.Score(70))
	})

	t.Run("score just below threshold fails", func(t *testing.T) {
		assert.Equal(t, VerdictFailed, gate.Score(69.99))
	})

	t.Run("maximum score passes", func(t *testing.T) {
		assert.Equal(t, VerdictPassed, gate.Score(100))
	})

	t.Run("zero fails", func(t *testing.T) {
		assert.Equal(t, VerdictFailed, gate.Score(0))
	})
}

func TestGateEvaluate(t *testing.T) {
	gate, err := NewGate(70, 100)
	require.NoError(t, err)

	t.Run("incomplete assessment is not yet taken", func(t *testing.T) {
		p := newTestPerson(t)
		assert.Equal(t, VerdictNotYetTaken, gate.Evaluate(p))
	})

	t.Run("recorded passing score", func(t *testing.T) {
		p := newTestPerson(t)
		p.RecordAssessment(85, true, time.Now())
		assert.Equal(t, VerdictPassed, gate.Evaluate(p))
	})

	t.Run("recorded failing score", func(t *testing.T) {
		p := newTestPerson(t)
		p.RecordAssessment(42, false, time.Now())
		assert.Equal(t, VerdictFailed, gate.Evaluate(p))
	})
}
