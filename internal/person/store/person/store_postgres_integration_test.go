//go:build integration

package person_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"talentgate/internal/person/models"
	personstore "talentgate/internal/person/store/person"
	id "talentgate/pkg/domain"
	"talentgate/pkg/platform/sentinel"
	"talentgate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *personstore.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = personstore.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "audit_events", "applications", "form_submissions", "persons")
	s.Require().NoError(err)
}

func newTestPerson(s *PostgresStoreSuite, emailAddr string) *models.Person {
	p, err := models.NewPerson(id.NewPersonID(), models.Attributes{
		Email:     emailAddr,
		FirstName: "Jane",
		LastName:  "Doe",
		Phone:     "+355691234567",
	}, time.Now().UTC())
	s.Require().NoError(err)
	return p
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	p := newTestPerson(s, "jane@example.com")
	s.Require().NoError(s.store.CreateIfEmailAvailable(ctx, p))

	byID, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.Email, byID.Email)
	s.Equal(p.Phone, byID.Phone)
	s.False(byID.Assessment.Completed)

	byEmail, err := s.store.FindByEmail(ctx, "jane@example.com")
	s.Require().NoError(err)
	s.Equal(p.ID, byEmail.ID)
}

// TestConcurrentUniqueEmailViolation verifies the unique index backstop:
// concurrent creates for one email yield exactly one row.
func (s *PostgresStoreSuite) TestConcurrentUniqueEmailViolation() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := s.store.CreateIfEmailAvailable(ctx, newTestPerson(s, "race@example.com"))
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should get conflict")
}

func (s *PostgresStoreSuite) TestExecute() {
	ctx := context.Background()
	p := newTestPerson(s, "jane@example.com")
	s.Require().NoError(s.store.CreateIfEmailAvailable(ctx, p))

	now := time.Now().UTC()
	updated, err := s.store.Execute(ctx, p.ID,
		func(*models.Person) error { return nil },
		func(p *models.Person) { p.RecordAssessment(88, true, now) },
	)
	s.Require().NoError(err)
	s.True(updated.Assessment.Completed)
	s.Require().NotNil(updated.Assessment.Score)
	s.Equal(float64(88), *updated.Assessment.Score)
	s.NotNil(updated.Assessment.PassedAt)

	reread, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.True(reread.Assessment.Completed)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	p := newTestPerson(s, "jane@example.com")
	s.Require().NoError(s.store.CreateIfEmailAvailable(ctx, p))

	s.Require().NoError(s.store.Delete(ctx, p.ID))

	_, err := s.store.FindByID(ctx, p.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
