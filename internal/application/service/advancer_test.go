package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"talentgate/internal/application/models"
	applicationstore "talentgate/internal/application/store/application"
	"talentgate/internal/assessment"
	"talentgate/internal/audit"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
)

type AdvancerSuite struct {
	suite.Suite
	store      *applicationstore.InMemoryStore
	auditStore *audit.InMemoryStore
	advancer   *Advancer
}

func TestAdvancerSuite(t *testing.T) {
	suite.Run(t, new(AdvancerSuite))
}

func (s *AdvancerSuite) SetupTest() {
	s.store = applicationstore.NewInMemoryStore()
	s.auditStore = audit.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	advancer, err := New(s.store, audit.NewRecorder(s.auditStore, logger))
	s.Require().NoError(err)
	s.advancer = advancer
}

func (s *AdvancerSuite) createApplication(personID id.PersonID) *models.Application {
	app, created, err := s.advancer.CreateForSubmission(context.Background(),
		personID, "Backend Engineer", models.Materials{}, id.NewSubmissionID())
	s.Require().NoError(err)
	s.Require().True(created)
	return app
}

func (s *AdvancerSuite) TestCreateForSubmission() {
	ctx := context.Background()
	personID := id.NewPersonID()

	s.Run("creates at the entry stage", func() {
		app := s.createApplication(personID)
		s.Equal(models.StageApplication, app.CurrentStage)
		s.Equal(models.StatusActive, app.Status)
	})

	s.Run("is idempotent per submission", func() {
		submissionID := id.NewSubmissionID()
		first, created, err := s.advancer.CreateForSubmission(ctx, personID, "QA Engineer", models.Materials{}, submissionID)
		s.Require().NoError(err)
		s.True(created)

		again, createdAgain, err := s.advancer.CreateForSubmission(ctx, personID, "QA Engineer", models.Materials{}, submissionID)
		s.Require().NoError(err)
		s.False(createdAgain)
		s.Equal(first.ID, again.ID)
	})

	s.Run("emits a creation audit event", func() {
		before := len(s.auditStore.All())
		s.createApplication(personID)
		events := s.auditStore.All()
		s.Require().Greater(len(events), before)
		s.Equal(audit.ActionApplicationCreated, events[len(events)-1].Action)
	})
}

func (s *AdvancerSuite) TestApplyVerdict() {
	ctx := context.Background()

	s.Run("passed advances to specialized competencies", func() {
		app := s.createApplication(id.NewPersonID())

		updated, err := s.advancer.ApplyVerdict(ctx, app.ID, assessment.VerdictPassed, "general competencies passed")
		s.Require().NoError(err)
		s.Equal(models.StageSpecializedCompetencies, updated.CurrentStage)
		s.Equal(models.StatusActive, updated.Status)
	})

	s.Run("failed rejects and keeps the stage", func() {
		app := s.createApplication(id.NewPersonID())

		updated, err := s.advancer.ApplyVerdict(ctx, app.ID, assessment.VerdictFailed, "general competencies failed")
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, updated.Status)
		s.Equal(models.StageApplication, updated.CurrentStage)
	})

	s.Run("not yet taken leaves the application untouched", func() {
		app := s.createApplication(id.NewPersonID())

		updated, err := s.advancer.ApplyVerdict(ctx, app.ID, assessment.VerdictNotYetTaken, "")
		s.Require().NoError(err)
		s.Equal(models.StageApplication, updated.CurrentStage)
		s.Equal(models.StatusActive, updated.Status)
	})

	s.Run("passing a rejected application is an invariant violation", func() {
		app := s.createApplication(id.NewPersonID())
		_, err := s.advancer.ApplyVerdict(ctx, app.ID, assessment.VerdictFailed, "failed")
		s.Require().NoError(err)

		_, err = s.advancer.ApplyVerdict(ctx, app.ID, assessment.VerdictPassed, "passed late")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("unknown application is not found", func() {
		_, err := s.advancer.ApplyVerdict(ctx, id.NewApplicationID(), assessment.VerdictPassed, "passed")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *AdvancerSuite) TestEligibleForSweep() {
	ctx := context.Background()

	s.Run("active entry-stage application is eligible", func() {
		app := s.createApplication(id.NewPersonID())
		s.True(EligibleForSweep(app))
	})

	s.Run("advanced application is not swept again", func() {
		app := s.createApplication(id.NewPersonID())
		advanced, err := s.advancer.ApplyVerdict(ctx, app.ID, assessment.VerdictPassed, "passed")
		s.Require().NoError(err)
		s.False(EligibleForSweep(advanced))
	})

	s.Run("rejected application is not eligible", func() {
		app := s.createApplication(id.NewPersonID())
		rejected, err := s.advancer.ApplyVerdict(ctx, app.ID, assessment.VerdictFailed, "failed")
		s.Require().NoError(err)
		s.False(EligibleForSweep(rejected))
	})
}

func (s *AdvancerSuite) TestListByPerson() {
	ctx := context.Background()
	personID := id.NewPersonID()

	s.Run("nil person id is a bad request", func() {
		_, err := s.advancer.ListByPerson(ctx, id.PersonID{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("returns only the person's applications", func() {
		s.createApplication(personID)
		s.createApplication(personID)
		s.createApplication(id.NewPersonID())

		apps, err := s.advancer.ListByPerson(ctx, personID)
		s.Require().NoError(err)
		s.Len(apps, 2)
	})
}
