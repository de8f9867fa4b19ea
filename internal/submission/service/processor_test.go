package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	applicationmodels "talentgate/internal/application/models"
	applicationservice "talentgate/internal/application/service"
	applicationstore "talentgate/internal/application/store/application"
	"talentgate/internal/assessment"
	"talentgate/internal/audit"
	"talentgate/internal/form"
	formmodels "talentgate/internal/form/models"
	personmodels "talentgate/internal/person/models"
	personservice "talentgate/internal/person/service"
	personstore "talentgate/internal/person/store/person"
	"talentgate/internal/submission/models"
	submissionstore "talentgate/internal/submission/store/submission"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/requestcontext"
)

type ProcessorSuite struct {
	suite.Suite
	formID       id.FormID
	persons      *personstore.InMemoryStore
	applications *applicationstore.InMemoryStore
	submissions  *submissionstore.InMemoryStore
	auditStore   *audit.InMemoryStore
	resolver     *personservice.Resolver
	advancer     *applicationservice.Advancer
	service      *Service
}

func TestProcessorSuite(t *testing.T) {
	suite.Run(t, new(ProcessorSuite))
}

func (s *ProcessorSuite) SetupTest() {
	s.formID = id.NewFormID()
	s.persons = personstore.NewInMemoryStore()
	s.applications = applicationstore.NewInMemoryStore()
	s.submissions = submissionstore.NewInMemoryStore()
	s.auditStore = audit.NewInMemoryStore()

	registry := form.NewRegistry()
	registry.Register(s.testForm())

	auditRecorder := audit.NewRecorder(s.auditStore, nil)

	resolver, err := personservice.New(s.persons)
	s.Require().NoError(err)
	s.resolver = resolver

	advancer, err := applicationservice.New(s.applications, auditRecorder)
	s.Require().NoError(err)
	s.advancer = advancer

	gate, err := assessment.NewGate(70, 100)
	s.Require().NoError(err)

	svc, err := New(s.submissions, registry, resolver, advancer, gate, auditRecorder)
	s.Require().NoError(err)
	s.service = svc
}

func (s *ProcessorSuite) testForm() *formmodels.Form {
	target := func(mappedTo string) formmodels.FieldTarget {
		t, err := formmodels.ParseFieldTarget(mappedTo)
		s.Require().NoError(err)
		return t
	}
	return &formmodels.Form{
		ID:   s.formID,
		Name: "Engineering Application",
		Fields: []formmodels.FieldDefinition{
			{ID: "email", Type: formmodels.FieldTypeEmail, Target: target("person.email")},
			{ID: "first_name", Type: formmodels.FieldTypeText, Target: target("person.firstName")},
			{ID: "last_name", Type: formmodels.FieldTypeText, Target: target("person.lastName")},
			{ID: "position", Type: formmodels.FieldTypeText, Target: target("application.position")},
			{ID: "resume", Type: formmodels.FieldTypeFile, Target: target("application.resume")},
		},
	}
}

func (s *ProcessorSuite) submit(data map[string]any) *models.FormSubmission {
	sub, err := s.service.Create(context.Background(), CreateInput{
		FormID: s.formID,
		Data:   data,
		Files:  []FileInput{{FieldID: "resume", FileURL: "https://cdn.example.com/resume.pdf"}},
	})
	s.Require().NoError(err)
	return sub
}

func validPayload() map[string]any {
	return map[string]any{
		"email":      "jane@example.com",
		"first_name": "Jane",
		"last_name":  "Doe",
		"position":   "Backend Engineer",
	}
}

func (s *ProcessorSuite) TestProcess() {
	ctx := context.Background()

	s.Run("full pipeline on a valid submission", func() {
		sub := s.submit(validPayload())

		processed, err := s.service.Process(ctx, sub.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusProcessed, processed.Status)
		s.Require().NotNil(processed.ProcessedAt)
		s.False(processed.PersonID.IsNil())

		p, err := s.resolver.Get(ctx, processed.PersonID)
		s.Require().NoError(err)
		s.Equal("jane@example.com", p.Email)

		apps, err := s.advancer.ListByPerson(ctx, p.ID)
		s.Require().NoError(err)
		s.Require().Len(apps, 1)
		s.Equal("Backend Engineer", apps[0].Position)
		s.Equal(applicationmodels.StageApplication, apps[0].CurrentStage)
		s.True(apps[0].Materials.HasResume)
		s.Equal(sub.ID, apps[0].SubmissionID)
	})

	s.Run("missing email fails the submission with a user-facing message", func() {
		payload := validPayload()
		delete(payload, "email")
		sub := s.submit(payload)

		failed, err := s.service.Process(ctx, sub.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusFailed, failed.Status)
		s.Equal("Email is required", failed.ErrorMessage)
		s.Require().NotNil(failed.ProcessedAt)
	})

	s.Run("second submission for the same email reuses the person", func() {
		payload := validPayload()
		payload["email"] = "sam@example.com"
		first := s.submit(payload)
		_, err := s.service.Process(ctx, first.ID)
		s.Require().NoError(err)

		payload = validPayload()
		payload["email"] = "sam@example.com"
		payload["position"] = "Platform Engineer"
		second := s.submit(payload)
		processed, err := s.service.Process(ctx, second.ID)
		s.Require().NoError(err)

		apps, err := s.advancer.ListByPerson(ctx, processed.PersonID)
		s.Require().NoError(err)
		s.Len(apps, 2, "same person, two applications")
	})

	s.Run("processed submission cannot be processed again", func() {
		sub := s.submit(validPayload())
		_, err := s.service.Process(ctx, sub.ID)
		s.Require().NoError(err)

		_, err = s.service.Process(ctx, sub.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.Contains(err.Error(), "already PROCESSED")
	})

	s.Run("unknown submission is not found", func() {
		_, err := s.service.Process(ctx, id.NewSubmissionID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ProcessorSuite) TestProcessWithPriorAssessment() {
	ctx := context.Background()

	s.Run("passed assessment advances the new application", func() {
		first := s.submit(validPayload())
		processed, err := s.service.Process(ctx, first.ID)
		s.Require().NoError(err)

		now := requestcontext.Now(ctx)
		_, err = s.persons.Execute(ctx, processed.PersonID,
			func(p *personmodels.Person) error { return nil },
			func(p *personmodels.Person) { p.RecordAssessment(85, true, now) },
		)
		s.Require().NoError(err)

		second := s.submit(validPayload())
		processedAgain, err := s.service.Process(ctx, second.ID)
		s.Require().NoError(err)

		apps, err := s.advancer.ListByPerson(ctx, processedAgain.PersonID)
		s.Require().NoError(err)
		s.Require().Len(apps, 2)

		stages := []applicationmodels.Stage{apps[0].CurrentStage, apps[1].CurrentStage}
		s.Contains(stages, applicationmodels.StageSpecializedCompetencies, "the new application should be auto-advanced")
		s.Contains(stages, applicationmodels.StageApplication, "the pre-assessment application stays put")
	})

	s.Run("failed assessment rejects the new application at the entry stage", func() {
		payload := validPayload()
		payload["email"] = "tom@example.com"
		first := s.submit(payload)
		processed, err := s.service.Process(ctx, first.ID)
		s.Require().NoError(err)

		now := requestcontext.Now(ctx)
		_, err = s.persons.Execute(ctx, processed.PersonID,
			func(p *personmodels.Person) error { return nil },
			func(p *personmodels.Person) { p.RecordAssessment(40, false, now) },
		)
		s.Require().NoError(err)

		payload = validPayload()
		payload["email"] = "tom@example.com"
		second := s.submit(payload)
		processedAgain, err := s.service.Process(ctx, second.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusProcessed, processedAgain.Status)

		app, err := s.applications.FindBySubmission(ctx, second.ID)
		s.Require().NoError(err)
		s.Equal(applicationmodels.StatusRejected, app.Status)
		s.Equal(applicationmodels.StageApplication, app.CurrentStage, "rejection keeps the stage in place")
	})

	s.Run("re-processing converges when the application already moved past the gate", func() {
		payload := validPayload()
		payload["email"] = "ana@example.com"
		sub := s.submit(payload)

		p, _, err := s.resolver.FindOrCreate(ctx, personmodels.Attributes{
			Email:     "ana@example.com",
			FirstName: "Ana",
			LastName:  "Doe",
		})
		s.Require().NoError(err)

		now := requestcontext.Now(ctx)
		_, err = s.persons.Execute(ctx, p.ID,
			func(p *personmodels.Person) error { return nil },
			func(p *personmodels.Person) { p.RecordAssessment(85, true, now) },
		)
		s.Require().NoError(err)

		app, created, err := s.advancer.CreateForSubmission(ctx, p.ID, "Backend Engineer", applicationmodels.Materials{}, sub.ID)
		s.Require().NoError(err)
		s.Require().True(created)
		_, err = s.advancer.ApplyVerdict(ctx, app.ID, assessment.VerdictPassed, "general competencies passed")
		s.Require().NoError(err)

		processed, err := s.service.Process(ctx, sub.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusProcessed, processed.Status)

		after, err := s.applications.FindBySubmission(ctx, sub.ID)
		s.Require().NoError(err)
		s.Equal(applicationmodels.StageSpecializedCompetencies, after.CurrentStage, "the earlier advance stands")
		s.Equal(applicationmodels.StatusActive, after.Status)
	})
}

func (s *ProcessorSuite) TestRetry() {
	ctx := context.Background()

	s.Run("retry after fixing nothing converges without duplicates", func() {
		payload := validPayload()
		delete(payload, "email")
		sub := s.submit(payload)

		failed, err := s.service.Process(ctx, sub.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusFailed, failed.Status)

		retried, err := s.service.Retry(ctx, sub.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusFailed, retried.Status, "payload is still missing the email")
	})

	s.Run("retry is refused for non-failed submissions", func() {
		sub := s.submit(validPayload())
		_, err := s.service.Retry(ctx, sub.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ProcessorSuite) TestProcessAllPending() {
	ctx := context.Background()

	s.Run("sweep tallies successes and failures", func() {
		for i := 0; i < 4; i++ {
			s.submit(validPayload())
		}
		broken := validPayload()
		delete(broken, "email")
		s.submit(broken)

		result, err := s.service.ProcessAllPending(ctx)
		s.Require().NoError(err)
		s.Equal(4, result.Processed)
		s.Equal(1, result.Failed)

		pending, err := s.service.List(ctx, statusPtr(models.StatusPending))
		s.Require().NoError(err)
		s.Empty(pending)
	})
}

func (s *ProcessorSuite) TestDelete() {
	ctx := context.Background()

	s.Run("deleting a processed submission keeps pipeline state", func() {
		sub := s.submit(validPayload())
		processed, err := s.service.Process(ctx, sub.ID)
		s.Require().NoError(err)

		s.Require().NoError(s.service.Delete(ctx, sub.ID))

		_, err = s.service.Get(ctx, sub.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		apps, err := s.advancer.ListByPerson(ctx, processed.PersonID)
		s.Require().NoError(err)
		s.Len(apps, 1)
	})
}

func statusPtr(st models.Status) *models.Status { return &st }
