package service

import (
	"context"
	"fmt"

	applicationmodels "talentgate/internal/application/models"
	applicationservice "talentgate/internal/application/service"
	"talentgate/internal/assessment"
	"talentgate/internal/form/mapper"
	personmodels "talentgate/internal/person/models"
	"talentgate/internal/submission/models"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/requestcontext"
)

const submissionLockPrefix = "submission:"

// Process runs one submission through the full pipeline: payload mapping,
// person resolution, application creation, gate evaluation.
//
// The run is partial-failure safe. Any step that errors marks the submission
// FAILED with the captured message; entities created before the failing step
// stay, and a later retry converges instead of duplicating them, because
// person resolution and application creation are idempotent. A FAILED
// outcome is a normal result, not an error: the returned submission carries
// the status and message.
//
// Processing of one id is mutually exclusive. The per-id lock serializes
// concurrent calls and the PENDING guard inside the store's atomic Execute
// makes the loser a clean already-PROCESSED error rather than a second run.
func (s *Service) Process(ctx context.Context, subID id.SubmissionID) (*models.FormSubmission, error) {
	release, err := s.locks.Acquire(ctx, submissionLockPrefix+subID.String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "could not lock submission for processing")
	}
	defer release()

	sub, err := s.subs.FindByID(ctx, subID)
	if err != nil {
		return nil, wrapSubErr(err)
	}
	if err := sub.CanProcess(); err != nil {
		return nil, err
	}

	personID, runErr := s.runPipeline(ctx, sub)
	if runErr != nil {
		return s.markFailed(ctx, subID, runErr)
	}
	return s.markProcessed(ctx, subID, personID)
}

// Retry resets a FAILED submission to PENDING and processes it again.
func (s *Service) Retry(ctx context.Context, subID id.SubmissionID) (*models.FormSubmission, error) {
	_, err := s.subs.Execute(ctx, subID,
		func(sub *models.FormSubmission) error { return sub.CanRetry() },
		func(sub *models.FormSubmission) { sub.ApplyRetryReset() },
	)
	if err != nil {
		return nil, wrapSubErr(err)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "submission reset for retry", "submission_id", subID)
	}
	return s.Process(ctx, subID)
}

// runPipeline executes the interpretation steps. A panic in any step is
// captured as a failure so one malformed payload can never take the worker
// down.
func (s *Service) runPipeline(ctx context.Context, sub *models.FormSubmission) (personID id.PersonID, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during processing: %v", r)
		}
	}()

	f, err := s.forms.Lookup(sub.FormID)
	if err != nil {
		return id.PersonID{}, err
	}

	personAttrs, appAttrs, err := mapper.Extract(sub.Data, f.Fields, sub.Files)
	if err != nil {
		return id.PersonID{}, err
	}

	p, created, err := s.resolver.FindOrCreate(ctx, personAttrs)
	if err != nil {
		return id.PersonID{}, err
	}
	if created {
		s.audit.PersonCreated(ctx, p.ID, p.Email, sub.ID)
		if s.metrics != nil {
			s.metrics.IncrementPersonsCreated()
		}
	}

	app, appCreated, err := s.advancer.CreateForSubmission(ctx, p.ID, appAttrs.Position, appAttrs.Materials, sub.ID)
	if err != nil {
		return id.PersonID{}, err
	}
	if appCreated && s.metrics != nil {
		s.metrics.IncrementApplicationsCreated()
	}

	if err := s.applyGate(ctx, p, app); err != nil {
		return id.PersonID{}, err
	}
	return p.ID, nil
}

// applyGate evaluates the person's recorded assessment against the new
// application. A person with no completed assessment stays at the entry
// stage waiting for the webhook. An application that already moved past
// the gate stages is left alone: a retried submission may find its
// application advanced or rejected by an earlier run or a webhook sweep,
// and re-processing must converge on that state instead of failing.
func (s *Service) applyGate(ctx context.Context, p *personmodels.Person, app *applicationmodels.Application) error {
	verdict := s.gate.Evaluate(p)
	if verdict == assessment.VerdictNotYetTaken {
		return nil
	}
	if !applicationservice.EligibleForSweep(app) {
		return nil
	}
	reason := "prior assessment passed"
	if verdict == assessment.VerdictFailed {
		reason = "prior assessment below threshold"
	}
	_, err := s.advancer.ApplyVerdict(ctx, app.ID, verdict, reason)
	return err
}

func (s *Service) markProcessed(ctx context.Context, subID id.SubmissionID, personID id.PersonID) (*models.FormSubmission, error) {
	now := requestcontext.Now(ctx)
	sub, err := s.subs.Execute(ctx, subID,
		func(sub *models.FormSubmission) error { return sub.CanProcess() },
		func(sub *models.FormSubmission) { sub.ApplyProcessed(personID, now) },
	)
	if err != nil {
		return nil, wrapSubErr(err)
	}
	s.audit.SubmissionProcessed(ctx, sub.ID, personID)
	if s.metrics != nil {
		s.metrics.IncrementProcessed()
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "submission processed",
			"submission_id", sub.ID,
			"person_id", personID,
		)
	}
	return sub, nil
}

func (s *Service) markFailed(ctx context.Context, subID id.SubmissionID, cause error) (*models.FormSubmission, error) {
	now := requestcontext.Now(ctx)
	msg := cause.Error()
	sub, err := s.subs.Execute(ctx, subID,
		func(sub *models.FormSubmission) error { return sub.CanProcess() },
		func(sub *models.FormSubmission) { sub.ApplyFailed(msg, now) },
	)
	if err != nil {
		return nil, wrapSubErr(err)
	}
	s.audit.SubmissionFailed(ctx, sub.ID, msg)
	if s.metrics != nil {
		s.metrics.IncrementFailed()
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "submission failed",
			"submission_id", sub.ID,
			"error", msg,
		)
	}
	return sub, nil
}
