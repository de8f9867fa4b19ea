// Package service implements the pipeline advancer: the state machine that
// moves applications through the recruitment stages on gate verdicts.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	applicationmetrics "talentgate/internal/application/metrics"
	"talentgate/internal/application/models"
	"talentgate/internal/assessment"
	"talentgate/internal/audit"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/sentinel"
	"talentgate/pkg/requestcontext"
)

// Store is the persistence the advancer needs.
type Store interface {
	Create(ctx context.Context, a *models.Application) error
	FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	FindBySubmission(ctx context.Context, submissionID id.SubmissionID) (*models.Application, error)
	ListByPerson(ctx context.Context, personID id.PersonID) ([]*models.Application, error)
	Execute(ctx context.Context, appID id.ApplicationID, validate func(*models.Application) error, mutate func(*models.Application)) (*models.Application, error)
	DeleteByPerson(ctx context.Context, personID id.PersonID) error
}

// Advancer owns application creation and stage/status transitions.
type Advancer struct {
	apps    Store
	audit   *audit.Recorder
	metrics *applicationmetrics.Metrics
	logger  *slog.Logger
}

type Option func(*Advancer)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Advancer) {
		a.logger = logger
	}
}

func WithMetrics(m *applicationmetrics.Metrics) Option {
	return func(a *Advancer) {
		a.metrics = m
	}
}

func New(apps Store, auditRecorder *audit.Recorder, opts ...Option) (*Advancer, error) {
	if apps == nil {
		return nil, fmt.Errorf("application store is required")
	}
	if auditRecorder == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	a := &Advancer{apps: apps, audit: auditRecorder}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// CreateForSubmission creates a fresh application at the entry stage,
// idempotently per submission id: if a prior (partially failed) processing
// run already created the application, that row is returned instead of a
// duplicate.
func (a *Advancer) CreateForSubmission(ctx context.Context, personID id.PersonID, position string, materials models.Materials, submissionID id.SubmissionID) (*models.Application, bool, error) {
	if !submissionID.IsNil() {
		existing, err := a.apps.FindBySubmission(ctx, submissionID)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up application by submission")
		}
	}

	app, err := models.NewApplication(id.NewApplicationID(), personID, position, materials, submissionID, requestcontext.Now(ctx))
	if err != nil {
		return nil, false, err
	}
	if err := a.apps.Create(ctx, app); err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create application")
	}

	a.audit.ApplicationCreated(ctx, personID, app.ID, submissionID, app.Position)
	return app, true, nil
}

// ApplyVerdict resolves a gate verdict against one application.
//
//	NOT_YET_TAKEN  leave the application where it is
//	PASSED         advance to SPECIALIZED_COMPETENCIES, status stays ACTIVE
//	FAILED         status becomes REJECTED, stage left in place
//
// The reason is recorded on the emitted audit event so reviewers can see why
// the system moved an application without human action.
func (a *Advancer) ApplyVerdict(ctx context.Context, appID id.ApplicationID, verdict assessment.Verdict, reason string) (*models.Application, error) {
	switch verdict {
	case assessment.VerdictNotYetTaken:
		app, err := a.apps.FindByID(ctx, appID)
		if err != nil {
			return nil, wrapAppErr(err)
		}
		return app, nil

	case assessment.VerdictPassed:
		now := requestcontext.Now(ctx)
		var from models.Stage
		app, err := a.apps.Execute(ctx, appID,
			func(app *models.Application) error {
				from = app.CurrentStage
				return app.CanAdvanceTo(models.StageSpecializedCompetencies)
			},
			func(app *models.Application) {
				app.ApplyAdvance(models.StageSpecializedCompetencies, now)
			},
		)
		if err != nil {
			return nil, wrapAppErr(err)
		}
		a.audit.StageChanged(ctx, app.PersonID, app.ID, from.String(), app.CurrentStage.String(), reason)
		if a.metrics != nil {
			a.metrics.IncrementAutoAdvanced()
		}
		if a.logger != nil {
			a.logger.InfoContext(ctx, "application auto-advanced",
				"application_id", app.ID,
				"from", from,
				"to", app.CurrentStage,
			)
		}
		return app, nil

	case assessment.VerdictFailed:
		now := requestcontext.Now(ctx)
		var from models.Status
		app, err := a.apps.Execute(ctx, appID,
			func(app *models.Application) error {
				from = app.Status
				return app.CanReject()
			},
			func(app *models.Application) {
				app.ApplyRejection(now)
			},
		)
		if err != nil {
			return nil, wrapAppErr(err)
		}
		a.audit.StatusChanged(ctx, app.PersonID, app.ID, from.String(), app.Status.String(), reason)
		if a.metrics != nil {
			a.metrics.IncrementAutoRejected()
		}
		if a.logger != nil {
			a.logger.InfoContext(ctx, "application auto-rejected",
				"application_id", app.ID,
			)
		}
		return app, nil

	default:
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown gate verdict %q", verdict)
	}
}

// Get returns an application by id.
func (a *Advancer) Get(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	app, err := a.apps.FindByID(ctx, appID)
	if err != nil {
		return nil, wrapAppErr(err)
	}
	return app, nil
}

// ListByPerson returns a person's applications, oldest first.
func (a *Advancer) ListByPerson(ctx context.Context, personID id.PersonID) ([]*models.Application, error) {
	if personID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "person id is required")
	}
	apps, err := a.apps.ListByPerson(ctx, personID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

// EligibleForSweep reports whether a webhook-triggered verdict should touch
// this application: it is still in the running and has not moved past the
// general-competency stages.
func EligibleForSweep(app *models.Application) bool {
	return app.IsActive() &&
		(app.CurrentStage == models.StageApplication || app.CurrentStage == models.StageGeneralCompetencies)
}

func wrapAppErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "application store failure")
}
