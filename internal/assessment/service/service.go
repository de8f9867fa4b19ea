// Package service ingests general-competency results from the assessment
// provider and propagates the verdict onto the person's open applications.
package service

import (
	"context"
	"fmt"
	"log/slog"

	applicationservice "talentgate/internal/application/service"
	"talentgate/internal/assessment"
	assessmentmetrics "talentgate/internal/assessment/metrics"
	"talentgate/internal/audit"
	personmodels "talentgate/internal/person/models"
	personservice "talentgate/internal/person/service"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/requestcontext"
)

// Service records assessment results. It reuses the same Gate as submission
// processing so the pass/fail answer cannot diverge between the two paths.
type Service struct {
	persons  personservice.Store
	resolver *personservice.Resolver
	advancer *applicationservice.Advancer
	gate     *assessment.Gate
	audit    *audit.Recorder
	metrics  *assessmentmetrics.Metrics
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *assessmentmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(persons personservice.Store, resolver *personservice.Resolver, advancer *applicationservice.Advancer, gate *assessment.Gate, auditRecorder *audit.Recorder, opts ...Option) (*Service, error) {
	if persons == nil {
		return nil, fmt.Errorf("person store is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("person resolver is required")
	}
	if advancer == nil {
		return nil, fmt.Errorf("pipeline advancer is required")
	}
	if gate == nil {
		return nil, fmt.Errorf("assessment gate is required")
	}
	if auditRecorder == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	s := &Service{
		persons:  persons,
		resolver: resolver,
		advancer: advancer,
		gate:     gate,
		audit:    auditRecorder,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RecordResult stores a completed general-competency result for the person
// owning the email, then sweeps the person's open applications that are
// still waiting on general competencies: a pass advances them, a failure
// rejects them. Applications already past those stages are untouched.
//
// Unknown emails are a not-found error: a person only comes into existence
// through submission processing, never implicitly via the webhook.
func (s *Service) RecordResult(ctx context.Context, emailAddr string, score float64) (*personmodels.Person, assessment.Verdict, error) {
	p, err := s.resolver.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil, "", err
	}
	if score < 0 || score > s.gate.Scale() {
		return nil, "", dErrors.Newf(dErrors.CodeValidation, "score must be between 0 and %v", s.gate.Scale())
	}

	verdict := s.gate.Score(score)
	now := requestcontext.Now(ctx)
	p, err = s.persons.Execute(ctx, p.ID,
		func(*personmodels.Person) error { return nil },
		func(p *personmodels.Person) {
			p.RecordAssessment(score, verdict == assessment.VerdictPassed, now)
		},
	)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to record assessment")
	}

	s.audit.AssessmentRecorded(ctx, p.ID, p.Email, verdict.String())
	if s.metrics != nil {
		s.metrics.IncrementResult(verdict.String())
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "assessment result recorded",
			"person_id", p.ID,
			"score", score,
			"verdict", verdict,
		)
	}

	if err := s.sweep(ctx, p, verdict); err != nil {
		return nil, "", err
	}
	return p, verdict, nil
}

// sweep applies the verdict to the person's applications still gated on
// general competencies.
func (s *Service) sweep(ctx context.Context, p *personmodels.Person, verdict assessment.Verdict) error {
	apps, err := s.advancer.ListByPerson(ctx, p.ID)
	if err != nil {
		return err
	}
	reason := sweepReason(verdict)
	for _, app := range apps {
		if !applicationservice.EligibleForSweep(app) {
			continue
		}
		if _, err := s.advancer.ApplyVerdict(ctx, app.ID, verdict, reason); err != nil {
			return err
		}
	}
	return nil
}

func sweepReason(verdict assessment.Verdict) string {
	if verdict == assessment.VerdictPassed {
		return "general competencies passed"
	}
	return "general competencies failed"
}
