// Package service owns the submission lifecycle: ingestion of raw form
// payloads and their interpretation into persons and applications.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	applicationservice "talentgate/internal/application/service"
	"talentgate/internal/assessment"
	"talentgate/internal/audit"
	"talentgate/internal/form"
	formmodels "talentgate/internal/form/models"
	personservice "talentgate/internal/person/service"
	"talentgate/internal/platform/lock"
	submissionmetrics "talentgate/internal/submission/metrics"
	"talentgate/internal/submission/models"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/sentinel"
	"talentgate/pkg/requestcontext"
)

// Store is the persistence the submission service needs. Execute runs
// validate and mutate atomically against the current row, which is what
// makes the status machine safe under concurrent process calls.
type Store interface {
	Create(ctx context.Context, sub *models.FormSubmission) error
	FindByID(ctx context.Context, subID id.SubmissionID) (*models.FormSubmission, error)
	ListByStatus(ctx context.Context, status models.Status) ([]*models.FormSubmission, error)
	List(ctx context.Context) ([]*models.FormSubmission, error)
	Execute(ctx context.Context, subID id.SubmissionID, validate func(*models.FormSubmission) error, mutate func(*models.FormSubmission)) (*models.FormSubmission, error)
	Delete(ctx context.Context, subID id.SubmissionID) error
}

// Service ingests submissions and drives them through processing.
type Service struct {
	subs     Store
	forms    *form.Registry
	resolver *personservice.Resolver
	advancer *applicationservice.Advancer
	gate     *assessment.Gate
	audit    *audit.Recorder
	locks    lock.Locker
	metrics  *submissionmetrics.Metrics
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *submissionmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLocker swaps the per-submission lock, e.g. for the Redis locker in
// multi-process deployments.
func WithLocker(locks lock.Locker) Option {
	return func(s *Service) {
		s.locks = locks
	}
}

func New(subs Store, forms *form.Registry, resolver *personservice.Resolver, advancer *applicationservice.Advancer, gate *assessment.Gate, auditRecorder *audit.Recorder, opts ...Option) (*Service, error) {
	if subs == nil {
		return nil, fmt.Errorf("submission store is required")
	}
	if forms == nil {
		return nil, fmt.Errorf("form registry is required")
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
		subs:     subs,
		forms:    forms,
		resolver: resolver,
		advancer: advancer,
		gate:     gate,
		audit:    auditRecorder,
		locks:    lock.NewKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateInput is a raw inbound payload for a known form.
type CreateInput struct {
	FormID id.FormID
	Data   map[string]any
	Files  []FileInput
}

// FileInput links an uploaded file to the form field it was submitted for.
type FileInput struct {
	FieldID string
	FileURL string
}

// Create records a submission verbatim. Ingestion never interprets the
// payload: a submission for a known form is accepted even when its data
// would later fail processing, so no inbound payload is ever lost.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.FormSubmission, error) {
	f, err := s.forms.Lookup(in.FormID)
	if err != nil {
		return nil, err
	}

	sub, err := models.NewFormSubmission(
		id.NewSubmissionID(),
		f.ID,
		in.Data,
		toFileDescriptors(in.Files),
		requestcontext.ClientIP(ctx),
		requestcontext.UserAgent(ctx),
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store submission")
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "submission received",
			"submission_id", sub.ID,
			"form_id", sub.FormID,
		)
	}
	return sub, nil
}

// Get returns a submission by id.
func (s *Service) Get(ctx context.Context, subID id.SubmissionID) (*models.FormSubmission, error) {
	sub, err := s.subs.FindByID(ctx, subID)
	if err != nil {
		return nil, wrapSubErr(err)
	}
	return sub, nil
}

// List returns submissions, optionally filtered by status.
func (s *Service) List(ctx context.Context, status *models.Status) ([]*models.FormSubmission, error) {
	if status != nil {
		return s.subs.ListByStatus(ctx, *status)
	}
	return s.subs.List(ctx)
}

// Delete removes a submission. Persons and applications it may have produced
// stay: deleting an ingress record never unwinds pipeline state.
func (s *Service) Delete(ctx context.Context, subID id.SubmissionID) error {
	if err := s.subs.Delete(ctx, subID); err != nil {
		return wrapSubErr(err)
	}
	return nil
}

func toFileDescriptors(in []FileInput) []formmodels.FileDescriptor {
	if len(in) == 0 {
		return nil
	}
	out := make([]formmodels.FileDescriptor, 0, len(in))
	for _, f := range in {
		out = append(out, formmodels.FileDescriptor{FieldID: f.FieldID, FileURL: f.FileURL})
	}
	return out
}

func wrapSubErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "submission not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "submission store failed")
}
