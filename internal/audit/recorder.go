package audit

import (
	"context"
	"log/slog"

	id "talentgate/pkg/domain"
	"talentgate/pkg/requestcontext"
)

// Store persists audit events. It is append-only so history cannot be edited.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByPerson(ctx context.Context, personID id.PersonID) ([]Event, error)
}

// Recorder captures structured audit events. Recording is fire-and-forget
// relative to the processing outcome: a failed append is logged but never
// fails the operation that produced the event.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

func (r *Recorder) emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if err := r.store.Append(ctx, event); err != nil && r.logger != nil {
		r.logger.WarnContext(ctx, "failed to append audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

// PersonCreated records first sighting of an email.
func (r *Recorder) PersonCreated(ctx context.Context, personID id.PersonID, emailAddr string, submissionID id.SubmissionID) {
	r.emit(ctx, Event{
		Action:       ActionPersonCreated,
		PersonID:     personID,
		Email:        emailAddr,
		SubmissionID: submissionID,
	})
}

// ApplicationCreated records a new candidacy.
func (r *Recorder) ApplicationCreated(ctx context.Context, personID id.PersonID, applicationID id.ApplicationID, submissionID id.SubmissionID, position string) {
	r.emit(ctx, Event{
		Action:        ActionApplicationCreated,
		PersonID:      personID,
		ApplicationID: applicationID,
		SubmissionID:  submissionID,
		Reason:        "applied for " + position,
	})
}

// StageChanged records a pipeline stage transition.
func (r *Recorder) StageChanged(ctx context.Context, personID id.PersonID, applicationID id.ApplicationID, from, to, reason string) {
	r.emit(ctx, Event{
		Action:        ActionStageChanged,
		PersonID:      personID,
		ApplicationID: applicationID,
		From:          from,
		To:            to,
		Reason:        reason,
	})
}

// StatusChanged records an application status transition.
func (r *Recorder) StatusChanged(ctx context.Context, personID id.PersonID, applicationID id.ApplicationID, from, to, reason string) {
	r.emit(ctx, Event{
		Action:        ActionStatusChanged,
		PersonID:      personID,
		ApplicationID: applicationID,
		From:          from,
		To:            to,
		Reason:        reason,
	})
}

// AssessmentRecorded records an inbound general-competency result.
func (r *Recorder) AssessmentRecorded(ctx context.Context, personID id.PersonID, emailAddr, verdict string) {
	r.emit(ctx, Event{
		Action:   ActionAssessmentRecorded,
		PersonID: personID,
		Email:    emailAddr,
		Reason:   verdict,
	})
}

// SubmissionProcessed records a submission reaching PROCESSED.
func (r *Recorder) SubmissionProcessed(ctx context.Context, submissionID id.SubmissionID, personID id.PersonID) {
	r.emit(ctx, Event{
		Action:       ActionSubmissionProcessed,
		SubmissionID: submissionID,
		PersonID:     personID,
	})
}

// SubmissionFailed records a submission reaching FAILED with the captured error.
func (r *Recorder) SubmissionFailed(ctx context.Context, submissionID id.SubmissionID, reason string) {
	r.emit(ctx, Event{
		Action:       ActionSubmissionFailed,
		SubmissionID: submissionID,
		Reason:       reason,
	})
}

// List returns all events recorded for a person.
func (r *Recorder) List(ctx context.Context, personID id.PersonID) ([]Event, error) {
	return r.store.ListByPerson(ctx, personID)
}
