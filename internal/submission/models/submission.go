package models

import (
	"time"

	formmodels "talentgate/internal/form/models"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
)

// Status is a submission's processing state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusProcessed Status = "PROCESSED"
	StatusFailed    Status = "FAILED"
)

var validStatuses = map[Status]bool{
	StatusPending:   true,
	StatusProcessed: true,
	StatusFailed:    true,
}

// ParseStatus constructs a Status from external input.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !validStatuses[status] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid submission status")
	}
	return status, nil
}

func (s Status) String() string { return string(s) }

// FormSubmission is the raw ingress record: one inbound form payload before
// interpretation.
//
// Invariants:
//   - Status transitions: PENDING -> PROCESSED | FAILED, FAILED -> PENDING
//     (retry). PROCESSED is terminal.
//   - Only the submission processor mutates status/error/timestamps, and
//     processing of one id is mutually exclusive.
type FormSubmission struct {
	ID           id.SubmissionID             `json:"id"`
	FormID       id.FormID                   `json:"form_id"`
	Data         map[string]any              `json:"data"`
	Files        []formmodels.FileDescriptor `json:"files,omitempty"`
	IPAddress    string                      `json:"ip_address,omitempty"`
	UserAgent    string                      `json:"user_agent,omitempty"`
	Status       Status                      `json:"status"`
	SubmittedAt  time.Time                   `json:"submitted_at"`
	ProcessedAt  *time.Time                  `json:"processed_at,omitempty"`
	ErrorMessage string                      `json:"error_message,omitempty"`
	PersonID     id.PersonID                 `json:"person_id,omitempty"`
}

// NewFormSubmission creates a PENDING submission.
func NewFormSubmission(subID id.SubmissionID, formID id.FormID, data map[string]any, files []formmodels.FileDescriptor, ipAddress, userAgent string, now time.Time) (*FormSubmission, error) {
	if subID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "submission id cannot be nil")
	}
	if formID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "submission must reference a form")
	}
	if data == nil {
		data = map[string]any{}
	}
	return &FormSubmission{
		ID:          subID,
		FormID:      formID,
		Data:        data,
		Files:       files,
		IPAddress:   ipAddress,
		UserAgent:   userAgent,
		Status:      StatusPending,
		SubmittedAt: now,
	}, nil
}

// CanProcess guards against double processing. The message names the state
// the submission is actually in.
func (s *FormSubmission) CanProcess() error {
	if s.Status != StatusPending {
		return dErrors.Newf(dErrors.CodeInvalidInput, "submission is already %s", s.Status)
	}
	return nil
}

// ApplyProcessed marks successful processing and links the resolved person.
func (s *FormSubmission) ApplyProcessed(personID id.PersonID, now time.Time) {
	s.Status = StatusProcessed
	s.ProcessedAt = &now
	s.ErrorMessage = ""
	s.PersonID = personID
}

// ApplyFailed marks failed processing with the captured error text.
func (s *FormSubmission) ApplyFailed(message string, now time.Time) {
	s.Status = StatusFailed
	s.ProcessedAt = &now
	s.ErrorMessage = message
}

// CanRetry checks a retry is meaningful: only FAILED submissions reset.
func (s *FormSubmission) CanRetry() error {
	if s.Status != StatusFailed {
		return dErrors.Newf(dErrors.CodeInvalidInput, "only failed submissions can be retried, submission is %s", s.Status)
	}
	return nil
}

// ApplyRetryReset returns the submission to PENDING and clears the error.
func (s *FormSubmission) ApplyRetryReset() {
	s.Status = StatusPending
	s.ProcessedAt = nil
	s.ErrorMessage = ""
}
