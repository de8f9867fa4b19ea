package models

import (
	"strings"
	"time"

	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
)

// Materials captures which supporting artifacts accompanied an application.
// The URLs live next to the flags; downstream consumers that only need to
// know "is there a resume" read the flag without inspecting URLs.
type Materials struct {
	ResumeURL             string `json:"resume_url,omitempty"`
	VideoURL              string `json:"video_url,omitempty"`
	AcademicBackgroundURL string `json:"academic_background_url,omitempty"`
	OtherFileURL          string `json:"other_file_url,omitempty"`

	HasResume             bool `json:"has_resume"`
	HasVideo              bool `json:"has_video"`
	HasAcademicBackground bool `json:"has_academic_background"`
	HasOtherFile          bool `json:"has_other_file"`
}

// Application is one candidacy: one person applying for one position.
//
// Invariants:
//   - CurrentStage only advances forward through the stage order
//   - SubmissionID is nullable: applications can also be created by entry
//     points other than form processing
type Application struct {
	ID           id.ApplicationID `json:"id"`
	PersonID     id.PersonID      `json:"person_id"`
	Position     string           `json:"position"`
	CurrentStage Stage            `json:"current_stage"`
	Status       Status           `json:"status"`
	Materials    Materials        `json:"materials"`
	SubmissionID id.SubmissionID  `json:"submission_id,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// NewApplication creates an application at the pipeline entry stage.
func NewApplication(appID id.ApplicationID, personID id.PersonID, position string, materials Materials, submissionID id.SubmissionID, now time.Time) (*Application, error) {
	position = strings.TrimSpace(position)
	if appID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "application id cannot be nil")
	}
	if personID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "application must belong to a person")
	}
	if position == "" {
		position = "Unspecified"
	}
	return &Application{
		ID:           appID,
		PersonID:     personID,
		Position:     position,
		CurrentStage: StageApplication,
		Status:       StatusActive,
		Materials:    materials,
		SubmissionID: submissionID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsActive reports whether the application is still in the running.
func (a *Application) IsActive() bool {
	return a.Status == StatusActive
}

// CanAdvanceTo checks the forward-only stage invariant.
func (a *Application) CanAdvanceTo(target Stage) error {
	if !target.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid pipeline stage")
	}
	if !a.IsActive() {
		return dErrors.New(dErrors.CodeInvariantViolation, "cannot advance a non-active application")
	}
	if !a.CurrentStage.Before(target) {
		return dErrors.New(dErrors.CodeInvariantViolation, "stage transitions must move forward")
	}
	return nil
}

// ApplyAdvance moves the application to a later stage.
// Call CanAdvanceTo first to validate the transition.
func (a *Application) ApplyAdvance(target Stage, now time.Time) {
	a.CurrentStage = target
	a.UpdatedAt = now
}

// CanReject checks the application can still be rejected.
func (a *Application) CanReject() error {
	if !a.IsActive() {
		return dErrors.New(dErrors.CodeInvariantViolation, "application is already settled")
	}
	return nil
}

// ApplyRejection settles the application as REJECTED. The stage is left
// where it was: rejection records where the candidacy ended.
func (a *Application) ApplyRejection(now time.Time) {
	a.Status = StatusRejected
	a.UpdatedAt = now
}
