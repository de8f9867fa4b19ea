package audit

import (
	"time"

	id "talentgate/pkg/domain"
)

// Action identifies what happened. The set below is the complete audit
// vocabulary of the pipeline engine.
type Action string

const (
	ActionPersonCreated       Action = "person_created"
	ActionApplicationCreated  Action = "application_created"
	ActionStageChanged        Action = "stage_changed"
	ActionStatusChanged       Action = "status_changed"
	ActionAssessmentRecorded  Action = "assessment_recorded"
	ActionSubmissionProcessed Action = "submission_processed"
	ActionSubmissionFailed    Action = "submission_failed"
)

// Event is emitted from domain logic to capture key milestones. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp     time.Time        `json:"timestamp"`
	Action        Action           `json:"action"`
	PersonID      id.PersonID      `json:"person_id,omitempty"`
	ApplicationID id.ApplicationID `json:"application_id,omitempty"`
	SubmissionID  id.SubmissionID  `json:"submission_id,omitempty"`
	Email         string           `json:"email,omitempty"`
	From          string           `json:"from,omitempty"`
	To            string           `json:"to,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	RequestID     string           `json:"request_id,omitempty"`
}
