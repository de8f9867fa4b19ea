package handler

import (
	"strings"

	dErrors "talentgate/pkg/domain-errors"
)

// RecordResultRequest is the HTTP request body for POST /webhooks/assessment.
type RecordResultRequest struct {
	Email string   `json:"email"`
	Score *float64 `json:"score"`
}

// Validate checks the webhook payload. Range checking of the score against
// the configured scale happens in the service, which knows the scale.
func (r *RecordResultRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if r.Score == nil {
		return dErrors.New(dErrors.CodeValidation, "score is required")
	}
	return nil
}
