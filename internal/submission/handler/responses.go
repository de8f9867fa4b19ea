package handler

import (
	"time"

	"talentgate/internal/submission/models"
	"talentgate/internal/submission/service"
)

// SubmissionResponse is the HTTP representation of a submission.
type SubmissionResponse struct {
	ID           string         `json:"id"`
	FormID       string         `json:"form_id"`
	Data         map[string]any `json:"data"`
	Files        []FileResponse `json:"files,omitempty"`
	Status       string         `json:"status"`
	SubmittedAt  time.Time      `json:"submitted_at"`
	ProcessedAt  *time.Time     `json:"processed_at,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	PersonID     string         `json:"person_id,omitempty"`
}

// FileResponse mirrors a file descriptor on the wire.
type FileResponse struct {
	FieldID string `json:"field_id"`
	FileURL string `json:"file_url"`
}

// FromSubmission converts a domain submission to its HTTP representation.
func FromSubmission(sub *models.FormSubmission) *SubmissionResponse {
	resp := &SubmissionResponse{
		ID:           sub.ID.String(),
		FormID:       sub.FormID.String(),
		Data:         sub.Data,
		Status:       sub.Status.String(),
		SubmittedAt:  sub.SubmittedAt,
		ProcessedAt:  sub.ProcessedAt,
		ErrorMessage: sub.ErrorMessage,
	}
	if !sub.PersonID.IsNil() {
		resp.PersonID = sub.PersonID.String()
	}
	for _, f := range sub.Files {
		resp.Files = append(resp.Files, FileResponse{FieldID: f.FieldID, FileURL: f.FileURL})
	}
	return resp
}

// FromSubmissions converts a list of submissions.
func FromSubmissions(subs []*models.FormSubmission) []*SubmissionResponse {
	out := make([]*SubmissionResponse, 0, len(subs))
	for _, sub := range subs {
		out = append(out, FromSubmission(sub))
	}
	return out
}

// BatchResponse is the HTTP response for POST /submissions/process-pending.
type BatchResponse struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// FromBatchResult converts a sweep tally.
func FromBatchResult(result service.BatchResult) BatchResponse {
	return BatchResponse{Processed: result.Processed, Failed: result.Failed}
}
