package handler

import (
	"strings"

	"talentgate/internal/submission/service"
	dErrors "talentgate/pkg/domain-errors"
)

// CreateSubmissionRequest is the HTTP request body for
// POST /forms/{formID}/submissions.
type CreateSubmissionRequest struct {
	Data  map[string]any `json:"data"`
	Files []FileRequest  `json:"files"`
}

// FileRequest links an uploaded file URL to the field it belongs to.
type FileRequest struct {
	FieldID string `json:"field_id"`
	FileURL string `json:"file_url"`
}

// Validate checks structural requirements only. Payload content is not
// interpreted at ingestion; that happens during processing.
func (r *CreateSubmissionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Data == nil {
		return dErrors.New(dErrors.CodeValidation, "data is required")
	}
	for i := range r.Files {
		r.Files[i].FieldID = strings.TrimSpace(r.Files[i].FieldID)
		r.Files[i].FileURL = strings.TrimSpace(r.Files[i].FileURL)
		if r.Files[i].FieldID == "" {
			return dErrors.New(dErrors.CodeValidation, "files[].field_id is required")
		}
		if r.Files[i].FileURL == "" {
			return dErrors.New(dErrors.CodeValidation, "files[].file_url is required")
		}
	}
	return nil
}

// FileInputs converts the request files to service inputs.
func (r *CreateSubmissionRequest) FileInputs() []service.FileInput {
	if len(r.Files) == 0 {
		return nil
	}
	out := make([]service.FileInput, 0, len(r.Files))
	for _, f := range r.Files {
		out = append(out, service.FileInput{FieldID: f.FieldID, FileURL: f.FileURL})
	}
	return out
}
