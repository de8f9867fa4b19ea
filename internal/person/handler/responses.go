package handler

import (
	"time"

	applicationmodels "talentgate/internal/application/models"
	"talentgate/internal/person/models"
)

// PersonResponse is the HTTP representation of a person.
type PersonResponse struct {
	ID         string             `json:"id"`
	Email      string             `json:"email"`
	FirstName  string             `json:"first_name"`
	LastName   string             `json:"last_name"`
	Phone      string             `json:"phone,omitempty"`
	City       string             `json:"city,omitempty"`
	Portfolio  string             `json:"portfolio,omitempty"`
	Education  string             `json:"education,omitempty"`
	Assessment AssessmentResponse `json:"assessment"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// AssessmentResponse is the assessment portion of the person response.
type AssessmentResponse struct {
	Completed bool       `json:"completed"`
	Score     *float64   `json:"score,omitempty"`
	PassedAt  *time.Time `json:"passed_at,omitempty"`
}

// FromPerson converts a domain person to its HTTP representation.
func FromPerson(p *models.Person) *PersonResponse {
	return &PersonResponse{
		ID:        p.ID.String(),
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
		City:      p.City,
		Portfolio: p.Portfolio,
		Education: p.Education,
		Assessment: AssessmentResponse{
			Completed: p.Assessment.Completed,
			Score:     p.Assessment.Score,
			PassedAt:  p.Assessment.PassedAt,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ApplicationResponse is the HTTP representation of an application.
type ApplicationResponse struct {
	ID           string            `json:"id"`
	PersonID     string            `json:"person_id"`
	SubmissionID string            `json:"submission_id,omitempty"`
	Position     string            `json:"position"`
	CurrentStage string            `json:"current_stage"`
	Status       string            `json:"status"`
	Materials    MaterialsResponse `json:"materials"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// MaterialsResponse is the materials portion of the application response.
type MaterialsResponse struct {
	ResumeURL             string `json:"resume_url,omitempty"`
	VideoURL              string `json:"video_url,omitempty"`
	AcademicBackgroundURL string `json:"academic_background_url,omitempty"`
	OtherFileURL          string `json:"other_file_url,omitempty"`
	HasResume             bool   `json:"has_resume"`
	HasVideo              bool   `json:"has_video"`
	HasAcademicBackground bool   `json:"has_academic_background"`
	HasOtherFile          bool   `json:"has_other_file"`
}

// FromApplication converts a domain application to its HTTP representation.
func FromApplication(app *applicationmodels.Application) *ApplicationResponse {
	resp := &ApplicationResponse{
		ID:           app.ID.String(),
		PersonID:     app.PersonID.String(),
		Position:     app.Position,
		CurrentStage: app.CurrentStage.String(),
		Status:       app.Status.String(),
		Materials: MaterialsResponse{
			ResumeURL:             app.Materials.ResumeURL,
			VideoURL:              app.Materials.VideoURL,
			AcademicBackgroundURL: app.Materials.AcademicBackgroundURL,
			OtherFileURL:          app.Materials.OtherFileURL,
			HasResume:             app.Materials.HasResume,
			HasVideo:              app.Materials.HasVideo,
			HasAcademicBackground: app.Materials.HasAcademicBackground,
			HasOtherFile:          app.Materials.HasOtherFile,
		},
		CreatedAt: app.CreatedAt,
		UpdatedAt: app.UpdatedAt,
	}
	if !app.SubmissionID.IsNil() {
		resp.SubmissionID = app.SubmissionID.String()
	}
	return resp
}

// FromApplications converts a list of applications.
func FromApplications(apps []*applicationmodels.Application) []*ApplicationResponse {
	out := make([]*ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, FromApplication(app))
	}
	return out
}
