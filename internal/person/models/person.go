package models

import (
	"time"

	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/email"
)

// Assessment is a person's general-competency state.
//
// Invariant: PassedAt is set if and only if Completed is true and the score
// met the configured threshold at recording time. RecordAssessment on Person
// is the only writer, so the invariant cannot drift.
type Assessment struct {
	Completed bool       `json:"completed"`
	Score     *float64   `json:"score,omitempty"`
	PassedAt  *time.Time `json:"passed_at,omitempty"`
}

// Person is a deduplicated human identity.
//
// Invariants:
//   - Email is normalized (trimmed, lower-cased) and unique across the system
//   - FirstName and LastName are non-empty
type Person struct {
	ID         id.PersonID `json:"id"`
	Email      string      `json:"email"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Phone      string      `json:"phone,omitempty"`
	City       string      `json:"city,omitempty"`
	Portfolio  string      `json:"portfolio,omitempty"`
	Education  string      `json:"education,omitempty"`
	Assessment Assessment  `json:"assessment"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Attributes is the person bundle produced by the field mapper. Email,
// FirstName and LastName are mandatory; everything else is optional.
type Attributes struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	City      string
	Portfolio string
	Education string
}

// Validate enforces the mandatory person fields. Messages are user-facing:
// they end up verbatim in the submission's errorMessage.
func (a Attributes) Validate() error {
	if a.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "Email is required")
	}
	if a.FirstName == "" {
		return dErrors.New(dErrors.CodeValidation, "First name is required")
	}
	if a.LastName == "" {
		return dErrors.New(dErrors.CodeValidation, "Last name is required")
	}
	return nil
}

// NewPerson creates a person from mapped attributes with a default assessment
// state (not completed, no score). The email is normalized here so no caller
// can create a person under a non-canonical address.
func NewPerson(personID id.PersonID, attrs Attributes, now time.Time) (*Person, error) {
	if personID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "person id cannot be nil")
	}
	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	return &Person{
		ID:        personID,
		Email:     email.Normalize(attrs.Email),
		FirstName: attrs.FirstName,
		LastName:  attrs.LastName,
		Phone:     attrs.Phone,
		City:      attrs.City,
		Portfolio: attrs.Portfolio,
		Education: attrs.Education,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// RecordAssessment stores a completed general-competency result. The passed
// flag comes from the assessment gate so pass/fail logic stays in one place.
func (p *Person) RecordAssessment(score float64, passed bool, now time.Time) {
	p.Assessment.Completed = true
	p.Assessment.Score = &score
	if passed {
		t := now
		p.Assessment.PassedAt = &t
	} else {
		p.Assessment.PassedAt = nil
	}
	p.UpdatedAt = now
}
