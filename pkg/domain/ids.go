// Package domain holds the typed identifiers shared across the engine.
//
// IDs are distinct uuid-backed types so a PersonID can never be passed where
// an ApplicationID is expected. Construct them from external input via the
// Parse* functions, which enforce the invariant that IDs are valid, non-nil
// UUIDs; direct casting bypasses validation and is reserved for internal code
// that already holds a uuid.UUID.
package domain

import (
	"github.com/google/uuid"

	dErrors "talentgate/pkg/domain-errors"
)

type (
	// PersonID identifies a deduplicated candidate identity.
	PersonID uuid.UUID
	// ApplicationID identifies one candidacy for one position.
	ApplicationID uuid.UUID
	// SubmissionID identifies a raw inbound form submission.
	SubmissionID uuid.UUID
	// FormID identifies a candidate-facing form definition.
	FormID uuid.UUID
)

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be nil")
	}
	return u, nil
}

// ParsePersonID constructs a PersonID from external input.
func ParsePersonID(s string) (PersonID, error) {
	u, err := parseUUID("person", s)
	return PersonID(u), err
}

// ParseApplicationID constructs an ApplicationID from external input.
func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := parseUUID("application", s)
	return ApplicationID(u), err
}

// ParseSubmissionID constructs a SubmissionID from external input.
func ParseSubmissionID(s string) (SubmissionID, error) {
	u, err := parseUUID("submission", s)
	return SubmissionID(u), err
}

// ParseFormID constructs a FormID from external input.
func ParseFormID(s string) (FormID, error) {
	u, err := parseUUID("form", s)
	return FormID(u), err
}

func (id PersonID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SubmissionID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id FormID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }

func (id PersonID) String() string      { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id SubmissionID) String() string  { return uuid.UUID(id).String() }
func (id FormID) String() string        { return uuid.UUID(id).String() }

// NewPersonID returns a fresh random PersonID.
func NewPersonID() PersonID { return PersonID(uuid.New()) }

// NewApplicationID returns a fresh random ApplicationID.
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }

// NewSubmissionID returns a fresh random SubmissionID.
func NewSubmissionID() SubmissionID { return SubmissionID(uuid.New()) }

// NewFormID returns a fresh random FormID.
func NewFormID() FormID { return FormID(uuid.New()) }
