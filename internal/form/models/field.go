// Package models defines form field configuration: which payload key feeds
// which person or application attribute.
package models

import (
	"strings"

	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
)

// TargetEntity says which record a mapped field lands on.
type TargetEntity string

const (
	TargetPerson      TargetEntity = "person"
	TargetApplication TargetEntity = "application"
)

// Person attributes a form field may map to.
const (
	PersonAttrEmail     = "email"
	PersonAttrFirstName = "firstName"
	PersonAttrLastName  = "lastName"
	PersonAttrPhone     = "phone"
	PersonAttrCity      = "city"
	PersonAttrPortfolio = "portfolio"
	PersonAttrEducation = "education"
)

// Application attributes a form field may map to.
const (
	ApplicationAttrPosition           = "position"
	ApplicationAttrResume             = "resume"
	ApplicationAttrVideo              = "video"
	ApplicationAttrAcademicBackground = "academicBackground"
	ApplicationAttrOtherFile          = "otherFile"
)

var personAttrs = map[string]bool{
	PersonAttrEmail:     true,
	PersonAttrFirstName: true,
	PersonAttrLastName:  true,
	PersonAttrPhone:     true,
	PersonAttrCity:      true,
	PersonAttrPortfolio: true,
	PersonAttrEducation: true,
}

var applicationAttrs = map[string]bool{
	ApplicationAttrPosition:           true,
	ApplicationAttrResume:             true,
	ApplicationAttrVideo:              true,
	ApplicationAttrAcademicBackground: true,
	ApplicationAttrOtherFile:          true,
}

// FieldTarget is the typed form of a "person.<attr>" / "application.<attr>"
// mapping path. It is constructed at configuration-load time so a bad mapping
// fails the form definition, never an extraction call.
type FieldTarget struct {
	Entity    TargetEntity
	Attribute string
}

// ParseFieldTarget validates a mapping path against the attribute allowlists.
func ParseFieldTarget(mappedTo string) (FieldTarget, error) {
	entity, attr, found := strings.Cut(mappedTo, ".")
	if !found || attr == "" {
		return FieldTarget{}, dErrors.Newf(dErrors.CodeInvalidInput, "mapping %q must be entity.attribute", mappedTo)
	}

	target := FieldTarget{Entity: TargetEntity(entity), Attribute: attr}
	switch target.Entity {
	case TargetPerson:
		if !personAttrs[attr] {
			return FieldTarget{}, dErrors.Newf(dErrors.CodeInvalidInput, "unknown person attribute %q", attr)
		}
	case TargetApplication:
		if !applicationAttrs[attr] {
			return FieldTarget{}, dErrors.Newf(dErrors.CodeInvalidInput, "unknown application attribute %q", attr)
		}
	default:
		return FieldTarget{}, dErrors.Newf(dErrors.CodeInvalidInput, "unknown mapping entity %q", entity)
	}
	return target, nil
}

func (t FieldTarget) String() string {
	return string(t.Entity) + "." + t.Attribute
}

// FieldType is the declared input type of a form field.
type FieldType string

const (
	FieldTypeText  FieldType = "text"
	FieldTypeEmail FieldType = "email"
	FieldTypePhone FieldType = "phone"
	FieldTypeFile  FieldType = "file"
)

// FieldDefinition describes one mapped form field. Unmapped fields of a form
// simply have no definition and are ignored at extraction.
type FieldDefinition struct {
	ID     string
	Type   FieldType
	Target FieldTarget
}

// Form is an ordered field-definition list for one candidate-facing form.
type Form struct {
	ID     id.FormID
	Name   string
	Fields []FieldDefinition
}

// FileDescriptor points a file-typed field at its uploaded artifact.
type FileDescriptor struct {
	FieldID string `json:"field_id"`
	FileURL string `json:"file_url"`
}
