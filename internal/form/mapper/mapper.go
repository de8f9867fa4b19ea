// Package mapper translates raw submission payloads into structured person
// and application bundles. Extraction is a pure function: no I/O, fully
// deterministic for a given payload, field list and file set.
package mapper

import (
	"fmt"
	"strings"

	applicationmodels "talentgate/internal/application/models"
	formmodels "talentgate/internal/form/models"
	personmodels "talentgate/internal/person/models"
)

// ApplicationAttributes is the application bundle produced by extraction.
type ApplicationAttributes struct {
	Position  string
	Materials applicationmodels.Materials
}

// Extract maps a payload through the form's field definitions.
//
// Person-targeted values are copied when present and non-empty. Application
// file fields resolve through the matching file descriptor's URL and raise
// the corresponding has-<artifact> flag. Missing mandatory person fields
// (email, first name, last name) are a hard validation failure.
func Extract(payload map[string]any, fields []formmodels.FieldDefinition, files []formmodels.FileDescriptor) (personmodels.Attributes, ApplicationAttributes, error) {
	var person personmodels.Attributes
	var app ApplicationAttributes

	fileURLs := make(map[string]string, len(files))
	for _, f := range files {
		fileURLs[f.FieldID] = f.FileURL
	}

	for _, field := range fields {
		switch field.Target.Entity {
		case formmodels.TargetPerson:
			value := scalarString(payload[field.ID])
			if value == "" {
				continue
			}
			setPersonAttr(&person, field.Target.Attribute, value)

		case formmodels.TargetApplication:
			var value string
			if field.Type == formmodels.FieldTypeFile {
				value = fileURLs[field.ID]
			} else {
				value = scalarString(payload[field.ID])
			}
			if value == "" {
				continue
			}
			setApplicationAttr(&app, field.Target.Attribute, value)
		}
	}

	if err := person.Validate(); err != nil {
		return personmodels.Attributes{}, ApplicationAttributes{}, err
	}
	return person, app, nil
}

func setPersonAttr(p *personmodels.Attributes, attr, value string) {
	switch attr {
	case formmodels.PersonAttrEmail:
		p.Email = value
	case formmodels.PersonAttrFirstName:
		p.FirstName = value
	case formmodels.PersonAttrLastName:
		p.LastName = value
	case formmodels.PersonAttrPhone:
		p.Phone = value
	case formmodels.PersonAttrCity:
		p.City = value
	case formmodels.PersonAttrPortfolio:
		p.Portfolio = value
	case formmodels.PersonAttrEducation:
		p.Education = value
	}
}

func setApplicationAttr(a *ApplicationAttributes, attr, value string) {
	switch attr {
	case formmodels.ApplicationAttrPosition:
		a.Position = value
	case formmodels.ApplicationAttrResume:
		a.Materials.ResumeURL = value
		a.Materials.HasResume = true
	case formmodels.ApplicationAttrVideo:
		a.Materials.VideoURL = value
		a.Materials.HasVideo = true
	case formmodels.ApplicationAttrAcademicBackground:
		a.Materials.AcademicBackgroundURL = value
		a.Materials.HasAcademicBackground = true
	case formmodels.ApplicationAttrOtherFile:
		a.Materials.OtherFileURL = value
		a.Materials.HasOtherFile = true
	}
}

// scalarString renders the mixed scalar types a JSON payload may carry.
// Nil and empty values collapse to "" so callers treat them as absent.
func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		// JSON numbers decode as float64; render integers without a decimal.
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	case int:
		return fmt.Sprintf("%d", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
