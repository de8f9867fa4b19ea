// Package form loads and serves form definitions to the field mapper.
package form

import (
	"fmt"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"talentgate/internal/form/models"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
)

// Registry holds the known form definitions. Definitions are external
// configuration; the registry validates them fully at load time so extraction
// never meets a malformed mapping.
type Registry struct {
	mu    sync.RWMutex
	forms map[id.FormID]*models.Form
}

func NewRegistry() *Registry {
	return &Registry{forms: make(map[id.FormID]*models.Form)}
}

// Register adds or replaces a form definition.
func (r *Registry) Register(f *models.Form) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forms[f.ID] = f
}

// Lookup returns the definition for a form id.
func (r *Registry) Lookup(formID id.FormID) (*models.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.forms[formID]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "unknown form %s", formID)
	}
	return f, nil
}

// formsDoc mirrors the YAML shape of a form definition file:
//
//	forms:
//	  - id: 8d5a...
//	    name: engineering-application
//	    fields:
//	      - id: q_email
//	        type: email
//	        mapped_to: person.email
type formsDoc struct {
	Forms []struct {
		ID     string `koanf:"id"`
		Name   string `koanf:"name"`
		Fields []struct {
			ID       string `koanf:"id"`
			Type     string `koanf:"type"`
			MappedTo string `koanf:"mapped_to"`
		} `koanf:"fields"`
	} `koanf:"forms"`
}

// LoadFile reads form definitions from a YAML file into the registry.
// Any invalid mapping path rejects the whole file.
func (r *Registry) LoadFile(path string) error {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load forms file: %w", err)
	}

	var doc formsDoc
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("parse forms file: %w", err)
	}

	for _, fs := range doc.Forms {
		formID, err := id.ParseFormID(fs.ID)
		if err != nil {
			return fmt.Errorf("form %q: %w", fs.Name, err)
		}
		f := &models.Form{ID: formID, Name: fs.Name}
		for _, fd := range fs.Fields {
			target, err := models.ParseFieldTarget(fd.MappedTo)
			if err != nil {
				return fmt.Errorf("form %q field %q: %w", fs.Name, fd.ID, err)
			}
			f.Fields = append(f.Fields, models.FieldDefinition{
				ID:     fd.ID,
				Type:   models.FieldType(fd.Type),
				Target: target,
			})
		}
		r.Register(f)
	}
	return nil
}
