// Package formfill reads and fills the fillable PDF template.
//
// pdfcpu's form JSON is the interchange format in both directions: the
// template's declared fields come out of a form export, and filling goes
// back in through a fill file keyed by field name. Only text and date
// fields are supported; anything else shifts the declared count and fails
// the binding check.
package formfill

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Field is one fillable field declared by the template.
type Field struct {
	Name string `json:"name"`
	Kind string `json:"kind"` // "text" or "date"
}

// Template wraps the fillable PDF on disk. The file is only touched when
// fields are read or filled.
type Template struct {
	path string
}

func NewTemplate(path string) *Template {
	return &Template{path: path}
}

// Path returns the template's location on disk.
func (t *Template) Path() string {
	return t.path
}

// Fields returns the template's declared form fields: text fields first,
// then date fields, each group in the template's own declared order.
func (t *Template) Fields() ([]Field, error) {
	tmp, err := os.MkdirTemp("", "kpadmin-export-*")
	if err != nil {
		return nil, fmt.Errorf("formfill: scratch dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	exportPath := filepath.Join(tmp, "fields.json")
	if err := api.ExportFormFile(t.path, exportPath, nil); err != nil {
		return nil, fmt.Errorf("formfill: export form %s: %w", t.path, err)
	}
	data, err := os.ReadFile(exportPath)
	if err != nil {
		return nil, fmt.Errorf("formfill: read exported form: %w", err)
	}
	return parseFields(data)
}

// Fill writes a filled copy of the template to outPath. values are keyed by
// template field name; fields is the declared set from Fields and routes
// each value into the right field group.
func (t *Template) Fill(fields []Field, values map[string]string, outPath string) error {
	payload, err := buildFillPayload(fields, values)
	if err != nil {
		return err
	}

	tmp, err := os.MkdirTemp("", "kpadmin-fill-*")
	if err != nil {
		return fmt.Errorf("formfill: scratch dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	fillPath := filepath.Join(tmp, "fill.json")
	if err := os.WriteFile(fillPath, payload, 0o600); err != nil {
		return fmt.Errorf("formfill: write fill file: %w", err)
	}
	if err := api.FillFormFile(t.path, fillPath, outPath, nil); err != nil {
		return fmt.Errorf("formfill: fill form %s: %w", t.path, err)
	}
	return nil
}

// ------------------------------------------------------------------
// pdfcpu form JSON
// ------------------------------------------------------------------

type formDoc struct {
	Forms []formEntry `json:"forms"`
}

type formEntry struct {
	TextFields []formField `json:"textfield,omitempty"`
	DateFields []formField `json:"datefield,omitempty"`
}

type formField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Locked bool   `json:"locked"`
}

func parseFields(data []byte) ([]Field, error) {
	var doc formDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("formfill: parse form json: %w", err)
	}
	if len(doc.Forms) == 0 {
		return nil, errors.New("formfill: template declares no form")
	}
	var fields []Field
	for _, f := range doc.Forms[0].TextFields {
		fields = append(fields, Field{Name: f.Name, Kind: "text"})
	}
	for _, f := range doc.Forms[0].DateFields {
		fields = append(fields, Field{Name: f.Name, Kind: "date"})
	}
	if len(fields) == 0 {
		return nil, errors.New("formfill: template declares no text or date fields")
	}
	return fields, nil
}

func buildFillPayload(fields []Field, values map[string]string) ([]byte, error) {
	var entry formEntry
	for _, f := range fields {
		value, ok := values[f.Name]
		if !ok {
			continue
		}
		ff := formField{Name: f.Name, Value: value}
		if f.Kind == "date" {
			entry.DateFields = append(entry.DateFields, ff)
		} else {
			entry.TextFields = append(entry.TextFields, ff)
		}
	}
	if len(entry.TextFields) == 0 && len(entry.DateFields) == 0 {
		return nil, errors.New("formfill: no values matched the template's fields")
	}
	payload, err := json.Marshal(formDoc{Forms: []formEntry{entry}})
	if err != nil {
		return nil, fmt.Errorf("formfill: marshal fill file: %w", err)
	}
	return payload, nil
}
