package formfill

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bespinosaaco/KPAdmin/internal/models"
)

// exportJSON mirrors what a form export of the six-field template produces,
// header block included.
const exportJSON = `{
	"pdfcpu": {"version": "v0.8.1 dev", "creation": "2024-01-01 09:30:00 UTC"},
	"forms": [{
		"textfield": [
			{"pages": [1], "id": "21", "name": "Name of Trainee", "default": "", "value": "", "multiline": false, "locked": false},
			{"pages": [1], "id": "22", "name": "Family Name", "default": "", "value": "", "multiline": false, "locked": false},
			{"pages": [1], "id": "23", "name": "Department", "default": "", "value": "", "multiline": false, "locked": false},
			{"pages": [1], "id": "24", "name": "Institution", "default": "", "value": "", "multiline": false, "locked": false},
			{"pages": [1], "id": "25", "name": "Signature", "default": "", "value": "", "multiline": false, "locked": false}
		],
		"datefield": [
			{"pages": [1], "id": "26", "name": "Date Signed", "format": "yyyy-mm-dd", "value": "", "locked": false}
		]
	}]
}`

func templateFields(t *testing.T) []Field {
	t.Helper()
	fields, err := parseFields([]byte(exportJSON))
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	return fields
}

func TestParseFields(t *testing.T) {
	fields := templateFields(t)

	assert.Len(t, fields, 6)
	assert.Equal(t, Field{Name: "Name of Trainee", Kind: "text"}, fields[0])
	assert.Equal(t, Field{Name: "Family Name", Kind: "text"}, fields[1])
	assert.Equal(t, Field{Name: "Signature", Kind: "text"}, fields[4])
	assert.Equal(t, Field{Name: "Date Signed", Kind: "date"}, fields[5])
}

func TestParseFieldsRejectsFormlessDocuments(t *testing.T) {
	_, err := parseFields([]byte(`{}`))
	assert.Error(t, err)

	_, err = parseFields([]byte(`{"forms": []}`))
	assert.Error(t, err)

	_, err = parseFields([]byte(`{"forms": [{"checkbox": [{"name": "agree"}]}]}`))
	assert.Error(t, err)
}

func TestBindingRejectsCountMismatch(t *testing.T) {
	fields := templateFields(t)

	_, err := NewBinding(models.FieldNames(), fields[:5])
	assert.ErrorIs(t, err, ErrFieldMismatch)
	assert.Contains(t, err.Error(), "schema has 6 fields, template declares 5")

	_, err = NewBinding(models.FieldNames(), fields)
	assert.NoError(t, err)
}

func TestBindingApply(t *testing.T) {
	binding, err := NewBinding(models.FieldNames(), templateFields(t))
	assert.NoError(t, err)

	values := binding.Apply(models.Submission{
		TraineeName: "T. Example",
		Name:        "A. Example",
		Department:  "Chemistry",
		Institution: "Memorial University",
		Signature:   "A. Example",
		Date:        "2024-01-01",
	})

	assert.Equal(t, map[string]string{
		"Name of Trainee": "T. Example",
		"Family Name":     "A. Example",
		"Department":      "Chemistry",
		"Institution":     "Memorial University",
		"Signature":       "A. Example",
		"Date Signed":     "2024-01-01",
	}, values)
}

func TestBuildFillPayload(t *testing.T) {
	fields := templateFields(t)

	payload, err := buildFillPayload(fields, map[string]string{
		"Family Name": "A. Example",
		"Date Signed": "2024-01-01",
	})
	assert.NoError(t, err)

	var doc formDoc
	assert.NoError(t, json.Unmarshal(payload, &doc))
	assert.Len(t, doc.Forms, 1)
	assert.Equal(t, []formField{{Name: "Family Name", Value: "A. Example"}}, doc.Forms[0].TextFields)
	assert.Equal(t, []formField{{Name: "Date Signed", Value: "2024-01-01"}}, doc.Forms[0].DateFields)
}

func TestBuildFillPayloadRejectsUnmatchedValues(t *testing.T) {
	fields := templateFields(t)

	_, err := buildFillPayload(fields, map[string]string{"No Such Field": "x"})
	assert.Error(t, err)
}

func TestFieldsHash(t *testing.T) {
	fields := templateFields(t)

	assert.Len(t, FieldsHash(fields), 16)
	assert.Equal(t, FieldsHash(fields), FieldsHash(fields))

	renamed := append([]Field(nil), fields...)
	renamed[2].Name = "Division"
	assert.NotEqual(t, FieldsHash(fields), FieldsHash(renamed))

	reordered := append([]Field(nil), fields...)
	reordered[0], reordered[1] = reordered[1], reordered[0]
	assert.NotEqual(t, FieldsHash(fields), FieldsHash(reordered))
}
