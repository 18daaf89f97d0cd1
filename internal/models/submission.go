package models

// Submission is one completed pass through the web form. Date and Signature
// are optional on the wire; the pipeline fills them in before anything is
// written.
type Submission struct {
	TraineeName string `json:"traineeName"`
	Name        string `json:"name"`
	Department  string `json:"department"`
	Institution string `json:"institution"`
	Signature   string `json:"signature,omitempty"` // defaults to Name
	Date        string `json:"date,omitempty"`      // YYYY-MM-DD, defaults to today
}

// FieldNames lists the web form's fields in declared order. Template binding
// pairs this order with the PDF template's own declared fields.
func FieldNames() []string {
	return []string{"trainee_name", "name", "department", "institution", "signature", "date"}
}

// ValueMap returns the submission keyed by web field name.
func (s Submission) ValueMap() map[string]string {
	return map[string]string{
		"trainee_name": s.TraineeName,
		"name":         s.Name,
		"department":   s.Department,
		"institution":  s.Institution,
		"signature":    s.Signature,
		"date":         s.Date,
	}
}
