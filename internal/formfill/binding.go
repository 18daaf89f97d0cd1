package formfill

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/bespinosaaco/KPAdmin/internal/models"
)

// ErrFieldMismatch means the template's declared fields no longer line up
// with the web form's schema. Binding fails hard instead of letting values
// land in the wrong fields or trailing fields go silently unfilled.
var ErrFieldMismatch = errors.New("formfill: template fields do not match the submission schema")

// Binding pairs the web form's schema with the template's declared fields:
// by position once at construction, by name ever after.
type Binding struct {
	web    []string
	fields []Field
	hash   string
}

// NewBinding pairs webFields, in declared order, with the template's fields.
// The counts must match exactly.
func NewBinding(webFields []string, fields []Field) (*Binding, error) {
	if len(webFields) != len(fields) {
		return nil, fmt.Errorf("%w: schema has %d fields, template declares %d",
			ErrFieldMismatch, len(webFields), len(fields))
	}
	return &Binding{
		web:    append([]string(nil), webFields...),
		fields: append([]Field(nil), fields...),
		hash:   FieldsHash(fields),
	}, nil
}

// Apply maps a submission onto template field names.
func (b *Binding) Apply(sub models.Submission) map[string]string {
	vals := sub.ValueMap()
	out := make(map[string]string, len(b.web))
	for i, w := range b.web {
		out[b.fields[i].Name] = vals[w]
	}
	return out
}

// Fields returns the bound template fields in declared order.
func (b *Binding) Fields() []Field {
	return b.fields
}

// Hash identifies the bound field set. A session minted against a different
// template revision carries a different hash and is refused at submit time.
func (b *Binding) Hash() string {
	return b.hash
}

// FieldsHash digests the declared field names in order.
func FieldsHash(fields []Field) string {
	h := sha256.New()
	for _, f := range fields {
		io.WriteString(h, f.Name)
		io.WriteString(h, "\x00")
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
