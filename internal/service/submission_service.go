// Package service drives a submission from validated input to its two
// remote artifacts: a row appended to the ledger and a filled PDF published
// under the form's publish directory.
package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bespinosaaco/KPAdmin/internal/formfill"
	"github.com/bespinosaaco/KPAdmin/internal/ledger"
	"github.com/bespinosaaco/KPAdmin/internal/models"
)

const (
	dateLayout  = "2006-01-02"
	stampLayout = "2006-01-02-15-04"
)

// ContentStore is the slice of the repository client the pipeline needs.
type ContentStore interface {
	PutFile(ctx context.Context, path string, content []byte, sha, message string) error
	FileURL(path string) string
}

// FormFiller produces a filled copy of the template.
type FormFiller interface {
	Fill(fields []formfill.Field, values map[string]string, outPath string) error
}

// FormConfig is the one form this service serves.
type FormConfig struct {
	ID         string
	Title      string
	PublishDir string
	RecordsURL string
}

// ValidationError reports input the pipeline refuses to start on.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "submission invalid: " + e.Reason
}

// Descriptor is what the form renderer needs to draw the form.
type Descriptor struct {
	Form           string           `json:"form"`
	Title          string           `json:"title"`
	Fields         []string         `json:"fields"`
	TemplateFields []formfill.Field `json:"templateFields"`
	SchemaHash     string           `json:"schemaHash"`
	RecordsURL     string           `json:"recordsUrl,omitempty"`
}

// Result reports where a successful submission ended up.
type Result struct {
	Record       ledger.Record `json:"record"`
	DocumentPath string        `json:"documentPath"`
	DocumentURL  string        `json:"documentUrl,omitempty"`
}

// Stats summarizes the ledger for the dashboard.
type Stats struct {
	Form            string `json:"form"`
	Title           string `json:"title"`
	SubmissionCount int    `json:"submissionCount"`
	LastSignedOn    string `json:"lastSignedOn,omitempty"`
	RecordsURL      string `json:"recordsUrl,omitempty"`
}

// SubmissionService runs submissions through fill, ledger append and
// document publish, in that order. Completed steps are never rolled back:
// a ledger row whose document upload failed stays in the ledger and the
// failure is reported to the caller.
type SubmissionService struct {
	store   ContentStore
	records *ledger.Store
	filler  FormFiller
	binding *formfill.Binding
	cfg     FormConfig
}

func NewSubmissionService(store ContentStore, records *ledger.Store, filler FormFiller, binding *formfill.Binding, cfg FormConfig) *SubmissionService {
	return &SubmissionService{store: store, records: records, filler: filler, binding: binding, cfg: cfg}
}

// Describe returns the renderer-facing view of the form.
func (s *SubmissionService) Describe() Descriptor {
	return Descriptor{
		Form:           s.cfg.ID,
		Title:          s.cfg.Title,
		Fields:         models.FieldNames(),
		TemplateFields: s.binding.Fields(),
		SchemaHash:     s.binding.Hash(),
		RecordsURL:     s.cfg.RecordsURL,
	}
}

// Submit runs one submission through the pipeline. The filled document only
// exists locally for the duration of the call; on any return it is gone and
// the remote repository holds whatever steps completed.
func (s *SubmissionService) Submit(ctx context.Context, sub models.Submission) (*Result, error) {
	now := time.Now()
	if err := s.validate(&sub, now); err != nil {
		return nil, err
	}

	scratch, err := os.MkdirTemp("", "kpadmin-*")
	if err != nil {
		return nil, fmt.Errorf("scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	filledPath := filepath.Join(scratch, uuid.New().String()+".pdf")
	if err := s.filler.Fill(s.binding.Fields(), s.binding.Apply(sub), filledPath); err != nil {
		return nil, fmt.Errorf("fill template: %w", err)
	}
	filled, err := os.ReadFile(filledPath)
	if err != nil {
		return nil, fmt.Errorf("read filled document: %w", err)
	}

	stamp := now.Format(stampLayout)
	rec := ledger.Record{Name: sub.Name, Form: s.cfg.ID, SignedOn: sub.Date}
	if err := s.records.Append(ctx, rec, fmt.Sprintf("Edited by %s at %s", sub.Name, stamp)); err != nil {
		return nil, fmt.Errorf("ledger append: %w", err)
	}
	logrus.Infof("ledger row appended for %s (%s)", sub.Name, sub.Date)

	// Create-only: a second submission by the same person on the same day
	// lands on the same path and is refused. The ledger row above stays.
	docPath := s.DocumentPath(sub.Name, sub.Date)
	if err := s.store.PutFile(ctx, docPath, filled, "", fmt.Sprintf("PDF uploaded by %s at %s", sub.Name, stamp)); err != nil {
		return nil, fmt.Errorf("publish document: %w", err)
	}
	logrus.Infof("document published at %s", docPath)

	return &Result{
		Record:       rec,
		DocumentPath: docPath,
		DocumentURL:  s.store.FileURL(docPath),
	}, nil
}

// Stats reads the ledger and summarizes it.
func (s *SubmissionService) Stats(ctx context.Context) (*Stats, error) {
	rows, err := s.records.Rows(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{
		Form:            s.cfg.ID,
		Title:           s.cfg.Title,
		SubmissionCount: len(rows),
		RecordsURL:      s.cfg.RecordsURL,
	}
	if len(rows) > 0 {
		stats.LastSignedOn = rows[len(rows)-1].SignedOn
	}
	return stats, nil
}

// DocumentPath builds the deterministic publish path for one signature.
func (s *SubmissionService) DocumentPath(name, date string) string {
	return path.Join(s.cfg.PublishDir, fmt.Sprintf("%s_%s_%s.pdf", s.cfg.ID, name, date))
}

func (s *SubmissionService) validate(sub *models.Submission, now time.Time) error {
	sub.Name = strings.TrimSpace(sub.Name)
	if sub.Name == "" {
		return &ValidationError{Reason: "name is required"}
	}
	if strings.ContainsAny(sub.Name, `/\`) {
		return &ValidationError{Reason: "name must not contain path separators"}
	}
	switch {
	case sub.Date == "":
		sub.Date = now.Format(dateLayout)
	default:
		if _, err := time.Parse(dateLayout, sub.Date); err != nil {
			return &ValidationError{Reason: "date must be YYYY-MM-DD"}
		}
	}
	if sub.Signature == "" {
		sub.Signature = sub.Name
	}
	return nil
}
