package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bespinosaaco/KPAdmin/internal/auth"
	"github.com/bespinosaaco/KPAdmin/internal/forgejo"
	"github.com/bespinosaaco/KPAdmin/internal/models"
	"github.com/bespinosaaco/KPAdmin/internal/service"
)

type FormHandler struct {
	svc           *service.SubmissionService
	templatePath  string
	sessionSecret string
	sessionTTL    time.Duration
}

func NewFormHandler(svc *service.SubmissionService, templatePath, sessionSecret string, sessionTTL time.Duration) *FormHandler {
	return &FormHandler{
		svc:           svc,
		templatePath:  templatePath,
		sessionSecret: sessionSecret,
		sessionTTL:    sessionTTL,
	}
}

// Describe returns the form descriptor plus a fresh session token good for
// one pass through the form.
func (h *FormHandler) Describe(w http.ResponseWriter, r *http.Request) {
	desc := h.svc.Describe()
	token, err := auth.GenerateToken(h.sessionSecret, desc.Form, desc.SchemaHash, h.sessionTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue session token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"form":         desc,
		"sessionToken": token,
	})
}

// Submit runs one submission through the pipeline. The session token must
// have been minted for this form against the field set currently bound.
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	desc := h.svc.Describe()
	claims := auth.GetSession(r.Context())
	if claims == nil || claims.Form != desc.Form {
		writeError(w, http.StatusUnauthorized, "session token does not match this form")
		return
	}
	if claims.SchemaHash != desc.SchemaHash {
		writeError(w, http.StatusConflict, "form fields changed since the form was loaded, reload and resubmit")
		return
	}

	var sub models.Submission
	if err := readJSON(r, &sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Submit(r.Context(), sub)
	if err != nil {
		status, msg := submitStatus(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// Template serves the blank fillable form for manual completion.
func (h *FormHandler) Template(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(h.templatePath)
	if err != nil {
		writeError(w, http.StatusNotFound, "form template is not available")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filepath.Base(h.templatePath)))
	if _, err := io.Copy(w, f); err != nil {
		logrus.Errorf("send template: %v", err)
	}
}

// submitStatus maps pipeline failures onto HTTP statuses: invalid input 400,
// refused writes 409, upstream trouble 502, everything local 500.
func submitStatus(err error) (int, string) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Error()
	}
	if errors.Is(err, forgejo.ErrConflict) {
		return http.StatusConflict, err.Error()
	}
	var serr *forgejo.StatusError
	if errors.As(err, &serr) {
		return http.StatusBadGateway, err.Error()
	}
	return http.StatusInternalServerError, err.Error()
}
