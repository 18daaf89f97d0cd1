package handler

import (
	"net/http"

	"github.com/bespinosaaco/KPAdmin/internal/service"
)

type DashboardHandler struct {
	svc *service.SubmissionService
}

func NewDashboardHandler(svc *service.SubmissionService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Dashboard summarizes the ledger: how many signatures, and when the last
// one was signed.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
