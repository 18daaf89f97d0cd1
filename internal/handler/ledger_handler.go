package handler

import (
	"net/http"

	"github.com/bespinosaaco/KPAdmin/internal/ledger"
)

type LedgerHandler struct {
	store *ledger.Store
}

func NewLedgerHandler(store *ledger.Store) *LedgerHandler {
	return &LedgerHandler{store: store}
}

// List returns the ledger rows in insertion order.
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.Rows(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"records": rows,
		"total":   len(rows),
	})
}
