package api

import (
	"net/http"
	"strings"

	"github.com/okian/carwise/internal/domain/model"
)

// RepairHandler accepts repair requests and reports their tickets.
type RepairHandler struct {
	deps RepairDependencies
}

// NewRepairHandler creates a new repair handler.
func NewRepairHandler(deps RepairDependencies) *RepairHandler {
	return &RepairHandler{deps: deps}
}

type repairResponse struct {
	Duplicate bool               `json:"duplicate"`
	Ticket    model.RepairTicket `json:"ticket"`
}

// HandleSubmit handles POST /api/repair-requests. New requests are answered
// with 202 while the quote is computed in the background; a replayed
// request_id returns the existing ticket with 200.
func (h *RepairHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "submit repair request"
	var req model.RepairRequest
	if err := decodeJSON(r, w, op, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, dup, err := h.deps.SubmitRepairRequest(r.Context(), req)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	code := http.StatusAccepted
	if dup {
		code = http.StatusOK
	}
	w.Header().Set("Location", "/api/repair-requests/"+t.Reference)
	writeJSON(w, code, repairResponse{Duplicate: dup, Ticket: t})
}

// HandleGet handles GET /api/repair-requests/{reference}.
func (h *RepairHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "get repair request"
	ref := strings.TrimSpace(r.PathValue("reference"))
	if ref == "" {
		writeError(w, r, NewKind(op, ErrBadRequest))
		return
	}
	t, err := h.deps.RepairTicket(r.Context(), ref)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, t)
}
