package api

import (
	"net/http"

	"github.com/okian/carwise/internal/domain/diagnosis"
)

// DiagnosisHandler serves symptom diagnoses.
type DiagnosisHandler struct {
	deps DiagnosisDependencies
}

// NewDiagnosisHandler creates a new diagnosis handler.
func NewDiagnosisHandler(deps DiagnosisDependencies) *DiagnosisHandler {
	return &DiagnosisHandler{deps: deps}
}

// HandleDiagnose handles POST /api/diagnose.
func (h *DiagnosisHandler) HandleDiagnose(w http.ResponseWriter, r *http.Request) {
	const op = "diagnose"
	var req diagnosis.Request
	if err := decodeJSON(r, w, op, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.deps.Diagnose(r.Context(), req)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
