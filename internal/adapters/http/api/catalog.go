package api

import "net/http"

// dataSourceHeader names where the catalog response came from.
const dataSourceHeader = "X-Data-Source"

// CatalogHandler serves the brand/model catalog.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleCarData handles GET /api/car-data. The body maps each brand to its
// models.
func (h *CatalogHandler) HandleCarData(w http.ResponseWriter, r *http.Request) {
	data, source, err := h.deps.CarData(r.Context())
	if err != nil {
		writeError(w, r, Wrap("car data", err))
		return
	}
	w.Header().Set(dataSourceHeader, source)
	writeJSON(w, http.StatusOK, data)
}
