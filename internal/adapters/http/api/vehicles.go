package api

import (
	"net/http"

	"github.com/okian/carwise/internal/domain/vehicle"
)

// VehicleHandler serves the used-car check and price estimate endpoints.
type VehicleHandler struct {
	deps VehicleDependencies
}

// NewVehicleHandler creates a new vehicle handler.
func NewVehicleHandler(deps VehicleDependencies) *VehicleHandler {
	return &VehicleHandler{deps: deps}
}

// HandleCheckUsedCar handles POST /api/check-used-car.
func (h *VehicleHandler) HandleCheckUsedCar(w http.ResponseWriter, r *http.Request) {
	const op = "check used car"
	var d vehicle.Descriptor
	if err := decodeJSON(r, w, op, &d); err != nil {
		writeError(w, r, err)
		return
	}
	report, err := h.deps.CheckUsedCar(r.Context(), d)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandlePriceEstimate handles POST /api/price-estimate.
func (h *VehicleHandler) HandlePriceEstimate(w http.ResponseWriter, r *http.Request) {
	const op = "price estimate"
	var d vehicle.Descriptor
	if err := decodeJSON(r, w, op, &d); err != nil {
		writeError(w, r, err)
		return
	}
	est, err := h.deps.EstimatePrice(r.Context(), d)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, est)
}
