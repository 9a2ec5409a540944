// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/carwise/internal/domain/diagnosis"
	"github.com/okian/carwise/internal/domain/model"
	"github.com/okian/carwise/internal/domain/pricing"
	"github.com/okian/carwise/internal/domain/reliability"
	"github.com/okian/carwise/internal/domain/vehicle"
	"github.com/okian/carwise/pkg/logger"
)

const maxBodyBytes = 1 << 20

// UsedCarReport is the response of a used-car check.
type UsedCarReport struct {
	Vehicle     vehicle.Descriptor     `json:"vehicle"`
	Reliability reliability.Assessment `json:"reliability"`
	Market      pricing.Estimate       `json:"market"`
}

// VehicleDependencies evaluates vehicles.
type VehicleDependencies interface {
	CheckUsedCar(ctx context.Context, d vehicle.Descriptor) (UsedCarReport, error)
	EstimatePrice(ctx context.Context, d vehicle.Descriptor) (pricing.Estimate, error)
}

// CatalogDependencies serves the brand/model catalog.
type CatalogDependencies interface {
	// CarData returns brand to models and the source it came from.
	CarData(ctx context.Context) (map[string][]string, string, error)
}

// DiagnosisDependencies diagnoses symptoms.
type DiagnosisDependencies interface {
	Diagnose(ctx context.Context, req diagnosis.Request) (diagnosis.Result, error)
}

// GarageDependencies reads the garage directory.
type GarageDependencies interface {
	SearchGarages(ctx context.Context, q model.GarageQuery) ([]model.GarageMatch, error)
	Garage(ctx context.Context, id string) (model.Garage, error)
}

// RepairDependencies accepts and reports repair requests.
type RepairDependencies interface {
	// SubmitRepairRequest returns the ticket and whether it already existed.
	SubmitRepairRequest(ctx context.Context, req model.RepairRequest) (model.RepairTicket, bool, error)
	RepairTicket(ctx context.Context, reference string) (model.RepairTicket, error)
}

// HealthDependencies reports liveness of backing stores.
type HealthDependencies interface {
	Ping(ctx context.Context) error
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	VehicleDependencies
	CatalogDependencies
	DiagnosisDependencies
	GarageDependencies
	RepairDependencies
	HealthDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	vehicleHandler   *VehicleHandler
	catalogHandler   *CatalogHandler
	diagnosisHandler *DiagnosisHandler
	garageHandler    *GarageHandler
	repairHandler    *RepairHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(deps),
		statsHandler:     NewStatsHandler(statsProvider),
		vehicleHandler:   NewVehicleHandler(deps),
		catalogHandler:   NewCatalogHandler(deps),
		diagnosisHandler: NewDiagnosisHandler(deps),
		garageHandler:    NewGarageHandler(deps),
		repairHandler:    NewRepairHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /api/car-data", MetricsMiddleware(s.catalogHandler.HandleCarData, "car_data"))
	mux.HandleFunc("POST /api/diagnose", MetricsMiddleware(s.diagnosisHandler.HandleDiagnose, "diagnose"))

	checkUsedCar := MetricsMiddleware(s.vehicleHandler.HandleCheckUsedCar, "check_used_car")
	mux.HandleFunc("POST /api/check-used-car", checkUsedCar)
	mux.HandleFunc("POST /api/used-car/check", checkUsedCar)
	mux.HandleFunc("POST /api/price-estimate", MetricsMiddleware(s.vehicleHandler.HandlePriceEstimate, "price_estimate"))

	searchGarages := MetricsMiddleware(s.garageHandler.HandleSearch, "garages")
	mux.HandleFunc("GET /api/garages", searchGarages)
	mux.HandleFunc("GET /find-garages", searchGarages)
	mux.HandleFunc("GET /api/garages/{id}", MetricsMiddleware(s.garageHandler.HandleGet, "garage"))

	mux.HandleFunc("POST /api/repair-requests", MetricsMiddleware(s.repairHandler.HandleSubmit, "repair_requests"))
	mux.HandleFunc("GET /api/repair-requests/{reference}", MetricsMiddleware(s.repairHandler.HandleGet, "repair_request"))
}

type errorResponse struct {
	Code    string               `json:"code"`
	Message string               `json:"message"`
	Fields  []vehicle.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err with the status derived from its kind. Internal
// errors are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, name := status(err)
	msg := err.Error()
	if code >= http.StatusInternalServerError && code != http.StatusBadGateway && code != http.StatusServiceUnavailable {
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		msg = http.StatusText(code)
	}
	writeJSON(w, code, errorResponse{Code: name, Message: msg, Fields: fieldErrors(err)})
}

// decodeJSON reads a single JSON document from the request body.
func decodeJSON(r *http.Request, w http.ResponseWriter, op string, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return NewKind(op, ErrBadRequest)
		}
		return WrapKind(op, ErrBadRequest, fmt.Errorf("malformed JSON body: %w", err))
	}
	if dec.More() {
		return WrapKind(op, ErrBadRequest, errors.New("body must contain a single JSON document"))
	}
	return nil
}
