package api

import (
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/carwise/internal/domain/model"
)

// GarageHandler serves the garage directory.
type GarageHandler struct {
	deps GarageDependencies
}

// NewGarageHandler creates a new garage handler.
func NewGarageHandler(deps GarageDependencies) *GarageHandler {
	return &GarageHandler{deps: deps}
}

type garagesResponse struct {
	Garages []model.GarageMatch `json:"garages"`
	Count   int                 `json:"count"`
}

// HandleSearch handles GET /api/garages?city=&service=&lat=&lng=&radius_km=&limit=.
func (h *GarageHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "search garages"
	q, err := parseGarageQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	matches, err := h.deps.SearchGarages(r.Context(), q)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	if matches == nil {
		matches = []model.GarageMatch{}
	}
	writeJSON(w, http.StatusOK, garagesResponse{Garages: matches, Count: len(matches)})
}

// HandleGet handles GET /api/garages/{id}.
func (h *GarageHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "get garage"
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, r, NewKind(op, ErrBadRequest))
		return
	}
	g, err := h.deps.Garage(r.Context(), id)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func parseGarageQuery(v url.Values) (model.GarageQuery, error) {
	q := model.GarageQuery{
		City:    strings.TrimSpace(v.Get("city")),
		Service: strings.TrimSpace(v.Get("service")),
	}

	latStr, lngStr := strings.TrimSpace(v.Get("lat")), strings.TrimSpace(v.Get("lng"))
	switch {
	case latStr == "" && lngStr == "":
	case latStr == "" || lngStr == "":
		return q, errors.New("lat and lng must be given together")
	default:
		lat, err := parseFinite(latStr)
		if err != nil || lat < -90 || lat > 90 {
			return q, errors.New("lat must be a number between -90 and 90")
		}
		lng, err := parseFinite(lngStr)
		if err != nil || lng < -180 || lng > 180 {
			return q, errors.New("lng must be a number between -180 and 180")
		}
		q.Near = &model.Point{Lat: lat, Lng: lng}
	}

	if s := strings.TrimSpace(v.Get("radius_km")); s != "" {
		radius, err := parseFinite(s)
		if err != nil || radius <= 0 {
			return q, errors.New("radius_km must be a positive number")
		}
		q.RadiusKm = radius
	}
	if s := strings.TrimSpace(v.Get("limit")); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit <= 0 {
			return q, errors.New("limit must be a positive integer")
		}
		q.Limit = limit
	}
	return q, nil
}

// parseFinite parses a float and rejects NaN and infinities.
func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number")
	}
	return f, nil
}
