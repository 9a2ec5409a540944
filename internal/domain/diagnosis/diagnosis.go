// Package diagnosis turns free-text symptom descriptions into a likely
// diagnosis with a repair cost range.
package diagnosis

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/carwise/internal/domain/knowledge"
	"github.com/okian/carwise/internal/domain/vehicle"
)

// Currency of every cost range.
const Currency = "EUR"

const (
	premiumCostFactor = 1.3
	costRoundingStep  = 10
)

// Mode tells whether a diagnosis came from the upstream service or the local
// rule set.
type Mode string

// Diagnosis modes.
const (
	ModeLive Mode = "live"
	ModeMock Mode = "mock"
)

// Request is a diagnosis request.
type Request struct {
	CarBrand         string `json:"car_brand"`
	CarModel         string `json:"car_model"`
	Year             int    `json:"year"`
	Symptoms         string `json:"symptoms"`
	FuelType         string `json:"fuel_type,omitempty"`
	TransmissionType string `json:"transmission_type,omitempty"`
	Mileage          int    `json:"mileage,omitempty"`
}

// Validate checks that brand and symptoms are present.
func (r Request) Validate() error {
	var missing []string
	if strings.TrimSpace(r.CarBrand) == "" {
		missing = append(missing, "car_brand")
	}
	if strings.TrimSpace(r.Symptoms) == "" {
		missing = append(missing, "symptoms")
	}
	if r.Mileage < 0 {
		missing = append(missing, "mileage")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	return nil
}

// CostRange is an estimated repair cost.
type CostRange struct {
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
	Currency string  `json:"currency"`
}

// Diagnosis is the outcome of analysing a symptom description.
type Diagnosis struct {
	Analysis      string               `json:"analysis"`
	References    []string             `json:"references"`
	Categories    []knowledge.Category `json:"categories"`
	EstimatedCost CostRange            `json:"estimated_cost"`
}

// Result wraps a diagnosis with the mode that produced it.
type Result struct {
	Diagnosis      Diagnosis `json:"diagnosis"`
	Mode           Mode      `json:"mode"`
	FallbackReason string    `json:"fallback_reason,omitempty"`
}

// costs holds typical repair cost ranges per category.
var costs = map[knowledge.Category][2]float64{
	knowledge.Engine:       {300, 2500},
	knowledge.Transmission: {400, 3500},
	knowledge.Electrical:   {150, 1200},
	knowledge.Brakes:       {150, 800},
	knowledge.Suspension:   {200, 1500},
	knowledge.Cooling:      {150, 1000},
}

var inspectionCost = [2]float64{80, 250}

// Diagnoser is the local rule-based diagnoser. It is stateless.
type Diagnoser struct{}

// NewDiagnoser creates a Diagnoser.
func NewDiagnoser() *Diagnoser {
	return &Diagnoser{}
}

// Diagnose classifies the symptoms of req and composes an analysis.
func (d *Diagnoser) Diagnose(req Request) (Diagnosis, error) {
	if err := req.Validate(); err != nil {
		return Diagnosis{}, err
	}
	brand := vehicle.CanonicalBrand(req.CarBrand)
	gearbox, _ := vehicle.ParseTransmissionType(req.TransmissionType)
	categories := Classify(req.Symptoms)

	low, high := 0.0, 0.0
	issues := make([]knowledge.Issue, 0, len(categories))
	for _, c := range categories {
		issues = append(issues, knowledge.Lookup(c, brand, gearbox))
		low += costs[c][0]
		high += costs[c][1]
	}
	if len(categories) == 0 {
		low, high = inspectionCost[0], inspectionCost[1]
	}
	if vehicle.IsPremium(brand) {
		low *= premiumCostFactor
		high *= premiumCostFactor
	}

	return Diagnosis{
		Analysis:   analysis(vehicleName(brand, req), issues, req.Mileage),
		References: references(issues),
		Categories: categories,
		EstimatedCost: CostRange{
			Low:      roundCost(low),
			High:     roundCost(high),
			Currency: Currency,
		},
	}, nil
}

func vehicleName(brand string, req Request) string {
	name := strings.TrimSpace(brand + " " + strings.TrimSpace(req.CarModel))
	if req.Year > 0 {
		name = fmt.Sprintf("%s (%d)", name, req.Year)
	}
	return name
}

func analysis(name string, issues []knowledge.Issue, mileage int) string {
	var b strings.Builder
	if len(issues) == 0 {
		fmt.Fprintf(&b, "The symptoms described for the %s do not match a known fault pattern. "+
			"A general inspection with a diagnostic scan is recommended.", name)
		return b.String()
	}

	areas := make([]string, len(issues))
	for i, is := range issues {
		areas[i] = string(is.Category)
	}
	fmt.Fprintf(&b, "The symptoms described for the %s point at: %s.", name, strings.Join(areas, ", "))
	for _, is := range issues {
		fmt.Fprintf(&b, "\n\n%s: %s. %s", strings.ToUpper(string(is.Category[:1]))+string(is.Category[1:]), is.Title, is.Description)
	}
	if mileage > 150_000 {
		hm := knowledge.HighMileage()
		fmt.Fprintf(&b, "\n\n%s. %s", hm.Title, hm.Description)
	}
	return b.String()
}

func references(issues []knowledge.Issue) []string {
	seen := make(map[string]struct{}, len(issues))
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		if is.Source == "" {
			continue
		}
		if _, ok := seen[is.Source]; ok {
			continue
		}
		seen[is.Source] = struct{}{}
		out = append(out, is.Source)
	}
	return out
}

func roundCost(x float64) float64 {
	return math.Round(x/costRoundingStep) * costRoundingStep
}
