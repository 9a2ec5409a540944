// Package repair prices body-shop repair requests.
package repair

import (
	"math"

	"github.com/okian/carwise/internal/domain/model"
	"github.com/okian/carwise/internal/domain/vehicle"
)

const (
	premiumFactor = 1.2
	quoteStep     = 10
)

// DefaultPrices are used when a garage does not publish a price for a damage type.
var DefaultPrices = map[string]float64{
	"bumper":  450,
	"dent":    180,
	"glass":   350,
	"paint":   400,
	"panel":   650,
	"scratch": 150,
}

// SeverityFactor scales the base repair price by damage extent.
func SeverityFactor(s model.DamageSeverity) float64 {
	switch s {
	case model.SeverityModerate:
		return 1.6
	case model.SeveritySevere:
		return 2.5
	default:
		return 1.0
	}
}

// Quote prices req at garage g, rounded to the nearest 10 EUR.
func Quote(g model.Garage, req model.RepairRequest) float64 {
	base, ok := g.RepairPrices[req.DamageType]
	if !ok || base <= 0 {
		base = DefaultPrices[req.DamageType]
	}
	q := base * SeverityFactor(req.Severity)
	if vehicle.IsPremium(req.Vehicle.Brand) {
		q *= premiumFactor
	}
	return math.Round(q/quoteStep) * quoteStep
}
