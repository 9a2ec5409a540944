// Package model defines the garage and repair request entities shared by the
// store, the repair workers and the HTTP layer.
package model

import "strings"

// Garage is a workshop listed in the garage directory.
type Garage struct {
	ID           string             `json:"id" yaml:"id"`
	Name         string             `json:"name" yaml:"name"`
	Address      string             `json:"address" yaml:"address"`
	City         string             `json:"city" yaml:"city"`
	Phone        string             `json:"phone" yaml:"phone"`
	Latitude     float64            `json:"latitude" yaml:"latitude"`
	Longitude    float64            `json:"longitude" yaml:"longitude"`
	Services     []string           `json:"services" yaml:"services"`
	RepairPrices map[string]float64 `json:"repair_prices" yaml:"repair_prices"`
	Rating       float64            `json:"rating" yaml:"rating"`
}

// Offers reports whether the garage lists service (case-insensitive).
func (g Garage) Offers(service string) bool {
	for _, s := range g.Services {
		if strings.EqualFold(s, service) {
			return true
		}
	}
	return false
}

// GarageMatch is a garage in a search result.
type GarageMatch struct {
	Garage
	// DistanceKm is set only for searches around a coordinate.
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// GarageQuery filters a garage search.
type GarageQuery struct {
	City     string
	Service  string
	Near     *Point
	RadiusKm float64
	Limit    int
}

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lng float64
}
