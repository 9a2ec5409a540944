// Package vehicle defines the vehicle descriptor shared by the estimators,
// its enumerations and its validation rules.
package vehicle

import (
	"strings"
	"time"
)

// MinModelYear is the oldest model year accepted for evaluation.
const MinModelYear = 1950

// FuelType is the propulsion type of a vehicle.
type FuelType string

// Known fuel types.
const (
	FuelGasoline     FuelType = "Gasoline"
	FuelDiesel       FuelType = "Diesel"
	FuelElectric     FuelType = "Electric"
	FuelHybrid       FuelType = "Hybrid"
	FuelPlugInHybrid FuelType = "PlugInHybrid"
	FuelLPG          FuelType = "LPG"
	FuelCNG          FuelType = "CNG"
	FuelHydrogen     FuelType = "Hydrogen"
)

var fuelAliases = map[string]FuelType{
	"gasoline":       FuelGasoline,
	"petrol":         FuelGasoline,
	"benzin":         FuelGasoline,
	"diesel":         FuelDiesel,
	"electric":       FuelElectric,
	"ev":             FuelElectric,
	"hybrid":         FuelHybrid,
	"pluginhybrid":   FuelPlugInHybrid,
	"plug-in hybrid": FuelPlugInHybrid,
	"plug-in-hybrid": FuelPlugInHybrid,
	"phev":           FuelPlugInHybrid,
	"lpg":            FuelLPG,
	"cng":            FuelCNG,
	"hydrogen":       FuelHydrogen,
}

// ParseFuelType maps s to a FuelType. Empty input yields Gasoline.
func ParseFuelType(s string) (FuelType, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return FuelGasoline, true
	}
	f, ok := fuelAliases[key]
	return f, ok
}

// TransmissionType is the gearbox type of a vehicle.
type TransmissionType string

// Known transmission types.
const (
	TransmissionAutomatic     TransmissionType = "Automatic"
	TransmissionManual        TransmissionType = "Manual"
	TransmissionSemiAutomatic TransmissionType = "SemiAutomatic"
	TransmissionCVT           TransmissionType = "CVT"
	TransmissionDCT           TransmissionType = "DCT"
)

var transmissionAliases = map[string]TransmissionType{
	"automatic":      TransmissionAutomatic,
	"auto":           TransmissionAutomatic,
	"manual":         TransmissionManual,
	"semiautomatic":  TransmissionSemiAutomatic,
	"semi-automatic": TransmissionSemiAutomatic,
	"cvt":            TransmissionCVT,
	"dct":            TransmissionDCT,
	"dsg":            TransmissionDCT,
}

// ParseTransmissionType maps s to a TransmissionType. Empty input yields Manual.
func ParseTransmissionType(s string) (TransmissionType, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return TransmissionManual, true
	}
	t, ok := transmissionAliases[key]
	return t, ok
}

// Descriptor is the normalized input record describing the car being evaluated.
type Descriptor struct {
	Brand            string           `json:"brand"`
	Model            string           `json:"model"`
	ModelYear        int              `json:"model_year"`
	MileageKm        int              `json:"mileage_km"`
	FuelType         FuelType         `json:"fuel_type,omitempty"`
	TransmissionType TransmissionType `json:"transmission_type,omitempty"`
}

// Normalize returns a copy with canonical brand, trimmed model and parsed
// enumerations. Unknown enumeration values are kept verbatim so Validate
// can report them.
func (d Descriptor) Normalize() Descriptor {
	d.Brand = CanonicalBrand(d.Brand)
	d.Model = strings.TrimSpace(d.Model)
	if f, ok := ParseFuelType(string(d.FuelType)); ok {
		d.FuelType = f
	}
	if t, ok := ParseTransmissionType(string(d.TransmissionType)); ok {
		d.TransmissionType = t
	}
	return d
}

// Validate checks d against the accepted ranges at time now. It reports every
// offending field at once.
func (d Descriptor) Validate(now time.Time) error {
	var errs []FieldError
	if strings.TrimSpace(d.Brand) == "" {
		errs = append(errs, FieldError{Field: "brand", Message: "must not be empty"})
	}
	if d.MileageKm < 0 {
		errs = append(errs, FieldError{Field: "mileage_km", Message: "must not be negative"})
	}
	if maxYear := now.Year() + 1; d.ModelYear < MinModelYear || d.ModelYear > maxYear {
		errs = append(errs, FieldError{Field: "model_year", Message: yearRangeMessage(maxYear)})
	}
	if _, ok := ParseFuelType(string(d.FuelType)); !ok {
		errs = append(errs, FieldError{Field: "fuel_type", Message: "unknown fuel type " + quote(string(d.FuelType))})
	}
	if _, ok := ParseTransmissionType(string(d.TransmissionType)); !ok {
		errs = append(errs, FieldError{Field: "transmission_type", Message: "unknown transmission type " + quote(string(d.TransmissionType))})
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// Age returns the vehicle age in whole years at now. A model year in the
// future counts as age zero.
func (d Descriptor) Age(now time.Time) int {
	age := now.Year() - d.ModelYear
	if age < 0 {
		return 0
	}
	return age
}
