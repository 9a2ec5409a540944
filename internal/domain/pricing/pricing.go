// Package pricing estimates fair-market prices of used vehicles from a base
// price and multiplicative depreciation factors.
package pricing

import (
	"math"
	"time"

	"github.com/okian/carwise/internal/domain/vehicle"
)

// Currency of every estimate.
const Currency = "EUR"

// Pricing constants.
const (
	premiumFallbackPrice = 30_000
	defaultFallbackPrice = 20_000

	firstYearFactor  = 0.85
	yearlyRetention  = 0.92
	ageFactorFloor   = 0.3
	rangeLowFactor   = 0.92
	rangeHighFactor  = 1.08
	roundingStep     = 100
	lowAnnualKm      = 10_000
	averageAnnualKm  = 20_000
	highAnnualKm     = 30_000
	lowMileageFactor = 1.15
	avgMileageFactor = 1.00
	highMileage      = 0.85
	veryHighMileage  = 0.70
)

// BasePrices looks up the new-car base price of a (brand, model) pair.
type BasePrices interface {
	BasePrice(brand, model string) (float64, bool)
}

// Factors lists every multiplier that went into an estimate.
type Factors struct {
	BasePrice    float64 `json:"base_price"`
	Age          float64 `json:"age"`
	Mileage      float64 `json:"mileage"`
	Fuel         float64 `json:"fuel"`
	Transmission float64 `json:"transmission"`
}

// Estimate is a fair-market price estimate.
type Estimate struct {
	EstimatedPrice float64 `json:"estimated_price"`
	PriceRangeLow  float64 `json:"price_range_low"`
	PriceRangeHigh float64 `json:"price_range_high"`
	Currency       string  `json:"currency"`
	Factors        Factors `json:"factors"`
}

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithClock sets the time source used to derive vehicle age.
func WithClock(now func() time.Time) Option {
	return func(e *Estimator) {
		if now != nil {
			e.now = now
		}
	}
}

// Estimator computes price estimates. It is safe for concurrent use.
type Estimator struct {
	prices BasePrices
	now    func() time.Time
}

// NewEstimator creates an Estimator backed by prices. A nil prices source
// always uses the brand-class fallback.
func NewEstimator(prices BasePrices, opts ...Option) *Estimator {
	e := &Estimator{prices: prices, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate computes the price estimate for d.
func (e *Estimator) Estimate(d vehicle.Descriptor) (Estimate, error) {
	now := e.now()
	d = d.Normalize()
	if err := d.Validate(now); err != nil {
		return Estimate{}, err
	}
	age := d.Age(now)

	f := Factors{
		BasePrice:    e.basePrice(d.Brand, d.Model),
		Age:          AgeFactor(age),
		Mileage:      MileageFactor(d.MileageKm, age),
		Fuel:         FuelFactor(d.FuelType),
		Transmission: TransmissionFactor(d.TransmissionType),
	}
	price := roundTo(f.BasePrice*f.Age*f.Mileage*f.Fuel*f.Transmission, roundingStep)

	return Estimate{
		EstimatedPrice: price,
		PriceRangeLow:  roundTo(price*rangeLowFactor, roundingStep),
		PriceRangeHigh: roundTo(price*rangeHighFactor, roundingStep),
		Currency:       Currency,
		Factors:        f,
	}, nil
}

func (e *Estimator) basePrice(brand, model string) float64 {
	if e.prices != nil {
		if p, ok := e.prices.BasePrice(brand, model); ok {
			return p
		}
	}
	if vehicle.IsPremium(brand) {
		return premiumFallbackPrice
	}
	return defaultFallbackPrice
}

// AgeFactor is exponential depreciation floored at 30% of the base price.
func AgeFactor(age int) float64 {
	if age <= 0 {
		return 1
	}
	return math.Max(ageFactorFloor, firstYearFactor*math.Pow(yearlyRetention, float64(age-1)))
}

// MileageFactor rates the average yearly mileage.
func MileageFactor(mileageKm, age int) float64 {
	annual := float64(mileageKm) / float64(max(1, age))
	switch {
	case annual < lowAnnualKm:
		return lowMileageFactor
	case annual < averageAnnualKm:
		return avgMileageFactor
	case annual < highAnnualKm:
		return highMileage
	default:
		return veryHighMileage
	}
}

// FuelFactor rates demand for the fuel type.
func FuelFactor(f vehicle.FuelType) float64 {
	switch f {
	case vehicle.FuelElectric:
		return 1.20
	case vehicle.FuelHybrid:
		return 1.15
	case vehicle.FuelDiesel:
		return 0.98
	default:
		return 1.00
	}
}

// TransmissionFactor rates demand for the gearbox type.
func TransmissionFactor(t vehicle.TransmissionType) float64 {
	switch t {
	case vehicle.TransmissionAutomatic:
		return 1.08
	case vehicle.TransmissionManual:
		return 0.92
	case vehicle.TransmissionSemiAutomatic:
		return 1.02
	default:
		return 1.00
	}
}

func roundTo(x, step float64) float64 {
	return math.Round(x/step) * step
}
