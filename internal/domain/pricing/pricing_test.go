package pricing_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/carwise/internal/domain/pricing"
	"github.com/okian/carwise/internal/domain/vehicle"
	. "github.com/smartystreets/goconvey/convey"
)

type staticPrices map[string]float64

func (s staticPrices) BasePrice(brand, model string) (float64, bool) {
	p, ok := s[brand+"/"+model]
	return p, ok
}

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func TestEstimator_Estimate(t *testing.T) {
	Convey("Given a price estimator with a small catalog", t, func() {
		est := pricing.NewEstimator(
			staticPrices{"Volkswagen/Golf": 17_000},
			pricing.WithClock(func() time.Time { return fixedNow }),
		)

		Convey("When estimating a brand-new manual petrol Golf with no mileage", func() {
			e, err := est.Estimate(vehicle.Descriptor{Brand: "Volkswagen", Model: "Golf", ModelYear: 2026})

			Convey("Then 17000 x 1 x 1.15 x 1 x 0.92 rounds to 18000", func() {
				So(err, ShouldBeNil)
				So(e.Factors, ShouldResemble, pricing.Factors{BasePrice: 17_000, Age: 1, Mileage: 1.15, Fuel: 1, Transmission: 0.92})
				So(e.EstimatedPrice, ShouldEqual, 18_000)
				So(e.PriceRangeLow, ShouldEqual, 16_600)
				So(e.PriceRangeHigh, ShouldEqual, 19_400)
				So(e.Currency, ShouldEqual, "EUR")
			})
		})

		Convey("When the model is unknown for a premium brand", func() {
			e, err := est.Estimate(vehicle.Descriptor{
				Brand: "BMW", Model: "X9", ModelYear: 2023, MileageKm: 45_000,
				FuelType: vehicle.FuelDiesel, TransmissionType: vehicle.TransmissionAutomatic,
			})

			Convey("Then the premium fallback base price is used", func() {
				So(err, ShouldBeNil)
				So(e.Factors.BasePrice, ShouldEqual, 30_000)
				So(e.Factors.Mileage, ShouldEqual, 1.0)
				So(e.EstimatedPrice, ShouldEqual, 22_800)
				So(e.PriceRangeLow, ShouldEqual, 21_000)
				So(e.PriceRangeHigh, ShouldEqual, 24_600)
			})
		})

		Convey("When the brand is unknown and not premium", func() {
			e, err := est.Estimate(vehicle.Descriptor{Brand: "Dacia", Model: "Sandero", ModelYear: 2026})

			Convey("Then the default fallback base price is used", func() {
				So(err, ShouldBeNil)
				So(e.Factors.BasePrice, ShouldEqual, 20_000)
			})
		})

		Convey("When the descriptor is invalid", func() {
			_, err := est.Estimate(vehicle.Descriptor{Brand: "", ModelYear: 1900})

			Convey("Then a validation error is returned", func() {
				So(errors.Is(err, vehicle.ErrInvalidDescriptor), ShouldBeTrue)
			})
		})

		Convey("When estimating twice", func() {
			d := vehicle.Descriptor{Brand: "Volkswagen", Model: "Golf", ModelYear: 2020, MileageKm: 70_000, FuelType: "hybrid"}
			a, _ := est.Estimate(d)
			b, _ := est.Estimate(d)

			Convey("Then the results are identical", func() {
				So(a, ShouldResemble, b)
			})
		})
	})

	Convey("Given a nil price source", t, func() {
		est := pricing.NewEstimator(nil, pricing.WithClock(func() time.Time { return fixedNow }))
		e, err := est.Estimate(vehicle.Descriptor{Brand: "Audi", Model: "A3", ModelYear: 2026})
		So(err, ShouldBeNil)
		So(e.Factors.BasePrice, ShouldEqual, 30_000)
	})
}

func TestFactors(t *testing.T) {
	Convey("Given the age factor", t, func() {
		So(pricing.AgeFactor(0), ShouldEqual, 1)
		So(pricing.AgeFactor(-1), ShouldEqual, 1)
		So(pricing.AgeFactor(1), ShouldEqual, 0.85)
		So(pricing.AgeFactor(2), ShouldAlmostEqual, 0.782, 0.0001)
		So(pricing.AgeFactor(13), ShouldBeGreaterThan, 0.3)
		So(pricing.AgeFactor(14), ShouldEqual, 0.3)
		So(pricing.AgeFactor(40), ShouldEqual, 0.3)
	})

	Convey("Given the mileage factor", t, func() {
		So(pricing.MileageFactor(0, 0), ShouldEqual, 1.15)
		So(pricing.MileageFactor(9_999, 1), ShouldEqual, 1.15)
		So(pricing.MileageFactor(10_000, 1), ShouldEqual, 1.00)
		So(pricing.MileageFactor(50_000, 2), ShouldEqual, 0.85)
		So(pricing.MileageFactor(60_000, 2), ShouldEqual, 0.70)
		So(pricing.MileageFactor(25_000, 0), ShouldEqual, 0.85)
	})

	Convey("Given fuel and transmission factors", t, func() {
		So(pricing.FuelFactor(vehicle.FuelElectric), ShouldEqual, 1.20)
		So(pricing.FuelFactor(vehicle.FuelHybrid), ShouldEqual, 1.15)
		So(pricing.FuelFactor(vehicle.FuelDiesel), ShouldEqual, 0.98)
		So(pricing.FuelFactor(vehicle.FuelLPG), ShouldEqual, 1.00)
		So(pricing.TransmissionFactor(vehicle.TransmissionAutomatic), ShouldEqual, 1.08)
		So(pricing.TransmissionFactor(vehicle.TransmissionManual), ShouldEqual, 0.92)
		So(pricing.TransmissionFactor(vehicle.TransmissionSemiAutomatic), ShouldEqual, 1.02)
		So(pricing.TransmissionFactor(vehicle.TransmissionCVT), ShouldEqual, 1.00)
	})
}
