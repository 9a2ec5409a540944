package repair_test

import (
	"testing"

	"github.com/okian/carwise/internal/domain/model"
	"github.com/okian/carwise/internal/domain/repair"
	. "github.com/smartystreets/goconvey/convey"
)

func TestQuote(t *testing.T) {
	Convey("Given a garage with its own paint price", t, func() {
		g := model.Garage{ID: "g1", RepairPrices: map[string]float64{"paint": 320}}

		Convey("When a moderate paint job on a Skoda is quoted", func() {
			q := repair.Quote(g, model.RepairRequest{
				Vehicle: model.RepairVehicle{Brand: "Skoda"}, DamageType: "paint", Severity: model.SeverityModerate,
			})

			Convey("Then the garage price is scaled by severity", func() {
				So(q, ShouldEqual, 510) // 320 * 1.6 = 512
			})
		})

		Convey("When a severe dent on a BMW is quoted", func() {
			q := repair.Quote(g, model.RepairRequest{
				Vehicle: model.RepairVehicle{Brand: "bmw"}, DamageType: "dent", Severity: model.SeveritySevere,
			})

			Convey("Then the default price and the premium factor apply", func() {
				So(q, ShouldEqual, 540) // 180 * 2.5 * 1.2
			})
		})

		Convey("When a minor scratch is quoted", func() {
			q := repair.Quote(g, model.RepairRequest{
				Vehicle: model.RepairVehicle{Brand: "Kia"}, DamageType: "scratch", Severity: model.SeverityMinor,
			})
			So(q, ShouldEqual, 150)
		})
	})

	Convey("Given the severity ladder", t, func() {
		So(repair.SeverityFactor(model.SeverityMinor), ShouldEqual, 1.0)
		So(repair.SeverityFactor(model.SeverityModerate), ShouldEqual, 1.6)
		So(repair.SeverityFactor(model.SeveritySevere), ShouldEqual, 2.5)
	})
}
