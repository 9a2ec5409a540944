package model_test

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/okian/carwise/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func validRequest() model.RepairRequest {
	return model.RepairRequest{
		RequestID:    "abc",
		GarageID:     "garage-berlin-1",
		Vehicle:      model.RepairVehicle{Brand: "vw", Model: "Golf", ModelYear: 2018},
		DamageType:   "Paint",
		Severity:     "Moderate",
		ContactEmail: "driver@example.com",
	}
}

func TestRepairRequest_Validate(t *testing.T) {
	Convey("Given a complete repair request", t, func() {
		req := validRequest().Normalize()

		Convey("Then normalization canonicalises brand, damage type and severity", func() {
			So(req.Vehicle.Brand, ShouldEqual, "Volkswagen")
			So(req.DamageType, ShouldEqual, "paint")
			So(req.Severity, ShouldEqual, model.SeverityModerate)
		})

		Convey("Then it validates", func() {
			So(req.Validate(fixedNow), ShouldBeNil)
		})
	})

	Convey("Given a request with several problems", t, func() {
		req := model.RepairRequest{
			Vehicle:      model.RepairVehicle{ModelYear: 1900},
			DamageType:   "engine",
			Severity:     "catastrophic",
			ContactEmail: "not-an-email",
		}.Normalize()

		Convey("Then every field is reported together", func() {
			err := req.Validate(fixedNow)
			So(errors.Is(err, model.ErrInvalidRepairRequest), ShouldBeTrue)

			var verr *model.RequestValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			names := make([]string, len(verr.Fields))
			for i, f := range verr.Fields {
				names[i] = f.Field
			}
			So(names, ShouldResemble, []string{
				"garage_id", "vehicle.brand", "vehicle.model_year", "damage_type", "severity", "contact_email",
			})
		})
	})
}

func TestNewTicket(t *testing.T) {
	Convey("Given a new ticket", t, func() {
		tk := model.NewTicket(validRequest(), fixedNow)

		Convey("Then it is pending with a booking reference", func() {
			So(tk.Status, ShouldEqual, model.StatusPending)
			So(tk.Quote, ShouldBeNil)
			So(regexp.MustCompile(`^RR-[0-9A-F]{8}$`).MatchString(tk.Reference), ShouldBeTrue)
			So(tk.CreatedAt.Equal(fixedNow), ShouldBeTrue)
		})

		Convey("Then references differ between tickets", func() {
			So(model.NewTicket(validRequest(), fixedNow).Reference, ShouldNotEqual, tk.Reference)
		})
	})

	Convey("Given a garage", t, func() {
		g := model.Garage{Services: []string{"Paint", "dent"}}
		So(g.Offers("paint"), ShouldBeTrue)
		So(g.Offers("glass"), ShouldBeFalse)
	})
}
