package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/carwise/internal/adapters/repository"
	"github.com/okian/carwise/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newStore(t *testing.T, opts ...repository.Option) *repository.SQLiteStore {
	t.Helper()
	s, err := repository.NewSQLiteStore(context.Background(), ":memory:", opts...)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var berlinAlexanderplatz = model.Point{Lat: 52.5219, Lng: 13.4132}

func TestSQLiteStore_Garages(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store seeded with the built-in directory", t, func() {
		s := newStore(t)
		seed, err := repository.DefaultGarages()
		So(err, ShouldBeNil)

		Convey("Then every seed garage is stored", func() {
			n, err := s.CountGarages(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, len(seed))
		})

		Convey("When a garage is fetched by id", func() {
			g, err := s.Garage(ctx, "garage-berlin-kreuzberg")

			Convey("Then the full record round-trips", func() {
				So(err, ShouldBeNil)
				So(g.Name, ShouldEqual, "Karosserie Kreuzberg")
				So(g.RepairPrices["panel"], ShouldEqual, 600)
				So(g.Services, ShouldContain, "glass")
			})
		})

		Convey("When an unknown garage is fetched", func() {
			_, err := s.Garage(ctx, "nope")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When searching by city without coordinates", func() {
			res, err := s.SearchGarages(ctx, model.GarageQuery{City: "berlin"})

			Convey("Then results are ordered by rating and carry no distance", func() {
				So(err, ShouldBeNil)
				So(len(res), ShouldEqual, 3)
				So(res[0].ID, ShouldEqual, "garage-berlin-kreuzberg")
				So(res[1].ID, ShouldEqual, "garage-berlin-mitte")
				So(res[2].ID, ShouldEqual, "garage-berlin-spandau")
				So(res[0].DistanceKm, ShouldBeNil)
			})
		})

		Convey("When searching around a point", func() {
			res, err := s.SearchGarages(ctx, model.GarageQuery{Near: &berlinAlexanderplatz, RadiusKm: 10})

			Convey("Then only nearby garages are returned, nearest first", func() {
				So(err, ShouldBeNil)
				So(len(res), ShouldEqual, 2)
				So(res[0].ID, ShouldEqual, "garage-berlin-mitte")
				So(res[1].ID, ShouldEqual, "garage-berlin-kreuzberg")
				So(*res[0].DistanceKm, ShouldBeLessThanOrEqualTo, *res[1].DistanceKm)
				So(*res[1].DistanceKm, ShouldBeLessThan, 10)
			})
		})

		Convey("When filtering by service with a limit", func() {
			res, err := s.SearchGarages(ctx, model.GarageQuery{Service: "PAINT", Limit: 2})

			Convey("Then only garages offering it are returned, up to the limit", func() {
				So(err, ShouldBeNil)
				So(len(res), ShouldEqual, 2)
				for _, m := range res {
					So(m.Offers("paint"), ShouldBeTrue)
				}
				So(res[0].Rating, ShouldBeGreaterThanOrEqualTo, res[1].Rating)
			})
		})

		Convey("When a garage is upserted", func() {
			g, _ := s.Garage(ctx, "garage-vienna-favoriten")
			g.Rating = 5
			So(s.UpsertGarage(ctx, g), ShouldBeNil)

			Convey("Then the change is visible in searches", func() {
				res, err := s.SearchGarages(ctx, model.GarageQuery{})
				So(err, ShouldBeNil)
				So(res[0].ID, ShouldEqual, "garage-vienna-favoriten")
			})
		})
	})

	Convey("Given a store without seed", t, func() {
		s := newStore(t, repository.WithoutSeed())
		n, err := s.CountGarages(ctx)
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 0)
		So(errors.Is(s.UpsertGarage(ctx, model.Garage{}), repository.ErrInvalidRecord), ShouldBeTrue)
	})
}

func TestSQLiteStore_SearchAcrossAntimeridian(t *testing.T) {
	ctx := context.Background()

	Convey("Given garages on both sides of the antimeridian", t, func() {
		s := newStore(t, repository.WithSeed([]model.Garage{
			{ID: "east", Name: "East", City: "Taveuni", Latitude: -16.5, Longitude: 179.95, Services: []string{"paint"}, Rating: 4},
			{ID: "west", Name: "West", City: "Taveuni", Latitude: -16.5, Longitude: -179.95, Services: []string{"paint"}, Rating: 4},
			{ID: "far", Name: "Far", City: "Nadi", Latitude: -16.5, Longitude: 177.4, Services: []string{"paint"}, Rating: 5},
		}))

		Convey("When searching just east of the line", func() {
			res, err := s.SearchGarages(ctx, model.GarageQuery{Near: &model.Point{Lat: -16.5, Lng: 179.99}, RadiusKm: 20})

			Convey("Then garages across it are found, nearest first", func() {
				So(err, ShouldBeNil)
				So(res, ShouldHaveLength, 2)
				So(res[0].ID, ShouldEqual, "east")
				So(res[1].ID, ShouldEqual, "west")
				So(*res[1].DistanceKm, ShouldBeLessThan, 20)
			})
		})

		Convey("When searching just west of the line", func() {
			res, err := s.SearchGarages(ctx, model.GarageQuery{Near: &model.Point{Lat: -16.5, Lng: -179.99}, RadiusKm: 20})

			Convey("Then garages across it are found, nearest first", func() {
				So(err, ShouldBeNil)
				So(res, ShouldHaveLength, 2)
				So(res[0].ID, ShouldEqual, "west")
				So(res[1].ID, ShouldEqual, "east")
			})
		})
	})
}

func TestSQLiteStore_Tickets(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	Convey("Given an empty ticket table", t, func() {
		s := newStore(t)
		tk := model.NewTicket(model.RepairRequest{GarageID: "garage-berlin-mitte", DamageType: "paint"}, now)

		Convey("When a ticket is created", func() {
			So(s.CreateTicket(ctx, tk), ShouldBeNil)

			Convey("Then it can be read back", func() {
				got, err := s.Ticket(ctx, tk.Reference)
				So(err, ShouldBeNil)
				So(got.Status, ShouldEqual, model.StatusPending)
				So(got.Request.GarageID, ShouldEqual, "garage-berlin-mitte")
			})

			Convey("Then creating it again fails", func() {
				So(errors.Is(s.CreateTicket(ctx, tk), repository.ErrDuplicate), ShouldBeTrue)
			})

			Convey("And it is quoted", func() {
				q := 510.0
				tk.Status = model.StatusQuoted
				tk.Quote = &q
				tk.UpdatedAt = now.Add(time.Second)
				So(s.UpdateTicket(ctx, tk), ShouldBeNil)

				Convey("Then the quote and counts reflect it", func() {
					got, err := s.Ticket(ctx, tk.Reference)
					So(err, ShouldBeNil)
					So(*got.Quote, ShouldEqual, 510)

					counts, err := s.TicketCounts(ctx)
					So(err, ShouldBeNil)
					So(counts[model.StatusQuoted], ShouldEqual, 1)
					So(counts[model.StatusPending], ShouldEqual, 0)
				})
			})
		})

		Convey("When an unknown ticket is read or updated", func() {
			_, err := s.Ticket(ctx, "RR-DEADBEEF")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(errors.Is(s.UpdateTicket(ctx, tk), repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestSQLiteStore_Lifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a file-backed store", t, func() {
		path := filepath.Join(t.TempDir(), "carwise.db")
		s, err := repository.NewSQLiteStore(ctx, path)
		So(err, ShouldBeNil)
		So(s.Ping(ctx), ShouldBeNil)

		Convey("When it is closed", func() {
			So(s.Close(), ShouldBeNil)

			Convey("Then every call reports a closed store", func() {
				So(errors.Is(s.Ping(ctx), repository.ErrStoreClosed), ShouldBeTrue)
				_, err := s.Garage(ctx, "garage-berlin-mitte")
				So(errors.Is(err, repository.ErrStoreClosed), ShouldBeTrue)
				So(s.Close(), ShouldBeNil)
			})

			Convey("And reopened", func() {
				s2, err := repository.NewSQLiteStore(ctx, path, repository.WithSeed([]model.Garage{{ID: "x", Name: "X"}}))
				So(err, ShouldBeNil)
				defer s2.Close()

				Convey("Then the existing directory is kept and the seed ignored", func() {
					_, err := s2.Garage(ctx, "x")
					So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
					_, err = s2.Garage(ctx, "garage-berlin-mitte")
					So(err, ShouldBeNil)
				})
			})
		})
	})

	Convey("Given a broken seed document", t, func() {
		_, err := repository.ParseGarages([]byte("- name: no id\n"))
		So(errors.Is(err, repository.ErrInvalidSeed), ShouldBeTrue)
	})
}
