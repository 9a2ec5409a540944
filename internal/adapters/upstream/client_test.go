package upstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/carwise/internal/adapters/upstream"
	"github.com/okian/carwise/internal/domain/diagnosis"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given client construction", t, func() {
		_, err := upstream.New("")
		So(errors.Is(err, upstream.ErrNotConfigured), ShouldBeTrue)

		_, err = upstream.New("not a url")
		So(errors.Is(err, upstream.ErrNotConfigured), ShouldBeTrue)

		c, err := upstream.New("https://api.example.com/")
		So(err, ShouldBeNil)
		So(c.BaseURL(), ShouldEqual, "https://api.example.com")
	})
}

func TestClient_Diagnose(t *testing.T) {
	Convey("Given an upstream that answers diagnoses", t, func() {
		var got diagnosis.Request
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/diagnose" {
				http.NotFound(w, r)
				return
			}
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"diagnosis":{"analysis":"Worn brake pads.","estimated_cost":{"low":100,"high":300}}}`))
		}))
		defer srv.Close()

		c, err := upstream.New(srv.URL)
		So(err, ShouldBeNil)

		Convey("When a diagnosis is requested", func() {
			d, err := c.Diagnose(context.Background(), diagnosis.Request{CarBrand: "Kia", Symptoms: "brakes squeal"})

			Convey("Then the request is forwarded and gaps are filled in", func() {
				So(err, ShouldBeNil)
				So(got.CarBrand, ShouldEqual, "Kia")
				So(d.Analysis, ShouldEqual, "Worn brake pads.")
				So(d.References, ShouldNotBeNil)
				So(d.Categories, ShouldHaveLength, 1)
				So(d.EstimatedCost.Currency, ShouldEqual, "EUR")
				So(d.EstimatedCost.High, ShouldEqual, 300)
			})
		})
	})

	Convey("Given an upstream returning errors", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/diagnose":
				w.WriteHeader(http.StatusServiceUnavailable)
			default:
				_, _ = w.Write([]byte(`{"diagnosis":`))
			}
		}))
		defer srv.Close()
		c, _ := upstream.New(srv.URL)

		Convey("Then a non-2xx status is reported", func() {
			_, err := c.Diagnose(context.Background(), diagnosis.Request{CarBrand: "Kia", Symptoms: "x"})
			So(errors.Is(err, upstream.ErrUpstreamStatus), ShouldBeTrue)
		})

		Convey("Then a broken body is reported", func() {
			_, err := c.CarData(context.Background())
			So(errors.Is(err, upstream.ErrInvalidResponse), ShouldBeTrue)
		})
	})

	Convey("Given an upstream that is too slow", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()
		c, _ := upstream.New(srv.URL, upstream.WithTimeout(20*time.Millisecond))

		_, err := c.Diagnose(context.Background(), diagnosis.Request{CarBrand: "Kia", Symptoms: "x"})
		So(errors.Is(err, upstream.ErrUpstreamUnavailable), ShouldBeTrue)
	})

	Convey("Given an upstream answering without analysis", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"diagnosis":{"analysis":"  "}}`))
		}))
		defer srv.Close()
		c, _ := upstream.New(srv.URL)

		_, err := c.Diagnose(context.Background(), diagnosis.Request{CarBrand: "Kia", Symptoms: "x"})
		So(errors.Is(err, upstream.ErrInvalidResponse), ShouldBeTrue)
	})
}

func TestClient_CarData(t *testing.T) {
	Convey("Given an upstream car-data payload in mixed shapes", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"Toyota":["Yaris","Corolla"],"BMW":{"models":["X5"]},"Kia":{"Rio":{},"Ceed":{}}}`))
		}))
		defer srv.Close()
		c, _ := upstream.New(srv.URL)

		data, err := c.CarData(context.Background())
		So(err, ShouldBeNil)
		So(data["Toyota"], ShouldResemble, []string{"Yaris", "Corolla"})
		So(data["BMW"], ShouldResemble, []string{"X5"})
		So(data["Kia"], ShouldResemble, []string{"Ceed", "Rio"})
	})
}
