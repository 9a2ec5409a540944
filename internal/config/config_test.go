package config_test

import (
	"errors"
	"testing"

	"github.com/okian/carwise/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.DBPath, convey.ShouldEqual, "file::memory:?cache=shared")
			convey.So(cfg.UpstreamURL, convey.ShouldBeEmpty)
			convey.So(cfg.FallbackToMock, convey.ShouldBeTrue)
			convey.So(cfg.RepairQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.MaxGarageResults, convey.ShouldEqual, 50)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with a single bad value", t, func() {
		cases := map[string]func(*config.Config){
			"addr":                     func(c *config.Config) { c.Addr = "" },
			"log_format":               func(c *config.Config) { c.LogFormat = "xml" },
			"upstream_timeout_ms":      func(c *config.Config) { c.UpstreamTimeoutMS = 0 },
			"max_garage_results":       func(c *config.Config) { c.MaxGarageResults = -1 },
			"default_search_radius_km": func(c *config.Config) { c.DefaultSearchRadiusKm = 0 },
			"repair_queue_size":        func(c *config.Config) { c.RepairQueueSize = 0 },
			"metrics_namespace":        func(c *config.Config) { c.MetricsNamespace = "car-wise" },
			"metrics_subsystem":        func(c *config.Config) { c.MetricsSubsystem = "1api" },
			"metrics_labels":           func(c *config.Config) { c.MetricsLabels = map[string]string{"bad label": "x"} },
			"metrics_latency_buckets":  func(c *config.Config) { c.MetricsLatencyBuckets = []float64{10, 5} },
		}
		for key, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, key)
		}
	})
}
