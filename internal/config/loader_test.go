package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/carwise/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CARWISE_ADDR", ":9090")
			_ = os.Setenv("CARWISE_REPAIR_QUEUE_SIZE", "64")
			_ = os.Setenv("CARWISE_FALLBACK_TO_MOCK", "false")
			_ = os.Setenv("CARWISE_UPSTREAM_URL", "https://api.example.com")
			_ = os.Setenv("CARWISE_DEFAULT_SEARCH_RADIUS_KM", "12.5")
			_ = os.Setenv("CARWISE_LOG_FORMAT", "JSON")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.RepairQueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.FallbackToMock, convey.ShouldBeFalse)
				convey.So(cfg.UpstreamURL, convey.ShouldEqual, "https://api.example.com")
				convey.So(cfg.DefaultSearchRadiusKm, convey.ShouldEqual, 12.5)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When loading config with YAML file and env overrides", func() {
			tmpFile := createTempConfigFile(t, "carwise.yaml", `
addr: ":7070"
repair_workers: 8
max_garage_results: 20
catalog_path: /etc/carwise/catalog.yaml
`)
			_ = os.Setenv("CARWISE_CONFIG", tmpFile)
			_ = os.Setenv("CARWISE_REPAIR_WORKERS", "2")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables win over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.RepairWorkers, convey.ShouldEqual, 2)
				convey.So(cfg.MaxGarageResults, convey.ShouldEqual, 20)
				convey.So(cfg.CatalogPath, convey.ShouldEqual, "/etc/carwise/catalog.yaml")
				convey.So(cfg.IdempotencySize, convey.ShouldEqual, 10_000)
			})
		})

		convey.Convey("When metrics settings come from a file and env", func() {
			tmpFile := createTempConfigFile(t, "metrics.yaml", `
metrics_namespace: shop
metrics_subsystem: eu
metrics_labels:
  region: eu_west
`)
			_ = os.Setenv("CARWISE_CONFIG", tmpFile)
			_ = os.Setenv("CARWISE_METRICS_LATENCY_BUCKETS", "5,25,100")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then they are loaded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "shop")
				convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "eu")
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"region": "eu_west"})
				convey.So(cfg.MetricsLatencyBuckets, convey.ShouldResemble, []float64{5, 25, 100})
			})
		})

		convey.Convey("When loading config from a JSON file", func() {
			tmpFile := createTempConfigFile(t, "carwise.json", `{"addr": ":6060", "upstream_timeout_ms": 750}`)
			_ = os.Setenv("CARWISE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should be parsed as JSON", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.UpstreamTimeoutMS, convey.ShouldEqual, 750)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, "bad.yaml", `invalid: yaml: content: [`)
			_ = os.Setenv("CARWISE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("CARWISE_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("CARWISE_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func createTempConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"CARWISE_CONFIG", "CARWISE_ADDR", "CARWISE_LOG_LEVEL", "CARWISE_LOG_FORMAT",
		"CARWISE_DB_PATH", "CARWISE_CATALOG_PATH", "CARWISE_UPSTREAM_URL",
		"CARWISE_UPSTREAM_TIMEOUT_MS", "CARWISE_FALLBACK_TO_MOCK", "CARWISE_REPAIR_QUEUE_SIZE",
		"CARWISE_REPAIR_WORKERS", "CARWISE_IDEMPOTENCY_SIZE", "CARWISE_MAX_GARAGE_RESULTS",
		"CARWISE_DEFAULT_SEARCH_RADIUS_KM", "CARWISE_METRICS_LATENCY_BUCKETS",
	} {
		_ = os.Unsetenv(key)
	}
}
