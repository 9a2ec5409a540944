// Package config defines the carwise service configuration and its loader.
package config

import "regexp"

var (
	metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	labelName  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects "text" or "json" log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database holding garages and repair tickets.
	DBPath string `koanf:"db_path"`

	// CatalogPath optionally replaces the embedded brand/model catalog.
	CatalogPath string `koanf:"catalog_path"`

	// UpstreamURL is the base URL of the external car-service API. Empty
	// disables live diagnoses.
	UpstreamURL string `koanf:"upstream_url"`

	// UpstreamTimeoutMS bounds every upstream call.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// FallbackToMock answers from the local diagnoser when the upstream fails.
	FallbackToMock bool `koanf:"fallback_to_mock"`

	// RepairQueueSize bounds the in-memory repair queue.
	RepairQueueSize int `koanf:"repair_queue_size"`

	// RepairWorkers sets the number of repair quote workers.
	RepairWorkers int `koanf:"repair_workers"`

	// IdempotencySize caps the remembered repair request ids.
	IdempotencySize int `koanf:"idempotency_size"`

	// MaxGarageResults caps GET /api/garages?limit.
	MaxGarageResults int `koanf:"max_garage_results"`

	// DefaultSearchRadiusKm applies to coordinate searches without radius_km.
	DefaultSearchRadiusKm float64 `koanf:"default_search_radius_km"`

	// MetricsNamespace prefixes every exported metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// MetricsSubsystem is inserted between namespace and metric name when set.
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsLabels are constant labels added to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// MetricsLatencyBuckets overrides the latency histogram buckets (ms).
	// Env form: CARWISE_METRICS_LATENCY_BUCKETS=5,25,100.
	MetricsLatencyBuckets []float64 `koanf:"metrics_latency_buckets"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":8080",
		DBPath:                "file::memory:?cache=shared",
		UpstreamTimeoutMS:     5000,
		FallbackToMock:        true,
		RepairQueueSize:       1024,
		RepairWorkers:         4,
		IdempotencySize:       10_000,
		MaxGarageResults:      50,
		DefaultSearchRadiusKm: 25,
		MetricsNamespace:      "carwise",
	}
}

// Validate checks the values that would make the service misbehave.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case c.LogFormat != "text" && c.LogFormat != "json":
		return invalid("log_format must be text or json")
	case c.UpstreamTimeoutMS <= 0:
		return invalid("upstream_timeout_ms must be positive")
	case c.MaxGarageResults <= 0:
		return invalid("max_garage_results must be positive")
	case c.DefaultSearchRadiusKm <= 0:
		return invalid("default_search_radius_km must be positive")
	case c.RepairQueueSize <= 0:
		return invalid("repair_queue_size must be positive")
	case !metricName.MatchString(c.MetricsNamespace):
		return invalid("metrics_namespace must be a valid metric name")
	case c.MetricsSubsystem != "" && !metricName.MatchString(c.MetricsSubsystem):
		return invalid("metrics_subsystem must be a valid metric name")
	}
	for k := range c.MetricsLabels {
		if !labelName.MatchString(k) {
			return invalid("metrics_labels has an invalid label name: " + k)
		}
	}
	for i := 1; i < len(c.MetricsLatencyBuckets); i++ {
		if c.MetricsLatencyBuckets[i] <= c.MetricsLatencyBuckets[i-1] {
			return invalid("metrics_latency_buckets must be strictly increasing")
		}
	}
	return nil
}
