// Package loadtest drives a running carwise server with concurrent repair
// requests and verifies that every request_id settles on exactly one ticket.
package loadtest

import (
	"errors"
	"fmt"
	"time"
)

// Errors returned by Run.
var (
	ErrInvalidConfig = errors.New("invalid load test config")
	ErrUnhealthy     = errors.New("service is not healthy")
	ErrNoGarages     = errors.New("no garages to target")
	ErrVerification  = errors.New("verification failed")
)

// Default configuration values.
const (
	DefaultBaseURL      = "http://localhost:8080"
	DefaultRequests     = 200
	DefaultWorkers      = 16
	DefaultReplayRatio  = 0.2
	DefaultTimeout      = 60 * time.Second
	DefaultPollInterval = 50 * time.Millisecond
	requestTimeout      = 10 * time.Second
	progressEvery       = 100
)

// Config controls a load test run.
type Config struct {
	BaseURL string
	// Requests is the number of POSTs sent, replays included.
	Requests int
	Workers  int
	// ReplayRatio is the share of POSTs that resend an earlier request_id.
	ReplayRatio float64
	// Timeout bounds the whole run, including waiting for quotes.
	Timeout      time.Duration
	PollInterval time.Duration
	// Seed makes request generation reproducible. Zero picks a random seed.
	Seed uint64
	// OutputFile, when set, receives the JSON report.
	OutputFile string
	Verbose    bool
}

// DefaultConfig returns a config with the default values.
func DefaultConfig() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		Requests:     DefaultRequests,
		Workers:      DefaultWorkers,
		ReplayRatio:  DefaultReplayRatio,
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
	}
}

// Validate checks the config for values Run cannot work with.
func (c Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case c.Requests <= 0:
		return fmt.Errorf("%w: requests must be positive", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.ReplayRatio < 0 || c.ReplayRatio >= 1:
		return fmt.Errorf("%w: replay ratio must be in [0, 1)", ErrInvalidConfig)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// Report summarises a run.
type Report struct {
	Generated int `json:"generated"`
	UniqueIDs int `json:"unique_request_ids"`
	Accepted  int `json:"accepted"`
	Duplicate int `json:"duplicate"`
	Conflict  int `json:"conflict"`
	Rejected  int `json:"rejected"`
	Failed    int `json:"failed"`
	Quoted    int `json:"quoted"`
	QuoteFail int `json:"quote_failed"`
	Unsettled int `json:"unsettled"`
	// Tickets maps request_id to the references the server returned for it.
	Tickets    map[string][]string `json:"tickets,omitempty"`
	StartTime  time.Time           `json:"start_time"`
	EndTime    time.Time           `json:"end_time"`
	Duration   time.Duration       `json:"duration_ns"`
	Throughput float64             `json:"requests_per_second"`
}
