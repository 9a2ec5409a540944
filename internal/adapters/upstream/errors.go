package upstream

import "errors"

// Sentinel kinds for upstream failures.
var (
	ErrNotConfigured       = errors.New("upstream is not configured")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamStatus      = errors.New("upstream returned an error status")
	ErrInvalidResponse     = errors.New("upstream returned an invalid response")
)
