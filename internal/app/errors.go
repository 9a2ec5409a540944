package service

import "errors"

// Sentinel errors for service lifecycle.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrStartService = errors.New("start service")
)
