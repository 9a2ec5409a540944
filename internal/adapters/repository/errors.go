package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicate     = errors.New("record already exists")
	ErrStoreClosed   = errors.New("store is closed")
	ErrInvalidRecord = errors.New("invalid record")
	ErrInvalidSeed   = errors.New("invalid garage seed")
)
