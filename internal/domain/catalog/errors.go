package catalog

import "errors"

var (
	// ErrLoadCatalog is returned when a catalog file cannot be read.
	ErrLoadCatalog = errors.New("failed to load catalog")
	// ErrInvalidCatalog is returned when a catalog document cannot be decoded.
	ErrInvalidCatalog = errors.New("invalid catalog document")
	// ErrEmptyCatalog is returned when a catalog has no usable brand.
	ErrEmptyCatalog = errors.New("catalog has no brands")
)
