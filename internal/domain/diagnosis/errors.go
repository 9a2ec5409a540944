package diagnosis

import "errors"

// ErrInvalidRequest is returned when a diagnosis request is incomplete.
var ErrInvalidRequest = errors.New("invalid diagnosis request")
