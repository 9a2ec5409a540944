package worker

import (
	"time"

	"github.com/okian/carwise/pkg/logger"
)

// Option applies a configuration option to a Worker.
type Option func(*Worker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithQuoter replaces the default repair pricing.
func WithQuoter(q Quoter) Option {
	return func(w *Worker) {
		if q != nil {
			w.quote = q
		}
	}
}

// WithClock sets the time source for ticket timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}
