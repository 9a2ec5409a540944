package service

import (
	"time"

	"github.com/okian/carwise/internal/adapters/repository"
	"github.com/okian/carwise/internal/config"
	"github.com/okian/carwise/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig applies every setting of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg == nil {
			return
		}
		for _, opt := range []Option{
			WithDBPath(cfg.DBPath),
			WithCatalogPath(cfg.CatalogPath),
			WithUpstreamURL(cfg.UpstreamURL),
			WithUpstreamTimeout(time.Duration(cfg.UpstreamTimeoutMS) * time.Millisecond),
			WithFallbackToMock(cfg.FallbackToMock),
			WithQueueSize(cfg.RepairQueueSize),
			WithWorkerCount(cfg.RepairWorkers),
			WithIdempotencySize(cfg.IdempotencySize),
			WithMaxGarageResults(cfg.MaxGarageResults),
			WithDefaultSearchRadius(cfg.DefaultSearchRadiusKm),
		} {
			opt(s)
		}
	}
}

// WithDBPath sets the SQLite database path.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithCatalogPath replaces the embedded catalog with the file at path.
func WithCatalogPath(path string) Option {
	return func(s *Service) {
		s.catalogPath = path
	}
}

// WithUpstreamURL enables live diagnoses and catalog data from baseURL.
func WithUpstreamURL(baseURL string) Option {
	return func(s *Service) {
		s.upstreamURL = baseURL
	}
}

// WithUpstreamTimeout bounds every upstream call.
func WithUpstreamTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.upstreamTimeout = d
		}
	}
}

// WithUpstream sets the upstream client directly. It takes precedence over
// WithUpstreamURL.
func WithUpstream(u Upstream) Option {
	return func(s *Service) {
		s.upstream = u
	}
}

// WithFallbackToMock controls whether upstream failures are answered locally.
func WithFallbackToMock(enabled bool) Option {
	return func(s *Service) {
		s.fallbackToMock = enabled
	}
}

// WithWorkerCount sets the number of repair workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the repair queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithIdempotencySize caps the remembered request ids.
func WithIdempotencySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.idempotencySize = size
		}
	}
}

// WithMaxGarageResults caps garage search results.
func WithMaxGarageResults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxGarageResults = n
		}
	}
}

// WithDefaultSearchRadius sets the radius used by coordinate searches that
// do not name one.
func WithDefaultSearchRadius(km float64) Option {
	return func(s *Service) {
		if km > 0 {
			s.defaultRadiusKm = km
		}
	}
}

// WithStore uses store instead of opening the SQLite database. The service
// closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithStoreOptions passes options to the SQLite store.
func WithStoreOptions(opts ...repository.Option) Option {
	return func(s *Service) {
		s.storeOpts = append(s.storeOpts, opts...)
	}
}

// WithClock sets the time source for estimators and tickets.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
