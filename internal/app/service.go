// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/carwise/internal/adapters/http/api"
	"github.com/okian/carwise/internal/adapters/mq/queue"
	"github.com/okian/carwise/internal/adapters/mq/worker"
	"github.com/okian/carwise/internal/adapters/repository"
	"github.com/okian/carwise/internal/adapters/upstream"
	"github.com/okian/carwise/internal/domain/catalog"
	"github.com/okian/carwise/internal/domain/diagnosis"
	"github.com/okian/carwise/internal/domain/idempotency"
	"github.com/okian/carwise/internal/domain/model"
	"github.com/okian/carwise/internal/domain/pricing"
	"github.com/okian/carwise/internal/domain/reliability"
	"github.com/okian/carwise/internal/domain/vehicle"
	"github.com/okian/carwise/pkg/logger"
	"github.com/okian/carwise/pkg/metrics"
)

// Data sources reported for GET /api/car-data.
const (
	SourceUpstream = "upstream"
	SourceCatalog  = "catalog"
)

// maxReferenceAttempts bounds the draws of a booking reference for one ticket.
const maxReferenceAttempts = 5

// Upstream is the external car-service API.
type Upstream interface {
	Diagnose(ctx context.Context, req diagnosis.Request) (diagnosis.Diagnosis, error)
	CarData(ctx context.Context) (map[string][]string, error)
}

// Service implements the API dependencies for carwise.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog     *catalog.Catalog
	reliability *reliability.Estimator
	pricing     *pricing.Estimator
	diagnoser   *diagnosis.Diagnoser
	upstream    Upstream
	store       repository.Store
	idempotency idempotency.Cache
	repairQueue *queue.InMemoryQueue
	workerPool  *worker.Pool

	// Configuration
	dbPath           string
	catalogPath      string
	upstreamURL      string
	upstreamTimeout  time.Duration
	fallbackToMock   bool
	workerCount      int
	queueSize        int
	idempotencySize  int
	maxGarageResults int
	defaultRadiusKm  float64
	storeOpts        []repository.Option
	now              func() time.Time

	// State
	started       bool
	cancelWorkers context.CancelFunc

	// Logging
	logger logger.Logger
}

var _ api.Dependencies = (*Service)(nil)

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:           "file::memory:?cache=shared",
		upstreamTimeout:  5 * time.Second,
		fallbackToMock:   true,
		workerCount:      min(runtime.NumCPU(), 4),
		queueSize:        1024,
		idempotencySize:  10_000,
		maxGarageResults: 50,
		defaultRadiusKm:  25,
		now:              time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the catalog, estimators, store and repair workers.
// Workers run until Stop; ctx only bounds initialization.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting carwise service...")

	cat, err := s.loadCatalog()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStartService, err)
	}
	s.catalog = cat
	s.reliability = reliability.NewEstimator(reliability.WithClock(s.now))
	s.pricing = pricing.NewEstimator(cat, pricing.WithClock(s.now))
	s.diagnoser = diagnosis.NewDiagnoser()

	if s.upstream == nil && s.upstreamURL != "" {
		client, err := upstream.New(s.upstreamURL, upstream.WithTimeout(s.upstreamTimeout))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStartService, err)
		}
		s.upstream = client
		s.logger.Info(ctx, "upstream API configured", logger.String("url", client.BaseURL()))
	}

	if s.store == nil {
		store, err := repository.NewSQLiteStore(ctx, s.dbPath, s.storeOpts...)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStartService, err)
		}
		s.store = store
	}

	s.idempotency = idempotency.NewInMemoryCache(idempotency.WithMaxSize(s.idempotencySize))
	s.repairQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.workerPool = worker.NewPool(s.workerCount, s.repairQueue, s.store, s.store,
		worker.WithClock(s.now),
		worker.WithLogger(s.logger.Named("worker")),
	)

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancelWorkers = cancel
	s.workerPool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "carwise service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("idempotencySize", s.idempotencySize),
		logger.Int("brands", len(cat.Brands())),
		logger.Bool("upstream", s.upstream != nil),
	)

	return nil
}

func (s *Service) loadCatalog() (*catalog.Catalog, error) {
	if s.catalogPath == "" {
		return catalog.Default()
	}
	return catalog.Load(s.catalogPath)
}

// Stop drains the repair queue within ctx, then closes the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping carwise service...")

	var errs []error
	if err := s.workerPool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	s.cancelWorkers()

	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}

	s.started = false
	s.store = nil
	s.logger.Info(ctx, "carwise service stopped")
	return errors.Join(errs...)
}

// Assess returns the reliability assessment of d.
func (s *Service) Assess(_ context.Context, d vehicle.Descriptor) (reliability.Assessment, error) {
	a, err := s.reliability.Assess(d)
	if err != nil {
		metrics.RecordValidationFailure("assess")
		return reliability.Assessment{}, err
	}
	metrics.RecordAssessment(string(a.Recommendation), a.Score)
	return a, nil
}

// EstimatePrice returns the fair-market price estimate of d.
func (s *Service) EstimatePrice(_ context.Context, d vehicle.Descriptor) (pricing.Estimate, error) {
	est, err := s.pricing.Estimate(d)
	if err != nil {
		metrics.RecordValidationFailure("price_estimate")
		return pricing.Estimate{}, err
	}
	metrics.RecordPriceEstimate(est.EstimatedPrice)
	return est, nil
}

// CheckUsedCar combines the reliability assessment and the price estimate.
func (s *Service) CheckUsedCar(ctx context.Context, d vehicle.Descriptor) (api.UsedCarReport, error) {
	a, err := s.Assess(ctx, d)
	if err != nil {
		return api.UsedCarReport{}, err
	}
	est, err := s.EstimatePrice(ctx, d)
	if err != nil {
		return api.UsedCarReport{}, err
	}
	return api.UsedCarReport{Vehicle: d.Normalize(), Reliability: a, Market: est}, nil
}

// CarData returns brand to models from the upstream when it answers, and from
// the local catalog otherwise.
func (s *Service) CarData(ctx context.Context) (map[string][]string, string, error) {
	if s.upstream == nil {
		return s.catalog.Snapshot(), SourceCatalog, nil
	}
	data, err := s.upstream.CarData(ctx)
	if err == nil && len(data) > 0 {
		return data, SourceUpstream, nil
	}
	if err == nil {
		err = fmt.Errorf("%w: empty car data", upstream.ErrInvalidResponse)
	}
	if !s.fallbackToMock {
		return nil, "", fmt.Errorf("car data: %w", err)
	}
	s.fallback(ctx, "car data", err)
	return s.catalog.Snapshot(), SourceCatalog, nil
}

// Diagnose answers from the upstream when configured and falls back to the
// local diagnoser when allowed.
func (s *Service) Diagnose(ctx context.Context, req diagnosis.Request) (diagnosis.Result, error) {
	if err := req.Validate(); err != nil {
		metrics.RecordValidationFailure("diagnose")
		return diagnosis.Result{}, err
	}

	var reason string
	if s.upstream != nil {
		d, err := s.upstream.Diagnose(ctx, req)
		if err == nil {
			metrics.RecordDiagnosis(string(diagnosis.ModeLive))
			return diagnosis.Result{Diagnosis: d, Mode: diagnosis.ModeLive}, nil
		}
		if !s.fallbackToMock {
			return diagnosis.Result{}, fmt.Errorf("diagnose: %w", err)
		}
		s.fallback(ctx, "diagnose", err)
		reason = err.Error()
	}

	d, err := s.diagnoser.Diagnose(req)
	if err != nil {
		return diagnosis.Result{}, err
	}
	metrics.RecordDiagnosis(string(diagnosis.ModeMock))
	return diagnosis.Result{Diagnosis: d, Mode: diagnosis.ModeMock, FallbackReason: reason}, nil
}

func (s *Service) fallback(ctx context.Context, op string, err error) {
	metrics.RecordUpstreamFallback()
	s.logger.Warn(ctx, "upstream failed, answering locally",
		logger.String("operation", op),
		logger.Error(err),
	)
}

// SearchGarages applies the result cap and default radius, then queries the
// store.
func (s *Service) SearchGarages(ctx context.Context, q model.GarageQuery) ([]model.GarageMatch, error) {
	if q.Limit <= 0 || q.Limit > s.maxGarageResults {
		q.Limit = s.maxGarageResults
	}
	if q.Near != nil && q.RadiusKm <= 0 {
		q.RadiusKm = s.defaultRadiusKm
	}
	matches, err := s.store.SearchGarages(ctx, q)
	if err != nil {
		return nil, err
	}
	metrics.RecordGarageSearch(len(matches))
	return matches, nil
}

// Garage returns the garage with id.
func (s *Service) Garage(ctx context.Context, id string) (model.Garage, error) {
	return s.store.Garage(ctx, id)
}

// SubmitRepairRequest stores a pending ticket and queues it for quoting. A
// request_id seen before returns the ticket it produced and true.
func (s *Service) SubmitRepairRequest(ctx context.Context, req model.RepairRequest) (model.RepairTicket, bool, error) {
	now := s.now()
	req = req.Normalize()
	if err := req.Validate(now); err != nil {
		metrics.RecordValidationFailure("repair_request")
		return model.RepairTicket{}, false, err
	}
	if _, err := s.store.Garage(ctx, req.GarageID); err != nil {
		return model.RepairTicket{}, false, fmt.Errorf("garage %s: %w", req.GarageID, err)
	}

	t := model.NewTicket(req, now)
	if req.RequestID != "" {
		ref, seen := s.idempotency.Reserve(ctx, req.RequestID, t.Reference)
		if seen {
			existing, err := s.store.Ticket(ctx, ref)
			if errors.Is(err, repository.ErrNotFound) {
				// The first submission has reserved the key but not stored its ticket yet.
				return model.RepairTicket{}, false, fmt.Errorf("request %s in progress: %w", req.RequestID, repository.ErrDuplicate)
			}
			if err != nil {
				return model.RepairTicket{}, false, err
			}
			metrics.RecordRepairRequest("duplicate")
			return existing, true, nil
		}
	}

	if err := s.createTicket(ctx, &t); err != nil {
		s.forget(ctx, req.RequestID)
		return model.RepairTicket{}, false, fmt.Errorf("create ticket: %w", err)
	}

	if err := s.repairQueue.Enqueue(ctx, queue.Job{Reference: t.Reference, EnqueuedAt: now}); err != nil {
		t.Status = model.StatusFailed
		t.FailureReason = "repair queue unavailable: " + err.Error()
		t.UpdatedAt = s.now().UTC()
		if uerr := s.store.UpdateTicket(ctx, t); uerr != nil {
			s.logger.Error(ctx, "could not mark rejected ticket failed",
				logger.String("reference", t.Reference),
				logger.Error(uerr),
			)
		}
		s.forget(ctx, req.RequestID)
		metrics.RecordRepairRequest("rejected")
		s.logger.Warn(ctx, "repair request rejected",
			logger.String("reference", t.Reference),
			logger.Error(err),
		)
		return model.RepairTicket{}, false, fmt.Errorf("enqueue %s: %w", t.Reference, err)
	}

	metrics.RecordRepairRequest("accepted")
	s.logger.Debug(ctx, "repair request accepted",
		logger.String("reference", t.Reference),
		logger.String("garage_id", req.GarageID),
	)
	return t, false, nil
}

// createTicket stores t, drawing a fresh reference while the current one is
// already taken.
func (s *Service) createTicket(ctx context.Context, t *model.RepairTicket) error {
	for attempt := 1; ; attempt++ {
		err := s.store.CreateTicket(ctx, *t)
		if !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
		if attempt == maxReferenceAttempts {
			return fmt.Errorf("no free reference after %d attempts: %v", attempt, err)
		}
		t.Reference = model.NewReference()
		if key := t.Request.RequestID; key != "" {
			s.idempotency.Rebind(ctx, key, t.Reference)
		}
	}
}

func (s *Service) forget(ctx context.Context, key string) {
	if key != "" {
		s.idempotency.Forget(ctx, key)
	}
}

// RepairTicket returns the ticket with reference.
func (s *Service) RepairTicket(ctx context.Context, reference string) (model.RepairTicket, error) {
	return s.store.Ticket(ctx, reference)
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return s.store.Ping(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mode := string(diagnosis.ModeMock)
	if s.upstream != nil {
		mode = string(diagnosis.ModeLive)
	}
	stats := map[string]interface{}{
		"started":          s.started,
		"worker_count":     s.workerCount,
		"queue_capacity":   s.queueSize,
		"idempotency_size": s.idempotencySize,
		"upstream_mode":    mode,
		"fallback_to_mock": s.fallbackToMock,
	}
	if !s.started {
		return stats
	}

	ctx := context.Background()
	stats["queue_length"] = s.repairQueue.Len(ctx)
	stats["idempotency_keys"] = s.idempotency.Size()
	stats["brands"] = len(s.catalog.Brands())

	if n, err := s.store.CountGarages(ctx); err == nil {
		stats["garages"] = n
		metrics.UpdateGaragesTotal(n)
	}
	if counts, err := s.store.TicketCounts(ctx); err == nil {
		tickets := map[string]int{
			string(model.StatusPending): 0,
			string(model.StatusQuoted):  0,
			string(model.StatusFailed):  0,
		}
		for status, n := range counts {
			tickets[string(status)] = n
		}
		stats["tickets"] = tickets
	}
	metrics.UpdateWorkerCount(s.workerPool.Size())

	return stats
}
