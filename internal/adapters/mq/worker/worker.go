// Package worker quotes queued repair requests in the background.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/carwise/internal/adapters/mq/queue"
	"github.com/okian/carwise/internal/domain/model"
	"github.com/okian/carwise/internal/domain/repair"
	"github.com/okian/carwise/pkg/logger"
	"github.com/okian/carwise/pkg/metrics"
)

const (
	defaultWorkerCount = 2
	jobTimeout         = 10 * time.Second
)

// ErrTicketNotPending is returned when a job refers to a ticket that was
// already quoted or failed.
var ErrTicketNotPending = errors.New("ticket is not pending")

// Tickets loads and stores repair tickets.
type Tickets interface {
	Ticket(ctx context.Context, reference string) (model.RepairTicket, error)
	UpdateTicket(ctx context.Context, t model.RepairTicket) error
}

// Garages loads garages.
type Garages interface {
	Garage(ctx context.Context, id string) (model.Garage, error)
}

// Quoter prices a request at a garage.
type Quoter func(g model.Garage, req model.RepairRequest) float64

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker quotes repair jobs until its queue is closed or it is stopped.
type Worker struct {
	queue   Queue
	tickets Tickets
	garages Garages
	quote   Quoter
	now     func() time.Time
	name    string
	logger  logger.Logger
}

// NewWorker creates a worker.
func NewWorker(q Queue, tickets Tickets, garages Garages, opts ...Option) *Worker {
	w := &Worker{
		queue:   q,
		tickets: tickets,
		garages: garages,
		quote:   repair.Quote,
		now:     time.Now,
		name:    "worker",
		logger:  logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run processes jobs until the queue channel closes, stop is closed or ctx
// is cancelled.
func (w *Worker) Run(ctx context.Context, stop <-chan struct{}) {
	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.Process(ctx, job); err != nil {
				w.logger.Error(ctx, "repair job failed",
					logger.String("reference", job.Reference),
					logger.Error(err),
				)
			}
		}
	}
}

// Process quotes a single job. A job that cannot be quoted leaves its ticket
// in the failed state.
func (w *Worker) Process(ctx context.Context, job queue.Job) error {
	start := time.Now()
	metrics.IncWorkerActive()
	defer func() {
		metrics.DecWorkerActive()
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	t, err := w.tickets.Ticket(ctx, job.Reference)
	if err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("load ticket %s: %w", job.Reference, err)
	}
	if t.Status != model.StatusPending {
		return fmt.Errorf("%s: %w", job.Reference, ErrTicketNotPending)
	}

	g, err := w.garages.Garage(ctx, t.Request.GarageID)
	if err != nil {
		w.fail(ctx, t, "garage unavailable")
		return fmt.Errorf("load garage %s: %w", t.Request.GarageID, err)
	}

	q := w.quote(g, t.Request)
	quoted := t
	quoted.Status = model.StatusQuoted
	quoted.Quote = &q
	quoted.UpdatedAt = w.now().UTC()
	if err := w.tickets.UpdateTicket(ctx, quoted); err != nil {
		metrics.RecordErrorByComponent("worker", "update_ticket")
		w.fail(ctx, t, "quote could not be stored")
		return fmt.Errorf("store quote for %s: %w", t.Reference, err)
	}
	t = quoted

	metrics.RecordRepairRequest("quoted")
	w.logger.Debug(ctx, "repair request quoted",
		logger.String("reference", t.Reference),
		logger.String("garage_id", g.ID),
		logger.Float64("quote", q),
	)
	return nil
}

func (w *Worker) fail(ctx context.Context, t model.RepairTicket, reason string) {
	metrics.RecordWorkerError()
	metrics.RecordRepairRequest("failed")
	t.Status = model.StatusFailed
	t.FailureReason = reason
	t.UpdatedAt = w.now().UTC()
	if err := w.tickets.UpdateTicket(ctx, t); err != nil {
		w.logger.Error(ctx, "could not mark ticket failed",
			logger.String("reference", t.Reference),
			logger.Error(err),
		)
	}
}

// Pool runs several workers over one queue.
type Pool struct {
	workers []*Worker
	queue   interface{ Close() error }
	stop    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one uses a
// small default scaled to the CPU count.
func NewPool(workerCount int, q queue.Queue, tickets Tickets, garages Garages, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = min(defaultWorkerCount*runtime.NumCPU(), 16)
	}
	p := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   q,
		stop:    make(chan struct{}),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewWorker(q, tickets, garages, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx, p.stop)
		}(w)
	}
}

// Shutdown closes the queue and waits for workers to drain it. When ctx
// expires first, workers are told to stop and ctx.Err() is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.once.Do(func() { close(p.stop) })
		<-done
		p.logger.Warn(ctx, "worker pool shutdown timed out, pending jobs dropped")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
