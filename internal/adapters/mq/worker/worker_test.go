package worker_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/okian/carwise/internal/adapters/mq/queue"
	"github.com/okian/carwise/internal/adapters/mq/worker"
	"github.com/okian/carwise/internal/domain/model"
	"github.com/okian/carwise/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

var errNotFound = errors.New("not found")

type memTickets struct {
	mu      sync.Mutex
	tickets map[string]model.RepairTicket
	failOn  string
}

func newMemTickets() *memTickets {
	return &memTickets{tickets: make(map[string]model.RepairTicket)}
}

func (m *memTickets) Ticket(_ context.Context, ref string) (model.RepairTicket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[ref]
	if !ok {
		return model.RepairTicket{}, errNotFound
	}
	return t, nil
}

func (m *memTickets) UpdateTicket(_ context.Context, t model.RepairTicket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.Reference == m.failOn && t.Status == model.StatusQuoted {
		return errors.New("disk full")
	}
	m.tickets[t.Reference] = t
	return nil
}

func (m *memTickets) put(t model.RepairTicket) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[t.Reference] = t
}

func (m *memTickets) get(ref string) model.RepairTicket {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tickets[ref]
}

type memGarages map[string]model.Garage

func (m memGarages) Garage(_ context.Context, id string) (model.Garage, error) {
	g, ok := m[id]
	if !ok {
		return model.Garage{}, errNotFound
	}
	return g, nil
}

var (
	fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	garages  = memGarages{
		"g1": {ID: "g1", Name: "Karosserie", RepairPrices: map[string]float64{"paint": 320}},
	}
)

func pendingTicket(ref, garageID string) model.RepairTicket {
	return model.RepairTicket{
		Reference: ref,
		Status:    model.StatusPending,
		Request: model.RepairRequest{
			GarageID:   garageID,
			Vehicle:    model.RepairVehicle{Brand: "Skoda"},
			DamageType: "paint",
			Severity:   model.SeverityModerate,
		},
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
}

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func TestWorker_Process(t *testing.T) {
	convey.Convey("Given a worker over in-memory stores", t, func() {
		tickets := newMemTickets()
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		w := worker.NewWorker(q, tickets, garages, worker.WithClock(func() time.Time { return fixedNow.Add(time.Minute) }))
		ctx := context.Background()

		convey.Convey("When a pending ticket is processed", func() {
			tickets.put(pendingTicket("RR-1", "g1"))
			err := w.Process(ctx, queue.Job{Reference: "RR-1"})

			convey.Convey("Then it is quoted from the garage price", func() {
				convey.So(err, convey.ShouldBeNil)
				got := tickets.get("RR-1")
				convey.So(got.Status, convey.ShouldEqual, model.StatusQuoted)
				convey.So(*got.Quote, convey.ShouldEqual, 510)
				convey.So(got.UpdatedAt.Equal(fixedNow.Add(time.Minute)), convey.ShouldBeTrue)
			})

			convey.Convey("And processed again", func() {
				err := w.Process(ctx, queue.Job{Reference: "RR-1"})

				convey.Convey("Then it is skipped", func() {
					convey.So(errors.Is(err, worker.ErrTicketNotPending), convey.ShouldBeTrue)
				})
			})
		})

		convey.Convey("When the garage has disappeared", func() {
			tickets.put(pendingTicket("RR-2", "gone"))
			err := w.Process(ctx, queue.Job{Reference: "RR-2"})

			convey.Convey("Then the ticket is marked failed", func() {
				convey.So(errors.Is(err, errNotFound), convey.ShouldBeTrue)
				got := tickets.get("RR-2")
				convey.So(got.Status, convey.ShouldEqual, model.StatusFailed)
				convey.So(got.FailureReason, convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When the ticket is unknown", func() {
			err := w.Process(ctx, queue.Job{Reference: "RR-404"})
			convey.So(errors.Is(err, errNotFound), convey.ShouldBeTrue)
		})

		convey.Convey("When storing the quote fails", func() {
			tickets.failOn = "RR-3"
			tickets.put(pendingTicket("RR-3", "g1"))
			err := w.Process(ctx, queue.Job{Reference: "RR-3"})

			convey.Convey("Then the error is returned and the ticket is marked failed", func() {
				convey.So(err, convey.ShouldNotBeNil)
				got := tickets.get("RR-3")
				convey.So(got.Status, convey.ShouldEqual, model.StatusFailed)
				convey.So(got.FailureReason, convey.ShouldEqual, "quote could not be stored")
				convey.So(got.Quote, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a custom quoter is configured", func() {
			w := worker.NewWorker(q, tickets, garages, worker.WithQuoter(func(model.Garage, model.RepairRequest) float64 { return 99 }))
			tickets.put(pendingTicket("RR-4", "g1"))
			convey.So(w.Process(ctx, queue.Job{Reference: "RR-4"}), convey.ShouldBeNil)
			convey.So(*tickets.get("RR-4").Quote, convey.ShouldEqual, 99)
		})
	})
}

func TestPool(t *testing.T) {
	defer goleak.VerifyNone(t)

	convey.Convey("Given a started pool of three workers", t, func() {
		tickets := newMemTickets()
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		p := worker.NewPool(3, q, tickets, garages)
		convey.So(p.Size(), convey.ShouldEqual, 3)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		p.Start(ctx)

		convey.Convey("When jobs are enqueued and the pool is shut down", func() {
			const jobs = 20
			for i := 0; i < jobs; i++ {
				ref := fmt.Sprintf("RR-%02d", i)
				tickets.put(pendingTicket(ref, "g1"))
				convey.So(q.Enqueue(ctx, queue.Job{Reference: ref}), convey.ShouldBeNil)
			}

			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			convey.So(p.Shutdown(shutdownCtx), convey.ShouldBeNil)

			convey.Convey("Then every queued job was drained and quoted", func() {
				for i := 0; i < jobs; i++ {
					convey.So(tickets.get(fmt.Sprintf("RR-%02d", i)).Status, convey.ShouldEqual, model.StatusQuoted)
				}
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the run context is cancelled", func() {
			cancel()
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()

			convey.Convey("Then shutdown still returns promptly", func() {
				convey.So(p.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a pool with a default worker count", t, func() {
		q := queue.NewInMemoryQueue()
		p := worker.NewPool(0, q, newMemTickets(), garages)
		convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
		convey.So(p.Shutdown(context.Background()), convey.ShouldBeNil)
	})
}
