// Package repository persists the garage directory and repair tickets.
package repository

import (
	"context"

	"github.com/okian/carwise/internal/domain/model"
)

// GarageStore reads and writes the garage directory.
type GarageStore interface {
	// Garage returns the garage with id, or ErrNotFound.
	Garage(ctx context.Context, id string) (model.Garage, error)
	// SearchGarages returns garages matching q. With q.Near set, results are
	// limited to q.RadiusKm and ordered by distance; otherwise they are
	// ordered by rating desc, then name.
	SearchGarages(ctx context.Context, q model.GarageQuery) ([]model.GarageMatch, error)
	// UpsertGarage inserts or replaces g.
	UpsertGarage(ctx context.Context, g model.Garage) error
	// CountGarages returns the directory size.
	CountGarages(ctx context.Context) (int, error)
}

// TicketStore reads and writes repair tickets.
type TicketStore interface {
	// CreateTicket stores a new ticket. The reference must be unused.
	CreateTicket(ctx context.Context, t model.RepairTicket) error
	// UpdateTicket replaces an existing ticket, or returns ErrNotFound.
	UpdateTicket(ctx context.Context, t model.RepairTicket) error
	// Ticket returns the ticket with reference, or ErrNotFound.
	Ticket(ctx context.Context, reference string) (model.RepairTicket, error)
	// TicketCounts returns the number of tickets per status.
	TicketCounts(ctx context.Context) (map[model.TicketStatus]int, error)
}

// Store combines both stores with lifecycle methods.
type Store interface {
	GarageStore
	TicketStore
	Ping(ctx context.Context) error
	Close() error
}
