package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/okian/carwise/internal/domain/model"
	"github.com/okian/carwise/pkg/metrics"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS garages (
	id        TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	city      TEXT NOT NULL,
	latitude  REAL NOT NULL,
	longitude REAL NOT NULL,
	rating    REAL NOT NULL,
	record    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS garages_city ON garages (city COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS garages_position ON garages (latitude, longitude);

CREATE TABLE IF NOT EXISTS repair_tickets (
	reference  TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	garage_id  TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	record     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS repair_tickets_status ON repair_tickets (status);
`

// SQLiteStore implements Store on SQLite through database/sql.
type SQLiteStore struct {
	db           *sql.DB
	closed       atomic.Bool
	seed         []model.Garage
	skipSeed     bool
	maxOpenConns int
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the database at path, ensures the schema
// and seeds an empty garage table.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{maxOpenConns: 4}
	for _, opt := range opts {
		opt(s)
	}
	if s.seed == nil && !s.skipSeed {
		garages, err := DefaultGarages()
		if err != nil {
			return nil, err
		}
		s.seed = garages
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	if isMemory(path) {
		// Every connection to a private in-memory database sees its own copy.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(s.maxOpenConns)
	}
	s.db = db

	if _, err := db.ExecContext(ctx, schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if err := s.applySeed(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func isMemory(path string) bool {
	return path == "" || strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory")
}

func (s *SQLiteStore) applySeed(ctx context.Context) error {
	n, err := s.CountGarages(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		for _, g := range s.seed {
			if err := s.UpsertGarage(ctx, g); err != nil {
				return fmt.Errorf("seed garage %s: %w", g.ID, err)
			}
		}
		n = len(s.seed)
	}
	metrics.UpdateGaragesTotal(n)
	return nil
}

func (s *SQLiteStore) check() error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return nil
}

func observe(op string, start time.Time) {
	metrics.RecordRepositoryQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// Garage returns the garage with id.
func (s *SQLiteStore) Garage(ctx context.Context, id string) (model.Garage, error) {
	if err := s.check(); err != nil {
		return model.Garage{}, err
	}
	defer observe("garage", time.Now())

	var record string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM garages WHERE id = ?`, id).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Garage{}, fmt.Errorf("garage %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Garage{}, err
	}
	var g model.Garage
	if err := json.Unmarshal([]byte(record), &g); err != nil {
		return model.Garage{}, fmt.Errorf("unmarshal garage: %w", err)
	}
	return g, nil
}

// SearchGarages returns garages matching q.
func (s *SQLiteStore) SearchGarages(ctx context.Context, q model.GarageQuery) ([]model.GarageMatch, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	defer observe("search_garages", time.Now())

	var args []any
	query := `SELECT record FROM garages WHERE 1=1`
	if city := strings.TrimSpace(q.City); city != "" {
		query += ` AND city = ? COLLATE NOCASE`
		args = append(args, city)
	}
	if q.Near != nil {
		minLat, maxLat, minLng, maxLng := boundingBox(*q.Near, q.RadiusKm)
		query += ` AND latitude BETWEEN ? AND ?`
		args = append(args, minLat, maxLat)
		ranges := lngRanges(minLng, maxLng)
		clauses := make([]string, 0, len(ranges))
		for _, r := range ranges {
			clauses = append(clauses, `longitude BETWEEN ? AND ?`)
			args = append(args, r[0], r[1])
		}
		query += ` AND (` + strings.Join(clauses, ` OR `) + `)`
	}
	query += ` ORDER BY rating DESC, name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	res := make([]model.GarageMatch, 0)
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, err
		}
		var g model.Garage
		if err := json.Unmarshal([]byte(record), &g); err != nil {
			return nil, fmt.Errorf("unmarshal garage: %w", err)
		}
		if q.Service != "" && !g.Offers(q.Service) {
			continue
		}
		m := model.GarageMatch{Garage: g}
		if q.Near != nil {
			d := haversineKm(*q.Near, model.Point{Lat: g.Latitude, Lng: g.Longitude})
			if d > q.RadiusKm {
				continue
			}
			d = math.Round(d*10) / 10
			m.DistanceKm = &d
		}
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if q.Near != nil {
		sort.SliceStable(res, func(i, j int) bool {
			return *res[i].DistanceKm < *res[j].DistanceKm
		})
	}
	if q.Limit > 0 && len(res) > q.Limit {
		res = res[:q.Limit]
	}
	return res, nil
}

// UpsertGarage inserts or replaces g.
func (s *SQLiteStore) UpsertGarage(ctx context.Context, g model.Garage) error {
	if err := s.check(); err != nil {
		return err
	}
	if g.ID == "" {
		return fmt.Errorf("%w: garage without id", ErrInvalidRecord)
	}
	defer observe("upsert_garage", time.Now())

	b, err := json.Marshal(g)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO garages (id, name, city, latitude, longitude, rating, record)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name, city = excluded.city, latitude = excluded.latitude,
		   longitude = excluded.longitude, rating = excluded.rating, record = excluded.record`,
		g.ID, g.Name, g.City, g.Latitude, g.Longitude, g.Rating, string(b))
	return err
}

// CountGarages returns the directory size.
func (s *SQLiteStore) CountGarages(ctx context.Context) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM garages`).Scan(&n)
	return n, err
}

// CreateTicket stores a new ticket.
func (s *SQLiteStore) CreateTicket(ctx context.Context, t model.RepairTicket) error {
	if err := s.check(); err != nil {
		return err
	}
	if t.Reference == "" {
		return fmt.Errorf("%w: ticket without reference", ErrInvalidRecord)
	}
	defer observe("create_ticket", time.Now())

	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO repair_tickets (reference, status, garage_id, created_at, updated_at, record)
		 VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT(reference) DO NOTHING`,
		t.Reference, string(t.Status), t.Request.GarageID, t.CreatedAt.UnixMilli(), t.UpdatedAt.UnixMilli(), string(b))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("ticket %s: %w", t.Reference, ErrDuplicate)
	}
	return nil
}

// UpdateTicket replaces an existing ticket.
func (s *SQLiteStore) UpdateTicket(ctx context.Context, t model.RepairTicket) error {
	if err := s.check(); err != nil {
		return err
	}
	defer observe("update_ticket", time.Now())

	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE repair_tickets SET status = ?, updated_at = ?, record = ? WHERE reference = ?`,
		string(t.Status), t.UpdatedAt.UnixMilli(), string(b), t.Reference)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("ticket %s: %w", t.Reference, ErrNotFound)
	}
	return nil
}

// Ticket returns the ticket with reference.
func (s *SQLiteStore) Ticket(ctx context.Context, reference string) (model.RepairTicket, error) {
	if err := s.check(); err != nil {
		return model.RepairTicket{}, err
	}
	defer observe("ticket", time.Now())

	var record string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM repair_tickets WHERE reference = ?`, reference).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.RepairTicket{}, fmt.Errorf("ticket %s: %w", reference, ErrNotFound)
	}
	if err != nil {
		return model.RepairTicket{}, err
	}
	var t model.RepairTicket
	if err := json.Unmarshal([]byte(record), &t); err != nil {
		return model.RepairTicket{}, fmt.Errorf("unmarshal ticket: %w", err)
	}
	return t, nil
}

// TicketCounts returns the number of tickets per status.
func (s *SQLiteStore) TicketCounts(ctx context.Context) (map[model.TicketStatus]int, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM repair_tickets GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := map[model.TicketStatus]int{
		model.StatusPending: 0,
		model.StatusQuoted:  0,
		model.StatusFailed:  0,
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[model.TicketStatus(status)] = n
	}
	return counts, rows.Err()
}

// Ping checks that the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.db.PingContext(ctx)
}

// Close closes the database. Further calls return ErrStoreClosed.
func (s *SQLiteStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
