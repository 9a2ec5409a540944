package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/carwise/internal/domain/model"
	"github.com/okian/carwise/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const directoryPermission = 0o750

// Run submits cfg.Requests repair requests to the server at cfg.BaseURL,
// waits for the resulting tickets to be quoted or failed, and verifies that
// replayed request_ids never produced a second ticket.
func Run(ctx context.Context, cfg Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	log := logger.Get().Named("loadtest")
	log.Info(ctx, "starting repair request load test",
		logger.String("base_url", cfg.BaseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", cfg.Workers),
		logger.Float64("replay_ratio", cfg.ReplayRatio),
		logger.String("timeout", cfg.Timeout.String()))

	rep := Report{StartTime: time.Now()}
	c := newClient(cfg.BaseURL)

	if err := c.health(ctx); err != nil {
		return rep, fmt.Errorf("health check: %w", err)
	}
	garages, err := c.garages(ctx)
	if err != nil {
		return rep, err
	}
	if len(garages) == 0 {
		return rep, ErrNoGarages
	}

	reqs := generateRequests(cfg.Requests, garages, cfg.ReplayRatio, cfg.Seed, rep.StartTime)
	rep.Generated = len(reqs)
	rep.UniqueIDs = countIDs(reqs)

	tickets := submitAll(ctx, cfg, c, reqs, &rep)
	rep.Tickets = tickets

	if err := waitForSettled(ctx, cfg, c, tickets, &rep); err != nil {
		log.Warn(ctx, "stopped waiting for tickets", logger.Error(err))
	}

	rep.EndTime = time.Now()
	rep.Duration = rep.EndTime.Sub(rep.StartTime)
	if secs := rep.Duration.Seconds(); secs > 0 {
		rep.Throughput = float64(rep.Generated) / secs
	}

	if cfg.OutputFile != "" {
		if err := saveReport(cfg.OutputFile, rep); err != nil {
			log.Warn(ctx, "failed to save report", logger.String("file", cfg.OutputFile), logger.Error(err))
		}
	}
	logReport(ctx, log, rep, cfg.Verbose)

	return rep, verify(rep)
}

func countIDs(reqs []model.RepairRequest) int {
	seen := make(map[string]struct{}, len(reqs))
	for _, r := range reqs {
		seen[r.RequestID] = struct{}{}
	}
	return len(seen)
}

// submitAll posts reqs with at most cfg.Workers in flight and returns the
// references seen per request_id.
func submitAll(ctx context.Context, cfg Config, c *client, reqs []model.RepairRequest, rep *Report) map[string][]string {
	var (
		accepted, duplicate, conflict, rejected, failed, done atomic.Int64

		mu   sync.Mutex
		refs = make(map[string]map[string]struct{})
	)
	log := logger.Get().Named("loadtest")

	g := new(errgroup.Group)
	g.SetLimit(cfg.Workers)
	for _, req := range reqs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			status, sub, err := c.submit(ctx, req)
			switch {
			case err != nil:
				failed.Add(1)
				if cfg.Verbose {
					log.Warn(ctx, "submit failed", logger.String("request_id", req.RequestID), logger.Error(err))
				}
			case status == http.StatusAccepted:
				accepted.Add(1)
			case status == http.StatusOK:
				duplicate.Add(1)
			case status == http.StatusConflict:
				conflict.Add(1)
			case status == http.StatusTooManyRequests:
				rejected.Add(1)
			default:
				failed.Add(1)
			}
			if err == nil && sub.Ticket.Reference != "" {
				mu.Lock()
				if refs[req.RequestID] == nil {
					refs[req.RequestID] = make(map[string]struct{})
				}
				refs[req.RequestID][sub.Ticket.Reference] = struct{}{}
				mu.Unlock()
			}
			if n := done.Add(1); n%progressEvery == 0 {
				log.Info(ctx, "submission progress",
					logger.Int("done", int(n)),
					logger.Int("total", len(reqs)))
			}
			return nil
		})
	}
	_ = g.Wait()

	rep.Accepted = int(accepted.Load())
	rep.Duplicate = int(duplicate.Load())
	rep.Conflict = int(conflict.Load())
	rep.Rejected = int(rejected.Load())
	rep.Failed = int(failed.Load())

	out := make(map[string][]string, len(refs))
	for id, set := range refs {
		for ref := range set {
			out[id] = append(out[id], ref)
		}
	}
	return out
}

// waitForSettled polls every ticket until it leaves pending or ctx expires.
func waitForSettled(ctx context.Context, cfg Config, c *client, tickets map[string][]string, rep *Report) error {
	pending := make(map[string]struct{})
	for _, rs := range tickets {
		for _, ref := range rs {
			pending[ref] = struct{}{}
		}
	}

	var quoted, failed atomic.Int64
	defer func() {
		rep.Quoted = int(quoted.Load())
		rep.QuoteFail = int(failed.Load())
		rep.Unsettled = len(pending)
	}()

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	for len(pending) > 0 {
		var (
			mu      sync.Mutex
			settled []string
		)
		g := new(errgroup.Group)
		g.SetLimit(cfg.Workers)
		for ref := range pending {
			g.Go(func() error {
				t, err := c.ticket(ctx, ref)
				if err != nil || t.Status == model.StatusPending {
					return nil
				}
				if t.Status == model.StatusQuoted {
					quoted.Add(1)
				} else {
					failed.Add(1)
				}
				mu.Lock()
				settled = append(settled, ref)
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
		for _, ref := range settled {
			delete(pending, ref)
		}
		if len(pending) == 0 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func saveReport(path string, rep Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, b, 0o600)
}

func logReport(ctx context.Context, log logger.Logger, rep Report, verbose bool) {
	log.Info(ctx, "load test finished",
		logger.Int("generated", rep.Generated),
		logger.Int("unique_request_ids", rep.UniqueIDs),
		logger.Int("accepted", rep.Accepted),
		logger.Int("duplicate", rep.Duplicate),
		logger.Int("conflict", rep.Conflict),
		logger.Int("rejected", rep.Rejected),
		logger.Int("failed", rep.Failed),
		logger.Int("quoted", rep.Quoted),
		logger.Int("quote_failed", rep.QuoteFail),
		logger.Int("unsettled", rep.Unsettled),
		logger.String("duration", rep.Duration.String()),
		logger.Float64("requests_per_second", rep.Throughput))
	if !verbose {
		return
	}
	for id, refs := range rep.Tickets {
		log.Debug(ctx, "ticket", logger.String("request_id", id), logger.Any("references", refs))
	}
}
