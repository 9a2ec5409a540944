package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/carwise/internal/domain/model"
)

type client struct {
	base string
	http *http.Client
}

func newClient(base string) *client {
	return &client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: requestTimeout},
	}
}

type submission struct {
	Duplicate bool               `json:"duplicate"`
	Ticket    model.RepairTicket `json:"ticket"`
}

func (c *client) health(ctx context.Context) error {
	resp, err := c.get(ctx, "/healthz")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: /healthz returned %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

func (c *client) garages(ctx context.Context) ([]model.Garage, error) {
	resp, err := c.get(ctx, "/api/garages?limit=50")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list garages: status %d", resp.StatusCode)
	}
	var body struct {
		Garages []model.GarageMatch `json:"garages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode garages: %w", err)
	}
	out := make([]model.Garage, 0, len(body.Garages))
	for _, g := range body.Garages {
		out = append(out, g.Garage)
	}
	return out, nil
}

// submit posts req and returns the HTTP status with the decoded body for
// 200 and 202 responses.
func (c *client) submit(ctx context.Context, req model.RepairRequest) (int, submission, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return 0, submission{}, fmt.Errorf("marshal request: %w", err)
	}
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/repair-requests", bytes.NewReader(b))
	if err != nil {
		return 0, submission{}, err
	}
	r.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(r)
	if err != nil {
		return 0, submission{}, err
	}
	defer resp.Body.Close()

	var sub submission
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusAccepted {
		if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
			return resp.StatusCode, sub, fmt.Errorf("decode submission: %w", err)
		}
		return resp.StatusCode, sub, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, sub, nil
}

func (c *client) ticket(ctx context.Context, ref string) (model.RepairTicket, error) {
	resp, err := c.get(ctx, "/api/repair-requests/"+url.PathEscape(ref))
	if err != nil {
		return model.RepairTicket{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.RepairTicket{}, fmt.Errorf("ticket %s: status %d", ref, resp.StatusCode)
	}
	var t model.RepairTicket
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return model.RepairTicket{}, fmt.Errorf("decode ticket: %w", err)
	}
	return t, nil
}

func (c *client) get(ctx context.Context, path string) (*http.Response, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	return c.http.Do(r)
}
