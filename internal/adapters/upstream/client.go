// Package upstream calls the external car-service API for live diagnoses and
// catalog data.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/carwise/internal/domain/catalog"
	"github.com/okian/carwise/internal/domain/diagnosis"
	"github.com/okian/carwise/pkg/metrics"
)

const (
	defaultTimeout  = 5 * time.Second
	maxResponseSize = 1 << 20
)

// Client talks to the upstream API.
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a client for baseURL. An empty baseURL yields ErrNotConfigured.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, ErrNotConfigured
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: bad base url %q", ErrNotConfigured, baseURL)
	}
	c := &Client{
		base: u,
		http: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured upstream address.
func (c *Client) BaseURL() string {
	return c.base.String()
}

type diagnoseResponse struct {
	Diagnosis *diagnosis.Diagnosis `json:"diagnosis"`
}

// Diagnose requests a live diagnosis.
func (c *Client) Diagnose(ctx context.Context, req diagnosis.Request) (diagnosis.Diagnosis, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return diagnosis.Diagnosis{}, err
	}
	var out diagnoseResponse
	if err := c.do(ctx, http.MethodPost, "/api/diagnose", body, &out); err != nil {
		return diagnosis.Diagnosis{}, err
	}
	if out.Diagnosis == nil || strings.TrimSpace(out.Diagnosis.Analysis) == "" {
		return diagnosis.Diagnosis{}, fmt.Errorf("%w: missing analysis", ErrInvalidResponse)
	}
	d := *out.Diagnosis
	if d.References == nil {
		d.References = []string{}
	}
	if d.Categories == nil {
		d.Categories = diagnosis.Classify(req.Symptoms)
	}
	if d.EstimatedCost.Currency == "" {
		d.EstimatedCost.Currency = diagnosis.Currency
	}
	return d, nil
}

// CarData fetches the upstream catalog, normalised to brand to models.
func (c *Client) CarData(ctx context.Context) (map[string][]string, error) {
	var raw map[string]any
	if err := c.do(ctx, http.MethodGet, "/api/car-data", nil, &raw); err != nil {
		return nil, err
	}
	return catalog.Normalize(raw), nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	start := time.Now()
	defer func() {
		metrics.RecordUpstreamLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordErrorByComponent("upstream", "unavailable")
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordErrorByComponent("upstream", "status")
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return fmt.Errorf("%w: %s %s: %d", ErrUpstreamStatus, method, path, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out); err != nil {
		metrics.RecordErrorByComponent("upstream", "decode")
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
