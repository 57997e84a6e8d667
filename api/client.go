// Package api provides the client for the remote test-execution service.
// In demo mode failed requests are answered from a fixed sample dataset so
// the dashboard stays populated without a live backend.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/flinketl/etldash/model"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:3001"

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// Client talks to the test-execution service.
type Client struct {
	logger   zerolog.Logger
	baseURL  string
	http     *http.Client
	timeout  time.Duration
	demo     bool
	offline  bool
	fallback []model.TestRun
	now      func() time.Time
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for requests. The client is
// used as given; WithTimeout does not change it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithDemoMode enables substitution of fallback data on failed requests.
func WithDemoMode(enabled bool) Option {
	return func(c *Client) {
		c.demo = enabled
	}
}

// WithOffline answers every call from fallback data without touching the
// network. It implies demo mode.
func WithOffline(enabled bool) Option {
	return func(c *Client) {
		c.offline = enabled
		if enabled {
			c.demo = true
		}
	}
}

// WithFallback replaces the sample dataset used in demo mode.
func WithFallback(runs []model.TestRun) Option {
	return func(c *Client) {
		c.fallback = cloneRuns(runs)
	}
}

// WithClock sets the time source used for synthesized runs.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a client for the service at baseURL.
func New(logger zerolog.Logger, baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		logger:   logger,
		baseURL:  strings.TrimRight(baseURL, "/"),
		timeout:  DefaultTimeout,
		fallback: Fallback(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}

	return c
}

// BaseURL returns the service address the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// DemoMode reports whether failures are masked by fallback data.
func (c *Client) DemoMode() bool {
	return c.demo
}

// ListRuns returns all test runs.
func (c *Client) ListRuns(ctx context.Context) ([]model.TestRun, error) {
	if c.offline {
		c.logger.Debug().Msg("Offline mode, using fallback test runs")
		return cloneRuns(c.fallback), nil
	}

	var runs []model.TestRun
	err := c.do(ctx, http.MethodGet, "/test/runs", nil, &runs)
	if err != nil {
		if !c.demo {
			return nil, fmt.Errorf("failed to fetch test runs: %w", err)
		}
		c.logger.Warn().Err(err).Msg("API not available, using fallback test runs")
		return cloneRuns(c.fallback), nil
	}

	return runs, nil
}

// GetRun returns the test run with the given ID. ErrNotFound is returned
// when neither the service nor, in demo mode, the fallback data has it.
func (c *Client) GetRun(ctx context.Context, id string) (model.TestRun, error) {
	if c.offline {
		return c.fallbackRun(id)
	}

	var run model.TestRun
	err := c.do(ctx, http.MethodGet, "/test/runs/"+url.PathEscape(id), nil, &run)
	if err != nil {
		if !c.demo {
			if errors.Is(err, ErrNotFound) {
				return model.TestRun{}, fmt.Errorf("test run %s: %w", id, ErrNotFound)
			}
			return model.TestRun{}, fmt.Errorf("failed to fetch test run %s: %w", id, err)
		}
		c.logger.Warn().Err(err).Str("id", id).Msg("API not available, using fallback test run")
		return c.fallbackRun(id)
	}

	return run, nil
}

// CreateRun starts a new test run. The request is validated before any
// network call is made.
func (c *Client) CreateRun(ctx context.Context, req model.CreateTestRequest) (model.TestRun, error) {
	if err := req.Validate(); err != nil {
		return model.TestRun{}, err
	}

	if c.offline {
		c.logger.Debug().Str("image", req.ImageTag).Msg("Offline mode, synthesizing test run")
		return c.synthesize(req), nil
	}

	var run model.TestRun
	err := c.do(ctx, http.MethodPost, "/test/run", createQuery(req), &run)
	if err != nil {
		if !c.demo {
			return model.TestRun{}, fmt.Errorf("failed to create test run: %w", err)
		}
		c.logger.Warn().Err(err).Str("image", req.ImageTag).Msg("API not available, synthesizing test run")
		return c.synthesize(req), nil
	}

	return run, nil
}

// CreateURL returns the URL a create request is posted to.
func (c *Client) CreateURL(req model.CreateTestRequest) string {
	return c.baseURL + "/test/run?" + createQuery(req).Encode()
}

func createQuery(req model.CreateTestRequest) url.Values {
	q := url.Values{}
	q.Set("image", req.ImageTag)
	q.Set("testName", req.TestName)
	if req.NumberOfMessages > 0 {
		q.Set("numberOfMessages", strconv.Itoa(req.NumberOfMessages))
	}
	return q
}

func (c *Client) fallbackRun(id string) (model.TestRun, error) {
	for _, run := range c.fallback {
		if run.ID == id {
			return run.Clone(), nil
		}
	}
	return model.TestRun{}, fmt.Errorf("test run %s: %w", id, ErrNotFound)
}

// do issues a request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("url", u).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	return nil
}
