package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Endpoint paths served by the risk backend.
const (
	PathEntities      = "/entities"
	PathAlerts        = "/alert"
	PathThreats       = "/threats"
	PathThreatSummary = "/threat"
)

const maxBodyBytes = 16 << 20

// NetworkError reports a failed fetch: a transport error or a non-2xx status.
type NetworkError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Config configures the backend client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Headers map[string]string
}

// Client fetches raw JSON documents from the risk backend.
type Client struct {
	baseURL string
	headers map[string]string
	client  *http.Client
}

// NewClient creates a backend client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("backend base URL is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: base,
		headers: cfg.Headers,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch GETs path and returns the response body.
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &NetworkError{Endpoint: path, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &NetworkError{Endpoint: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("status %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{Endpoint: path, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// Entities fetches the entity list.
func (c *Client) Entities(ctx context.Context) ([]byte, error) {
	return c.Fetch(ctx, PathEntities)
}

// Alerts fetches the alert list.
func (c *Client) Alerts(ctx context.Context) ([]byte, error) {
	return c.Fetch(ctx, PathAlerts)
}

// Threats fetches the top threat categories.
func (c *Client) Threats(ctx context.Context) ([]byte, error) {
	return c.Fetch(ctx, PathThreats)
}

// ThreatSummary fetches the aggregate threat object.
func (c *Client) ThreatSummary(ctx context.Context) ([]byte, error) {
	return c.Fetch(ctx, PathThreatSummary)
}
