package shortener

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Client shortens verification links. Shortening is strictly best-effort:
// every failure falls back to the original URL, so callers always receive a
// usable link and never an error.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		timeout:    timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type shortenResponse struct {
	ShortenedURL string `json:"shortenedUrl"`
}

// Shorten returns a shortened form of longURL, or longURL unchanged on any
// failure. An empty API key skips the upstream call entirely.
func (c *Client) Shorten(ctx context.Context, longURL string) string {
	if c.apiKey == "" {
		return longURL
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/api?api=" + url.QueryEscape(c.apiKey) + "&url=" + url.QueryEscape(longURL)

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		slog.Warn("shortener: creating request", "error", err)
		return longURL
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("shortener: request failed, using long url", "error", err)
		return longURL
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("shortener: unexpected status, using long url", "status", resp.StatusCode)
		return longURL
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		slog.Warn("shortener: reading response, using long url", "error", err)
		return longURL
	}

	var sr shortenResponse
	if err := json.Unmarshal(body, &sr); err != nil || sr.ShortenedURL == "" {
		slog.Warn("shortener: malformed response, using long url", "error", err)
		return longURL
	}
	return sr.ShortenedURL
}
