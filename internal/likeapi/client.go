package likeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/likeforge/likebot/internal/metrics"
)

// Client is an HTTP client for the third-party like-granting API. Each call is
// a single best-effort attempt; retry policy belongs to the caller.
type Client struct {
	httpClient  *http.Client
	urlTemplate string
	timeout     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a like API client. urlTemplate must contain {uid} and
// {region} placeholders.
func NewClient(urlTemplate string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		urlTemplate: urlTemplate,
		timeout:     timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResponse is the upstream JSON body. Field names are the upstream's, not ours.
type apiResponse struct {
	Status      int    `json:"status"`
	Nickname    string `json:"PlayerNickname"`
	LikesBefore int    `json:"LikesbeforeCommand"`
	LikesAfter  int    `json:"LikesafterCommand"`
	LikesAdded  int    `json:"LikesGivenByAPI"`
}

// SubmitLike calls the like API for the given target account. It never returns
// an error: every failure mode is normalized into an Outcome variant.
func (c *Client) SubmitLike(ctx context.Context, uid, region string) Outcome {
	out := c.submit(ctx, uid, region)
	metrics.LikeRequestsTotal.WithLabelValues(out.Label()).Inc()
	return out
}

func (c *Client) submit(ctx context.Context, uid, region string) Outcome {
	url := strings.NewReplacer("{uid}", uid, "{region}", region).Replace(c.urlTemplate)

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return TransportError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TransportError{Err: fmt.Errorf("calling like api: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return TransportError{Err: fmt.Errorf("like api returned HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return TransportError{Err: fmt.Errorf("reading response body: %w", err)}
	}

	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return TransportError{Err: fmt.Errorf("decoding response body: %w", err)}
	}

	switch api.Status {
	case 1:
		nickname := api.Nickname
		if nickname == "" {
			nickname = "Unknown"
		}
		return Success{
			Nickname:    nickname,
			LikesBefore: api.LikesBefore,
			LikesAfter:  api.LikesAfter,
			LikesAdded:  api.LikesAdded,
		}
	case 2:
		return AlreadyMaxed{}
	default:
		return APIError{Status: api.Status}
	}
}
