package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedServer(t *testing.T, maxReqs, windowSec int) *httptest.Server {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	rl := NewRateLimiter(client, maxReqs, windowSec)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func doGet(t *testing.T, srv *httptest.Server, xff string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/verify/abc", nil)
	require.NoError(t, err)
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	srv := newLimitedServer(t, 3, 60)

	for i := 0; i < 3; i++ {
		resp := doGet(t, srv, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode, "request %d should pass", i+1)
	}

	resp := doGet(t, srv, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
}

func TestRateLimiter_LimitsPerIP(t *testing.T) {
	srv := newLimitedServer(t, 1, 60)

	resp := doGet(t, srv, "10.0.0.1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doGet(t, srv, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// A different client is unaffected
	resp = doGet(t, srv, "10.0.0.2")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimiter_FailsOpenOnRedisError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	rl := NewRateLimiter(client, 1, 60)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	mr.Close()

	resp := doGet(t, srv, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(r *http.Request)
		expect string
	}{
		{
			name:   "remote addr",
			setup:  func(r *http.Request) { r.RemoteAddr = "192.168.1.5:1234" },
			expect: "192.168.1.5",
		},
		{
			name: "x-forwarded-for single",
			setup: func(r *http.Request) {
				r.Header.Set("X-Forwarded-For", "10.0.0.9")
			},
			expect: "10.0.0.9",
		},
		{
			name: "x-forwarded-for chain takes first",
			setup: func(r *http.Request) {
				r.Header.Set("X-Forwarded-For", "10.0.0.9,172.16.0.1")
			},
			expect: "10.0.0.9",
		},
		{
			name: "x-real-ip",
			setup: func(r *http.Request) {
				r.Header.Set("X-Real-IP", "10.0.0.7")
			},
			expect: "10.0.0.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(r)
			assert.Equal(t, tt.expect, clientIP(r))
		})
	}
}
