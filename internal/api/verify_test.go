package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/likeforge/likebot/internal/verification"
)

type verifRepo struct {
	entries []*verification.Entry
	getErr  error
}

func (f *verifRepo) Insert(_ context.Context, e *verification.Entry) error {
	cp := *e
	f.entries = append(f.entries, &cp)
	return nil
}

func (f *verifRepo) GetByCode(_ context.Context, code string) (*verification.Entry, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, e := range f.entries {
		if e.Code == code {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *verifRepo) MarkVerified(_ context.Context, code string) (bool, error) {
	for _, e := range f.entries {
		if e.Code == code && !e.Verified {
			now := time.Now()
			e.Verified = true
			e.VerifiedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (f *verifRepo) ListVerifiedUnprocessed(_ context.Context) ([]verification.Entry, error) {
	return nil, nil
}

func (f *verifRepo) MarkProcessed(_ context.Context, id uuid.UUID) error {
	return nil
}

func newServer(repo *verifRepo) *httptest.Server {
	handler := NewVerifyHandler(verification.NewQueue(repo, nil, 10*time.Minute))
	r := chi.NewRouter()
	r.Get("/verify/{code}", handler.Verify)
	return httptest.NewServer(r)
}

func get(t *testing.T, srv *httptest.Server, code string) (int, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + "/verify/" + code)
	require.NoError(t, err)
	defer resp.Body.Close()

	buf := make([]byte, 1024)
	n, _ := resp.Body.Read(buf)
	return resp.StatusCode, string(buf[:n])
}

func pendingEntry(code string) *verification.Entry {
	return &verification.Entry{
		ID:        uuid.New(),
		UserID:    100,
		UID:       "12345",
		Region:    "ind",
		Code:      code,
		ExpiresAt: time.Now().Add(10 * time.Minute),
		CreatedAt: time.Now(),
	}
}

func TestVerify_Success(t *testing.T) {
	repo := &verifRepo{entries: []*verification.Entry{pendingEntry("abcDEF123456")}}
	srv := newServer(repo)
	defer srv.Close()

	status, body := get(t, srv, "abcDEF123456")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, pageSuccess, body)
	assert.True(t, repo.entries[0].Verified)
}

func TestVerify_SecondVisitGetsFailurePage(t *testing.T) {
	repo := &verifRepo{entries: []*verification.Entry{pendingEntry("abcDEF123456")}}
	srv := newServer(repo)
	defer srv.Close()

	status, _ := get(t, srv, "abcDEF123456")
	require.Equal(t, http.StatusOK, status)

	status, body := get(t, srv, "abcDEF123456")
	assert.Equal(t, http.StatusGone, status)
	assert.Equal(t, pageFailure, body)
}

func TestVerify_UnknownCode(t *testing.T) {
	srv := newServer(&verifRepo{})
	defer srv.Close()

	status, body := get(t, srv, "nosuchcode00")

	assert.Equal(t, http.StatusGone, status)
	assert.Equal(t, pageFailure, body)
}

func TestVerify_ExpiredCodeGetsSamePageAsUsed(t *testing.T) {
	entry := pendingEntry("abcDEF123456")
	entry.ExpiresAt = time.Now().Add(-time.Minute)
	repo := &verifRepo{entries: []*verification.Entry{entry}}
	srv := newServer(repo)
	defer srv.Close()

	status, body := get(t, srv, "abcDEF123456")

	assert.Equal(t, http.StatusGone, status)
	assert.Equal(t, pageFailure, body)
	assert.False(t, repo.entries[0].Verified, "expired entry must not be flipped")
}

func TestVerify_StoreErrorReturns500(t *testing.T) {
	srv := newServer(&verifRepo{getErr: errors.New("db down")})
	defer srv.Close()

	status, body := get(t, srv, "abcDEF123456")

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, pageError, body)
}
