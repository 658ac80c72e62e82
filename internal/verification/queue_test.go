package verification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is an in-memory Repository keyed by code.
type fakeRepo struct {
	entries map[string]*Entry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: make(map[string]*Entry)}
}

func (f *fakeRepo) Insert(_ context.Context, e *Entry) error {
	cp := *e
	f.entries[e.Code] = &cp
	return nil
}

func (f *fakeRepo) GetByCode(_ context.Context, code string) (*Entry, error) {
	e, ok := f.entries[code]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (f *fakeRepo) MarkVerified(_ context.Context, code string) (bool, error) {
	e, ok := f.entries[code]
	if !ok || e.Verified {
		return false, nil
	}
	now := time.Now()
	e.Verified = true
	e.VerifiedAt = &now
	return true, nil
}

func (f *fakeRepo) ListVerifiedUnprocessed(_ context.Context) ([]Entry, error) {
	var out []Entry
	for _, e := range f.entries {
		if e.Verified && !e.Processed {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkProcessed(_ context.Context, id uuid.UUID) error {
	for _, e := range f.entries {
		if e.ID == id {
			e.Processed = true
		}
	}
	return nil
}

func TestQueue_EnqueueCreatesPendingEntry(t *testing.T) {
	repo := newFakeRepo()
	q := NewQueue(repo, nil, 10*time.Minute)
	ctx := context.Background()

	before := time.Now()
	e, err := q.Enqueue(ctx, 100, "12345", "ind", 42, 7)
	require.NoError(t, err)

	assert.Equal(t, int64(100), e.UserID)
	assert.Equal(t, "12345", e.UID)
	assert.Equal(t, "ind", e.Region)
	assert.Equal(t, int64(42), e.ChatID)
	assert.Equal(t, 7, e.MessageID)
	assert.False(t, e.Verified)
	assert.False(t, e.Processed)
	assert.Len(t, e.Code, CodeLength)
	assert.WithinDuration(t, before.Add(10*time.Minute), e.ExpiresAt, 5*time.Second)

	stored, err := repo.GetByCode(ctx, e.Code)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, e.ID, stored.ID)
}

func TestQueue_EnqueueGeneratesDistinctCodes(t *testing.T) {
	q := NewQueue(newFakeRepo(), nil, 10*time.Minute)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		e, err := q.Enqueue(ctx, int64(i), "1", "ind", 1, 1)
		require.NoError(t, err)
		assert.False(t, seen[e.Code], "duplicate code %s", e.Code)
		seen[e.Code] = true
	}
}

func TestQueue_VerifyFlipsOnce(t *testing.T) {
	repo := newFakeRepo()
	q := NewQueue(repo, nil, 10*time.Minute)
	ctx := context.Background()

	e, err := q.Enqueue(ctx, 100, "12345", "ind", 42, 7)
	require.NoError(t, err)

	result, err := q.Verify(ctx, e.Code)
	require.NoError(t, err)
	assert.Equal(t, VerifySuccess, result)

	stored, _ := repo.GetByCode(ctx, e.Code)
	assert.True(t, stored.Verified)
	assert.NotNil(t, stored.VerifiedAt)
	assert.False(t, stored.Processed)

	// Second redemption is a no-op
	result, err = q.Verify(ctx, e.Code)
	require.NoError(t, err)
	assert.Equal(t, VerifyAlreadyUsed, result)

	again, _ := repo.GetByCode(ctx, e.Code)
	assert.True(t, again.Verified)
	assert.Equal(t, stored.VerifiedAt, again.VerifiedAt)
}

func TestQueue_VerifyUnknownCode(t *testing.T) {
	q := NewQueue(newFakeRepo(), nil, 10*time.Minute)

	result, err := q.Verify(context.Background(), "nosuchcode00")
	require.NoError(t, err)
	assert.Equal(t, VerifyNotFound, result)
}

func TestQueue_VerifyExpiredCode(t *testing.T) {
	repo := newFakeRepo()
	q := NewQueue(repo, nil, 10*time.Minute)
	ctx := context.Background()

	e, err := q.Enqueue(ctx, 100, "12345", "ind", 42, 7)
	require.NoError(t, err)

	q.now = func() time.Time { return time.Now().Add(11 * time.Minute) }

	result, err := q.Verify(ctx, e.Code)
	require.NoError(t, err)
	assert.Equal(t, VerifyExpired, result)

	stored, _ := repo.GetByCode(ctx, e.Code)
	assert.False(t, stored.Verified)
}

func TestQueue_LifecycleNeverSkipsProcessed(t *testing.T) {
	repo := newFakeRepo()
	q := NewQueue(repo, nil, 10*time.Minute)
	ctx := context.Background()

	e, err := q.Enqueue(ctx, 100, "12345", "ind", 42, 7)
	require.NoError(t, err)

	// Unverified entries are never polled
	pending, err := q.PollVerifiedUnprocessed(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = q.Verify(ctx, e.Code)
	require.NoError(t, err)

	pending, err = q.PollVerifiedUnprocessed(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, e.ID, pending[0].ID)

	require.NoError(t, q.MarkProcessed(ctx, e.ID))

	pending, err = q.PollVerifiedUnprocessed(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// MarkProcessed is idempotent
	require.NoError(t, q.MarkProcessed(ctx, e.ID))
}

func TestGenerateCode_Charset(t *testing.T) {
	code, err := generateCode()
	require.NoError(t, err)
	require.Len(t, code, CodeLength)
	for _, r := range code {
		assert.Contains(t, codeAlphabet, string(r))
	}
}
