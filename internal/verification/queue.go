package verification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/likeforge/likebot/internal/events"
	"github.com/likeforge/likebot/internal/metrics"
)

// Queue holds like-requests awaiting human verification.
type Queue struct {
	repo      Repository
	publisher *events.Publisher
	ttl       time.Duration
	now       func() time.Time
}

func NewQueue(repo Repository, publisher *events.Publisher, ttl time.Duration) *Queue {
	return &Queue{
		repo:      repo,
		publisher: publisher,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Enqueue creates a pending entry keyed by a fresh one-time code.
func (q *Queue) Enqueue(ctx context.Context, userID int64, uid, region string, chatID int64, messageID int) (*Entry, error) {
	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("generating verification code: %w", err)
	}

	now := q.now()
	e := &Entry{
		ID:        uuid.New(),
		UserID:    userID,
		UID:       uid,
		Region:    region,
		Code:      code,
		ExpiresAt: now.Add(q.ttl),
		ChatID:    chatID,
		MessageID: messageID,
		CreatedAt: now,
	}
	if err := q.repo.Insert(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Verify redeems a code. The flip is guarded by the repository's
// verified=false condition, so a second redemption reports AlreadyUsed
// without touching the row. Codes past their expiry are refused.
func (q *Queue) Verify(ctx context.Context, code string) (VerifyResult, error) {
	e, err := q.repo.GetByCode(ctx, code)
	if err != nil {
		return VerifyNotFound, err
	}

	var result VerifyResult
	switch {
	case e == nil:
		result = VerifyNotFound
	case e.Verified:
		result = VerifyAlreadyUsed
	case q.now().After(e.ExpiresAt):
		result = VerifyExpired
	default:
		flipped, err := q.repo.MarkVerified(ctx, code)
		if err != nil {
			return VerifyNotFound, err
		}
		if flipped {
			result = VerifySuccess
		} else {
			// Lost the race to a concurrent redemption.
			result = VerifyAlreadyUsed
		}
	}

	metrics.VerificationsTotal.WithLabelValues(result.String()).Inc()
	if err := q.publisher.PublishVerification(ctx, events.VerificationEvent{
		Code:      code,
		Result:    result.String(),
		Timestamp: q.now(),
	}); err != nil {
		slog.Warn("verification: publishing event", "error", err)
	}
	return result, nil
}

// PollVerifiedUnprocessed returns entries ready for fulfillment in arrival order.
func (q *Queue) PollVerifiedUnprocessed(ctx context.Context) ([]Entry, error) {
	return q.repo.ListVerifiedUnprocessed(ctx)
}

// MarkProcessed flags an entry as terminally handled. Idempotent.
func (q *Queue) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return q.repo.MarkProcessed(ctx, id)
}
