package quota

import (
	"context"
	"log/slog"
	"time"

	"github.com/likeforge/likebot/internal/config"
)

// Ledger tracks per-user request quota inside a rolling reset window.
// Admins on the allow-list bypass it entirely.
//
// Remaining and Consume are a read-then-write pair, not a transaction: two
// near-simultaneous consumers of the same user can both observe pre-decrement
// quota. One in-flight request per user is the expected cadence.
type Ledger struct {
	repo   Repository
	admins config.TelegramConfig
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewLedger(repo Repository, tg config.TelegramConfig, qc config.QuotaConfig) *Ledger {
	return &Ledger{
		repo:   repo,
		admins: tg,
		limit:  qc.DailyLimit,
		window: qc.ResetWindow(),
		now:    time.Now,
	}
}

// Limit returns the configured per-window request limit.
func (l *Ledger) Limit() int {
	return l.limit
}

// Remaining returns the requests left for the user and whether the user is
// unbounded (admin). A missing record, a record with no last request, or a
// record older than the reset window all report the full limit. Store read
// errors report the full limit as well (fail open, logged).
func (l *Ledger) Remaining(ctx context.Context, userID int64) (int, bool) {
	if l.admins.IsAdmin(userID) {
		return 0, true
	}

	rec, err := l.repo.Get(ctx, userID)
	if err != nil {
		slog.Warn("quota: read failed, assuming full limit", "error", err, "user_id", userID)
		return l.limit, false
	}
	if rec == nil || rec.LastRequestTime == nil {
		return l.limit, false
	}
	if l.now().Sub(*rec.LastRequestTime) > l.window {
		return l.limit, false
	}
	return rec.RemainingRequests, false
}

// Consume spends one request for the user. Admins always succeed without
// mutation. Returns false when the quota is exhausted or the upsert fails.
func (l *Ledger) Consume(ctx context.Context, userID int64) bool {
	if l.admins.IsAdmin(userID) {
		return true
	}

	remaining, _ := l.Remaining(ctx, userID)
	if remaining <= 0 {
		return false
	}

	now := l.now()
	err := l.repo.Upsert(ctx, &Record{
		UserID:            userID,
		LastRequestTime:   &now,
		RemainingRequests: remaining - 1,
	})
	if err != nil {
		slog.Error("quota: consume failed", "error", err, "user_id", userID)
		return false
	}
	return true
}
