package fulfillment

import (
	"context"
	"log/slog"
	"time"

	"github.com/likeforge/likebot/internal/commands"
	"github.com/likeforge/likebot/internal/config"
	"github.com/likeforge/likebot/internal/events"
	"github.com/likeforge/likebot/internal/likeapi"
	"github.com/likeforge/likebot/internal/metrics"
	"github.com/likeforge/likebot/internal/profile"
	"github.com/likeforge/likebot/internal/quota"
	"github.com/likeforge/likebot/internal/verification"
)

// Deliverer sends a message to the chat coordinates stored on a verification
// entry. Implemented by the Telegram transport.
type Deliverer interface {
	Reply(ctx context.Context, chatID int64, messageID int, text string) error
}

// Loop drains verified-but-unprocessed verification entries: it re-checks
// quota, calls the like API once per entry, reports the outcome back to the
// originating chat, and marks the entry processed.
//
// Exactly one Loop instance must run per deployment. The poll query takes no
// locks, so two concurrent loops would double-process entries.
type Loop struct {
	queue     *verification.Queue
	ledger    *quota.Ledger
	profiles  *profile.Service
	likes     *likeapi.Client
	deliverer Deliverer
	publisher *events.Publisher
	tg        config.TelegramConfig

	pollInterval time.Duration
	errorBackoff time.Duration
}

func NewLoop(
	queue *verification.Queue,
	ledger *quota.Ledger,
	profiles *profile.Service,
	likes *likeapi.Client,
	deliverer Deliverer,
	publisher *events.Publisher,
	cfg *config.Config,
) *Loop {
	return &Loop{
		queue:        queue,
		ledger:       ledger,
		profiles:     profiles,
		likes:        likes,
		deliverer:    deliverer,
		publisher:    publisher,
		tg:           cfg.Telegram,
		pollInterval: cfg.Fulfill.PollInterval,
		errorBackoff: cfg.Fulfill.ErrorBackoff,
	}
}

// Start runs the loop until ctx is cancelled. A failed cycle is logged and
// retried after the error backoff; the loop itself never terminates on error.
func (l *Loop) Start(ctx context.Context) {
	slog.Info("fulfillment loop started",
		"poll_interval", l.pollInterval, "error_backoff", l.errorBackoff)

	for {
		sleep := l.pollInterval
		if err := l.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				slog.Info("fulfillment loop stopped")
				return
			}
			slog.Error("fulfillment cycle failed", "error", err)
			sleep = l.errorBackoff
		}

		select {
		case <-ctx.Done():
			slog.Info("fulfillment loop stopped")
			return
		case <-time.After(sleep):
		}
	}
}

func (l *Loop) runCycle(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.FulfillmentCycleDuration.Observe(time.Since(start).Seconds())
	}()

	entries, err := l.queue.PollVerifiedUnprocessed(ctx)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// One bad entry must not abort the batch.
		l.processEntry(ctx, entry)
	}
	return nil
}

// processEntry takes one entry to a terminal state: a reply is attempted and
// the entry is marked processed whatever the like API said.
func (l *Loop) processEntry(ctx context.Context, entry verification.Entry) {
	privileged := l.tg.IsAdmin(entry.UserID) || l.profiles.IsVIP(ctx, entry.UserID)

	if !privileged && !l.ledger.Consume(ctx, entry.UserID) {
		l.finish(ctx, entry, "quota_denied", commands.MsgQuotaExceeded)
		return
	}

	out := l.likes.SubmitLike(ctx, entry.UID, entry.Region)
	if _, ok := out.(likeapi.Success); ok {
		l.profiles.TouchLastUsed(ctx, entry.UserID)
	}

	l.finish(ctx, entry, out.Label(), commands.FormatOutcome(out, entry.UID))
}

// finish delivers the terminal message, marks the entry processed and emits
// the fulfillment event. Processed means "a reply was attempted", so the flag
// is set even when delivery fails.
func (l *Loop) finish(ctx context.Context, entry verification.Entry, outcome, text string) {
	if err := l.deliverer.Reply(ctx, entry.ChatID, entry.MessageID, text); err != nil {
		slog.Error("fulfillment: delivering reply", "error", err,
			"entry_id", entry.ID, "chat_id", entry.ChatID)
	}

	if err := l.queue.MarkProcessed(ctx, entry.ID); err != nil {
		// The entry stays unprocessed and will be retried next cycle; the
		// user may receive a duplicate reply. At-most-once is best effort.
		slog.Error("fulfillment: marking processed", "error", err, "entry_id", entry.ID)
		return
	}

	metrics.FulfillmentsTotal.WithLabelValues(outcome).Inc()

	if err := l.publisher.PublishFulfillment(ctx, events.FulfillmentEvent{
		EntryID:   entry.ID,
		UserID:    entry.UserID,
		UID:       entry.UID,
		Region:    entry.Region,
		Outcome:   outcome,
		Timestamp: time.Now(),
	}); err != nil {
		slog.Warn("fulfillment: publishing event", "error", err, "entry_id", entry.ID)
	}

	slog.Info("fulfillment: entry processed",
		"entry_id", entry.ID, "user_id", entry.UserID, "uid", entry.UID, "outcome", outcome)
}
