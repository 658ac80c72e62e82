package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/likeforge/likebot/internal/config"
	"github.com/likeforge/likebot/internal/likeapi"
	"github.com/likeforge/likebot/internal/profile"
	"github.com/likeforge/likebot/internal/quota"
	"github.com/likeforge/likebot/internal/shortener"
	"github.com/likeforge/likebot/internal/verification"
)

// Replier sends a reply to a chat message. Implemented by the Telegram transport.
type Replier interface {
	Reply(ctx context.Context, chatID int64, messageID int, text string) error
}

// LinkReplier additionally attaches a verification keyboard to the reply.
// The Telegram transport renders it as inline URL buttons.
type LinkReplier interface {
	Replier
	ReplyWithVerifyLink(ctx context.Context, chatID int64, messageID int, text, verifyURL, howToURL string) error
}

// Request is one inbound chat command, already split into arguments.
type Request struct {
	UserID    int64
	Username  string
	ChatID    int64
	MessageID int
	Args      []string
}

// Handlers translates chat commands into ledger/queue/like-client operations.
type Handlers struct {
	ledger    *quota.Ledger
	profiles  *profile.Service
	queue     *verification.Queue
	likes     *likeapi.Client
	shortener *shortener.Client
	replier   LinkReplier

	tg    config.TelegramConfig
	quota config.QuotaConfig
	links config.LinksConfig
	base  string
	ttl   time.Duration
}

func NewHandlers(
	ledger *quota.Ledger,
	profiles *profile.Service,
	queue *verification.Queue,
	likes *likeapi.Client,
	short *shortener.Client,
	replier LinkReplier,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		ledger:    ledger,
		profiles:  profiles,
		queue:     queue,
		likes:     likes,
		shortener: short,
		replier:   replier,
		tg:        cfg.Telegram,
		quota:     cfg.Quota,
		links:     cfg.Links,
		base:      cfg.Server.PublicBaseURL,
		ttl:       cfg.Verify.TTL,
	}
}

func (h *Handlers) privileged(ctx context.Context, userID int64) bool {
	return h.tg.IsAdmin(userID) || h.profiles.IsVIP(ctx, userID)
}

// Like handles /like <region> <uid>. Privileged users get the like inline;
// everyone else gets a verification link. Quota is only read here; it is
// consumed at fulfillment time.
func (h *Handlers) Like(ctx context.Context, req Request) {
	if err := h.like(ctx, req); err != nil {
		slog.Error("like command failed", "error", err, "user_id", req.UserID)
		h.reply(ctx, req, MsgInternalError)
	}
}

func (h *Handlers) like(ctx context.Context, req Request) error {
	if len(req.Args) < 2 {
		h.reply(ctx, req, MsgLikeUsage)
		return nil
	}
	region := strings.ToLower(req.Args[0])
	uid := req.Args[1]

	if h.privileged(ctx, req.UserID) {
		out := h.likes.SubmitLike(ctx, uid, region)
		if _, ok := out.(likeapi.Success); ok {
			h.profiles.TouchLastUsed(ctx, req.UserID)
		}
		h.reply(ctx, req, FormatOutcome(out, uid))
		return nil
	}

	remaining, _ := h.ledger.Remaining(ctx, req.UserID)
	if remaining <= 0 {
		h.reply(ctx, req, MsgQuotaExceeded)
		return nil
	}

	entry, err := h.queue.Enqueue(ctx, req.UserID, uid, region, req.ChatID, req.MessageID)
	if err != nil {
		return fmt.Errorf("enqueuing verification entry: %w", err)
	}

	link := h.shortener.Shorten(ctx, h.base+"/verify/"+entry.Code)

	username := req.Username
	if username == "" {
		username = "User"
	}
	text := fmt.Sprintf(
		"🔒 *Verification Needed*\n🤵 %s\n🆔 %s\n🌍 %s\nVerify via link below:\n%s\nExpires in %d mins\nVIP: %s",
		username, uid, region, link, int(h.ttl.Minutes()), h.links.VIPAccessURL)

	err = h.replier.ReplyWithVerifyLink(ctx, req.ChatID, req.MessageID, text, link, h.links.HowToVerifyURL)
	if err != nil {
		return fmt.Errorf("sending verification prompt: %w", err)
	}
	return nil
}

// Check handles /check: reports remaining quota, or unlimited status for
// admins and active VIPs.
func (h *Handlers) Check(ctx context.Context, req Request) {
	var text string
	switch {
	case h.tg.IsAdmin(req.UserID):
		text = "👑 *Admin Status*\n\nYou have unlimited requests!"
	case h.profiles.IsVIP(ctx, req.UserID):
		text = "🌟 *VIP Status*\n\nUnlimited requests!"
	default:
		remaining, _ := h.ledger.Remaining(ctx, req.UserID)
		text = fmt.Sprintf(
			"📊 *Your Request Status*\n\n📅 Requests left: %d/%d\n⏳ Resets every %d hours",
			remaining, h.quota.DailyLimit, h.quota.ResetHours)
	}
	h.reply(ctx, req, text)
}

// AddVIP handles /addvip <user_id> <days>. Admin only.
func (h *Handlers) AddVIP(ctx context.Context, req Request) {
	if !h.tg.IsAdmin(req.UserID) {
		h.reply(ctx, req, MsgNotAuthorized)
		return
	}

	if len(req.Args) < 2 {
		h.reply(ctx, req, MsgAddVIPUsage)
		return
	}
	targetID, err := strconv.ParseInt(req.Args[0], 10, 64)
	if err != nil {
		h.reply(ctx, req, MsgAddVIPUsage)
		return
	}
	days, err := strconv.Atoi(req.Args[1])
	if err != nil || days <= 0 {
		h.reply(ctx, req, MsgAddVIPUsage)
		return
	}

	expires, err := h.profiles.GrantVIP(ctx, targetID, days)
	if err != nil {
		slog.Error("addvip failed", "error", err, "target_id", targetID)
		h.reply(ctx, req, MsgInternalError)
		return
	}

	h.reply(ctx, req, fmt.Sprintf("✅ VIP for %d till %s", targetID, expires.UTC().Format("2006-01-02 15:04")))
}

func (h *Handlers) reply(ctx context.Context, req Request, text string) {
	if err := h.replier.Reply(ctx, req.ChatID, req.MessageID, text); err != nil {
		slog.Error("sending reply", "error", err, "chat_id", req.ChatID)
	}
}
