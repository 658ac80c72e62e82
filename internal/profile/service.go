package profile

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// IsVIP reports whether the user holds an unexpired VIP grant. A missing
// profile or a store read error both count as not-VIP.
func (s *Service) IsVIP(ctx context.Context, userID int64) bool {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		slog.Warn("profile: read failed, treating as non-VIP", "error", err, "user_id", userID)
		return false
	}
	if p == nil || p.VIPExpires == nil {
		return false
	}
	return s.now().Before(*p.VIPExpires)
}

// GrantVIP extends VIP access for the user by the given number of days from now.
func (s *Service) GrantVIP(ctx context.Context, userID int64, days int) (time.Time, error) {
	if days <= 0 {
		return time.Time{}, fmt.Errorf("vip grant days must be positive, got %d", days)
	}
	expires := s.now().Add(time.Duration(days) * 24 * time.Hour)
	if err := s.repo.SetVIPExpires(ctx, userID, expires); err != nil {
		return time.Time{}, err
	}
	return expires, nil
}

// TouchLastUsed records a successful fulfillment for the user. Failures are
// logged, not surfaced: last_used is bookkeeping, not part of the like flow.
func (s *Service) TouchLastUsed(ctx context.Context, userID int64) {
	if err := s.repo.TouchLastUsed(ctx, userID, s.now()); err != nil {
		slog.Warn("profile: updating last_used failed", "error", err, "user_id", userID)
	}
}
