package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	if c.Telegram.BotToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}

	if c.Server.PublicBaseURL == "" {
		errs = append(errs, "PUBLIC_BASE_URL is required for verification links")
	} else if !strings.HasPrefix(c.Server.PublicBaseURL, "http://") && !strings.HasPrefix(c.Server.PublicBaseURL, "https://") {
		errs = append(errs, "PUBLIC_BASE_URL must start with http:// or https://")
	}

	if c.LikeAPI.URLTemplate == "" {
		errs = append(errs, "LIKE_API_URL is required")
	} else {
		if !strings.Contains(c.LikeAPI.URLTemplate, "{uid}") {
			errs = append(errs, "LIKE_API_URL must contain a {uid} placeholder")
		}
		if !strings.Contains(c.LikeAPI.URLTemplate, "{region}") {
			errs = append(errs, "LIKE_API_URL must contain a {region} placeholder")
		}
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}

	if c.Quota.DailyLimit < 1 {
		errs = append(errs, fmt.Sprintf("QUOTA_DAILY_LIMIT must be positive, got %d", c.Quota.DailyLimit))
	}
	if c.Quota.ResetHours < 1 {
		errs = append(errs, fmt.Sprintf("QUOTA_RESET_HOURS must be positive, got %d", c.Quota.ResetHours))
	}
	if c.Verify.TTL <= 0 {
		errs = append(errs, "VERIFY_TTL must be positive")
	}
	if c.Fulfill.PollInterval <= 0 {
		errs = append(errs, "FULFILL_POLL_INTERVAL must be positive")
	}

	// Soft warnings: the bot works without these, degraded
	if len(c.Telegram.AdminIDs) == 0 {
		slog.Warn("ADMIN_IDS is empty, no admin commands will be accepted")
	}
	if c.Shortener.APIKey == "" {
		slog.Warn("SHORTENER_API_KEY is empty, verification links are sent unshortened")
	}
	if c.NATS.URL == "" {
		slog.Warn("NATS_URL is empty, fulfillment events and audit trail are disabled")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
