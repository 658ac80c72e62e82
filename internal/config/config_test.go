package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "disable", cfg.DB.SSLMode)
	assert.Equal(t, "migrations", cfg.DB.MigrationsPath)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 1, cfg.Quota.DailyLimit)
	assert.Equal(t, 20, cfg.Quota.ResetHours)
	assert.Equal(t, 20*time.Hour, cfg.Quota.ResetWindow())
	assert.Equal(t, 10*time.Minute, cfg.Verify.TTL)
	assert.Equal(t, 30, cfg.Verify.RateLimitMax)
	assert.Equal(t, 5*time.Second, cfg.Fulfill.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.Fulfill.ErrorBackoff)
	assert.Equal(t, 10*time.Second, cfg.LikeAPI.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("PUBLIC_BASE_URL", "https://bot.example.com/")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("ADMIN_IDS", "111, 222,333")
	t.Setenv("QUOTA_DAILY_LIMIT", "3")
	t.Setenv("VERIFY_TTL", "5m")
	t.Setenv("FULFILL_POLL_INTERVAL", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, "https://bot.example.com", cfg.Server.PublicBaseURL, "trailing slash is stripped")
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []int64{111, 222, 333}, cfg.Telegram.AdminIDs)
	assert.Equal(t, 3, cfg.Quota.DailyLimit)
	assert.Equal(t, 5*time.Minute, cfg.Verify.TTL)
	assert.Equal(t, 2*time.Second, cfg.Fulfill.PollInterval)
}

func TestLoad_BadAdminIDs(t *testing.T) {
	t.Setenv("ADMIN_IDS", "111,notanumber")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin id")
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("VERIFY_TTL", "tenminutes")

	_, err := Load()
	require.Error(t, err)
}

func TestParseAdminIDs(t *testing.T) {
	ids, err := parseAdminIDs("")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = parseAdminIDs("1,,2, 3 ,")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestIsAdmin(t *testing.T) {
	tg := TelegramConfig{AdminIDs: []int64{111, 222}}
	assert.True(t, tg.IsAdmin(111))
	assert.False(t, tg.IsAdmin(333))
}

func TestDSNAndAddr(t *testing.T) {
	db := DBConfig{Host: "dbhost", Port: 5433, User: "u", Password: "p", Name: "likebot", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@dbhost:5433/likebot?sslmode=disable", db.DSN())

	r := RedisConfig{Host: "redishost", Port: 6380}
	assert.Equal(t, "redishost:6380", r.Addr())
}

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{BotToken: "123:abc", AdminIDs: []int64{1}},
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8080, PublicBaseURL: "https://bot.example.com"},
		DB:       DBConfig{Host: "localhost", Port: 5432, Password: "secret"},
		Redis:    RedisConfig{Host: "localhost", Port: 6379},
		LikeAPI:  LikeAPIConfig{URLTemplate: "https://api.example.com/like?uid={uid}&region={region}"},
		Quota:    QuotaConfig{DailyLimit: 1, ResetHours: 20},
		Verify:   VerifyConfig{TTL: 10 * time.Minute},
		Fulfill:  FulfillConfig{PollInterval: 5 * time.Second},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.BotToken = ""
	cfg.Server.PublicBaseURL = "bot.example.com"
	cfg.DB.Password = ""

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "TELEGRAM_BOT_TOKEN")
	assert.Contains(t, msg, "PUBLIC_BASE_URL")
	assert.Contains(t, msg, "DB_PASSWORD")
	assert.Equal(t, 3, strings.Count(msg, "\n"))
}

func TestValidate_LikeURLPlaceholders(t *testing.T) {
	cfg := validConfig()
	cfg.LikeAPI.URLTemplate = "https://api.example.com/like?uid={uid}"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{region}")
}
