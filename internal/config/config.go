package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Telegram  TelegramConfig
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	NATS      NATSConfig
	LikeAPI   LikeAPIConfig
	Shortener ShortenerConfig
	Quota     QuotaConfig
	Verify    VerifyConfig
	Fulfill   FulfillConfig
	Links     LinksConfig
	Log       LogConfig
}

type TelegramConfig struct {
	BotToken string
	AdminIDs []int64
}

// IsAdmin reports whether id is on the static admin allow-list.
func (c TelegramConfig) IsAdmin(id int64) bool {
	for _, a := range c.AdminIDs {
		if a == id {
			return true
		}
	}
	return false
}

type ServerConfig struct {
	Host string
	Port int

	// PublicBaseURL is the externally reachable base for verification links,
	// e.g. https://likebot.example.com (no trailing slash).
	PublicBaseURL string
}

type DBConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxConns       int32
	MigrationsPath string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	// URL is optional; when empty, event publishing and the audit
	// consumer are disabled.
	URL string
}

type LikeAPIConfig struct {
	// URLTemplate contains {uid} and {region} placeholders.
	URLTemplate string
	Timeout     time.Duration
}

type ShortenerConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type QuotaConfig struct {
	DailyLimit int
	ResetHours int
}

func (c QuotaConfig) ResetWindow() time.Duration {
	return time.Duration(c.ResetHours) * time.Hour
}

type VerifyConfig struct {
	// TTL is how long a verification code stays valid after issue.
	TTL time.Duration

	// RateLimitMax requests per RateLimitWindowSec seconds per IP on /verify.
	RateLimitMax       int
	RateLimitWindowSec int
}

type FulfillConfig struct {
	PollInterval time.Duration
	ErrorBackoff time.Duration
}

type LinksConfig struct {
	HowToVerifyURL string
	VIPAccessURL   string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Telegram: TelegramConfig{
			BotToken: k.String("telegram.bot.token"),
		},
		Server: ServerConfig{
			Host:          k.String("server.host"),
			Port:          k.Int("server.port"),
			PublicBaseURL: strings.TrimRight(k.String("public.base.url"), "/"),
		},
		DB: DBConfig{
			Host:           k.String("db.host"),
			Port:           k.Int("db.port"),
			User:           k.String("db.user"),
			Password:       k.String("db.password"),
			Name:           k.String("db.name"),
			SSLMode:        k.String("db.sslmode"),
			MaxConns:       int32(k.Int("db.max.conns")),
			MigrationsPath: k.String("db.migrations.path"),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		LikeAPI: LikeAPIConfig{
			URLTemplate: k.String("like.api.url"),
		},
		Shortener: ShortenerConfig{
			BaseURL: k.String("shortener.base.url"),
			APIKey:  k.String("shortener.api.key"),
		},
		Quota: QuotaConfig{
			DailyLimit: k.Int("quota.daily.limit"),
			ResetHours: k.Int("quota.reset.hours"),
		},
		Verify: VerifyConfig{
			RateLimitMax:       k.Int("verify.ratelimit.max"),
			RateLimitWindowSec: k.Int("verify.ratelimit.window.sec"),
		},
		Links: LinksConfig{
			HowToVerifyURL: k.String("how.to.verify.url"),
			VIPAccessURL:   k.String("vip.access.url"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	cfg.Telegram.AdminIDs, err = parseAdminIDs(k.String("admin.ids"))
	if err != nil {
		return nil, fmt.Errorf("parsing ADMIN_IDS: %w", err)
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "likebot"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "likebot"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 10
	}
	if cfg.DB.MigrationsPath == "" {
		cfg.DB.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Shortener.BaseURL == "" {
		cfg.Shortener.BaseURL = "https://shortner.in"
	}
	if cfg.Quota.DailyLimit == 0 {
		cfg.Quota.DailyLimit = 1
	}
	if cfg.Quota.ResetHours == 0 {
		cfg.Quota.ResetHours = 20
	}
	if cfg.Verify.RateLimitMax == 0 {
		cfg.Verify.RateLimitMax = 30
	}
	if cfg.Verify.RateLimitWindowSec == 0 {
		cfg.Verify.RateLimitWindowSec = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	cfg.LikeAPI.Timeout, err = durationOr(k, "like.api.timeout", "10s")
	if err != nil {
		return nil, fmt.Errorf("parsing like api timeout: %w", err)
	}
	cfg.Shortener.Timeout, err = durationOr(k, "shortener.timeout", "10s")
	if err != nil {
		return nil, fmt.Errorf("parsing shortener timeout: %w", err)
	}
	cfg.Verify.TTL, err = durationOr(k, "verify.ttl", "10m")
	if err != nil {
		return nil, fmt.Errorf("parsing verify ttl: %w", err)
	}
	cfg.Fulfill.PollInterval, err = durationOr(k, "fulfill.poll.interval", "5s")
	if err != nil {
		return nil, fmt.Errorf("parsing fulfill poll interval: %w", err)
	}
	cfg.Fulfill.ErrorBackoff, err = durationOr(k, "fulfill.error.backoff", "10s")
	if err != nil {
		return nil, fmt.Errorf("parsing fulfill error backoff: %w", err)
	}

	return cfg, nil
}

func durationOr(k *koanf.Koanf, key, def string) (time.Duration, error) {
	s := k.String(key)
	if s == "" {
		s = def
	}
	return time.ParseDuration(s)
}

// parseAdminIDs splits a comma-separated list of Telegram user ids.
// Empty segments are skipped; a non-numeric segment is an error.
func parseAdminIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
