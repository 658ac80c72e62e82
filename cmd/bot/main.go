package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/likeforge/likebot/internal/api"
	"github.com/likeforge/likebot/internal/audit"
	"github.com/likeforge/likebot/internal/bot"
	"github.com/likeforge/likebot/internal/commands"
	"github.com/likeforge/likebot/internal/config"
	"github.com/likeforge/likebot/internal/database"
	"github.com/likeforge/likebot/internal/events"
	"github.com/likeforge/likebot/internal/fulfillment"
	"github.com/likeforge/likebot/internal/likeapi"
	"github.com/likeforge/likebot/internal/middleware"
	"github.com/likeforge/likebot/internal/profile"
	"github.com/likeforge/likebot/internal/quota"
	iredis "github.com/likeforge/likebot/internal/redis"
	"github.com/likeforge/likebot/internal/server"
	"github.com/likeforge/likebot/internal/shortener"
	"github.com/likeforge/likebot/internal/verification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("validating config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS is optional: without it the bot runs, just without events/audit.
	var natsClient *events.Client
	var publisher *events.Publisher
	var auditConsumer *audit.Consumer
	if cfg.NATS.URL != "" {
		natsClient, err = events.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()

		publisher = events.NewPublisher(natsClient.JetStream())
		consumerMgr := events.NewConsumerManager(natsClient.JetStream())
		auditConsumer = audit.NewConsumer(audit.NewRepository(pool), consumerMgr)
	}

	// Domain services
	ledger := quota.NewLedger(quota.NewRepository(pool), cfg.Telegram, cfg.Quota)
	profiles := profile.NewService(profile.NewRepository(pool))
	queue := verification.NewQueue(verification.NewRepository(pool), publisher, cfg.Verify.TTL)
	likeClient := likeapi.NewClient(cfg.LikeAPI.URLTemplate, cfg.LikeAPI.Timeout)
	shortClient := shortener.NewClient(cfg.Shortener.BaseURL, cfg.Shortener.APIKey, cfg.Shortener.Timeout)

	// Telegram transport
	tgBot, err := bot.New(cfg.Telegram)
	if err != nil {
		slog.Error("creating telegram bot", "error", err)
		os.Exit(1)
	}
	tgBot.SetHandlers(commands.NewHandlers(ledger, profiles, queue, likeClient, shortClient, tgBot, cfg))

	// Fulfillment loop
	loop := fulfillment.NewLoop(queue, ledger, profiles, likeClient, tgBot, publisher, cfg)

	// HTTP surface
	verifyLimiter := middleware.NewRateLimiter(redisClient, cfg.Verify.RateLimitMax, cfg.Verify.RateLimitWindowSec)
	router := api.NewRouter(pool, natsClient, api.RouterConfig{
		VerifyRateLimiter: verifyLimiter.Middleware,
	}, api.NewVerifyHandler(queue))
	srv := server.New(cfg.Server, router)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		tgBot.Start(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		loop.Start(ctx)
	}()

	if auditConsumer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := auditConsumer.Start(ctx); err != nil {
				slog.Error("audit consumer error", "error", err)
			}
		}()
	}

	if err := srv.Start(ctx); err != nil {
		slog.Error("server error", "error", err)
		cancel()
	}

	wg.Wait()
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
