package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/api/router"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/catalog"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/classify"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/concierge"
	appconfig "github.com/mendez671/asteria-mobile-luxury-sub002/internal/config"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/http/handlers"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/journey"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/member"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/notify"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/observability/metrics"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/session"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/ticket"
	"github.com/mendez671/asteria-mobile-luxury-sub002/pkg/logging"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	var logger *logging.Logger
	if cfg.Env == "development" {
		logger = logging.NewDevelopment(cfg.LogLevel)
	} else {
		logger = logging.New(cfg.LogLevel)
	}
	logger.Info("starting asteria API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Service catalog
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Error("failed to load service catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}

	// Redis backs sessions, member profiles, and tickets.
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
		cancelPing()
		os.Exit(1)
	}
	cancelPing()

	// Observability
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	// Pipeline components
	classifier := classify.New(cat, logger)
	detector := journey.New(cat, logger)
	builder := ticket.NewBuilder(classifier, logger)
	ticketStore := ticket.NewStore(redisClient)
	memberStore := member.NewStore(redisClient)
	sessionStore := session.NewStore(redisClient, cfg.SessionTTL)

	// Notification channels
	slackChannel := notify.NewSlackChannel(cfg.SlackWebhookURL, logger)
	smsChannel := notify.NewTwilioChannel(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger)
	var chatOps notify.ChatOpsChannel
	if slackChannel != nil {
		chatOps = slackChannel
	} else {
		logger.Warn("slack webhook not configured, chat-ops alerts disabled")
	}
	var sms notify.SMSChannel
	if smsChannel != nil {
		sms = smsChannel
	} else {
		logger.Warn("twilio not configured, sms alerts disabled")
	}
	dispatcher := notify.NewDispatcher(chatOps, sms, notify.DispatcherOptions{
		RatePerMinute: cfg.NotifyRatePerMinute,
		BatchWindow:   cfg.NotifyBatchWindow,
		BatchMax:      cfg.NotifyBatchMax,
		SMSTo:         cfg.ConciergeSMSTo,
	}, pipelineMetrics, logger)

	// Member-facing replies
	completer := concierge.NewAnthropicCompleter(cfg.AnthropicAPIKey, cfg.AnthropicModel, logger)
	var llm concierge.Completer
	if completer != nil {
		llm = completer
	} else {
		logger.Warn("anthropic not configured, using canned concierge replies")
	}

	service := concierge.NewService(
		memberStore,
		sessionStore,
		detector,
		builder,
		ticketStore,
		dispatcher,
		llm,
		pipelineMetrics,
		logger,
	)

	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        concierge.NewHandler(service, logger),
		AdminTickets:       handlers.NewAdminTickets(ticketStore, logger),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if err := redisClient.Close(); err != nil {
		logger.Warn("redis close failed", "error", err)
	}

	logger.Info("server stopped")
}
