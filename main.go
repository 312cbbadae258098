package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Italo-Ba-Hall/SITE/internal/chat"
	"github.com/Italo-Ba-Hall/SITE/internal/config"
	"github.com/Italo-Ba-Hall/SITE/internal/llm"
	"github.com/Italo-Ba-Hall/SITE/internal/notify"
	"github.com/Italo-Ba-Hall/SITE/internal/store"
	handler "github.com/Italo-Ba-Hall/SITE/internal/transport/http"
)

func main() {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting chat service",
		zap.Int("http_port", cfg.HTTPPort),
		zap.String("database", cfg.DatabaseURL),
		zap.String("model", cfg.GeminiModel))

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}
	defer db.Close()

	// Initialize the Gemini client
	ctx := context.Background()
	if cfg.GeminiAPIKey == "" {
		logger.Fatal("GEMINI_API_KEY is required")
	}
	gemini, err := llm.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Fatal("failed to initialize gemini client", zap.Error(err))
	}

	// Initialize the completion gateway
	gwCfg := llm.DefaultGatewayConfig()
	gwCfg.Model = cfg.GeminiModel
	gwCfg.MaxTokens = cfg.MaxTokens
	gwCfg.Temperature = float32(cfg.Temperature)
	gwCfg.MaxRequestsPerMinute = cfg.RateLimitPerMinute
	gwCfg.CacheSize = cfg.CacheCapacity
	gwCfg.CacheTTL = cfg.CacheTTL
	gateway := llm.NewGateway(gemini, gwCfg, logger)

	// Initialize notifications
	notifier := notify.NewService(notify.Config{
		SMTPHost:          cfg.SMTPHost,
		SMTPPort:          cfg.SMTPPort,
		SMTPUsername:      cfg.SMTPUsername,
		SMTPPassword:      cfg.SMTPPassword,
		TeamEmail:         cfg.TeamEmail,
		SlackWebhookURL:   cfg.SlackWebhookURL,
		DiscordWebhookURL: cfg.DiscordWebhookURL,
	}, logger)

	// Initialize the conversation engine
	engine := chat.NewManager(db, notifier, gateway, chat.ManagerConfig{
		SessionTimeout: cfg.SessionTimeout,
		WarningTimeout: cfg.WarningTimeout,
	}, logger)

	// Background janitor for expired sessions and stale cache entries
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	go runJanitor(janitorCtx, cfg.CleanupInterval, engine, gateway, logger)

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h := handler.NewHandler(engine, db, logger)
	h.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	logger.Info("chat service started", zap.Int("port", cfg.HTTPPort))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down chat service")
	stopJanitor()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Warn("failed to shutdown server gracefully", zap.Error(err))
	}

	logger.Info("chat service stopped")
}

func runJanitor(ctx context.Context, interval time.Duration, engine *chat.Manager, gateway *llm.Gateway, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := engine.CleanupExpiredSessions()
			gateway.Cache().AutoCompact()
			if removed > 0 {
				logger.Info("cleaned up expired sessions", zap.Int("removed", removed))
			}
		}
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return cfg.Build()
}
