package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/victorhinojosa/voice-ivr-payment/internal/audit"
	"github.com/victorhinojosa/voice-ivr-payment/internal/auth"
	"github.com/victorhinojosa/voice-ivr-payment/internal/callstore"
	"github.com/victorhinojosa/voice-ivr-payment/internal/classifier"
	"github.com/victorhinojosa/voice-ivr-payment/internal/config"
	"github.com/victorhinojosa/voice-ivr-payment/internal/conversation"
	"github.com/victorhinojosa/voice-ivr-payment/internal/httpapi"
	"github.com/victorhinojosa/voice-ivr-payment/internal/reporting"
	"github.com/victorhinojosa/voice-ivr-payment/internal/telephony"
	"github.com/victorhinojosa/voice-ivr-payment/pkg/logger"
	"github.com/victorhinojosa/voice-ivr-payment/pkg/utils"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional .env for local runs; real envs set vars via the runner.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	store := callstore.NewPostgresStore(db)

	gateway, err := classifier.NewAnthropicGateway(classifier.AnthropicConfig{
		APIKey:  cfg.Classifier.AnthropicAPIKey,
		Model:   cfg.Classifier.Model,
		Timeout: cfg.Classifier.Timeout,
	})
	if err != nil {
		log.Error("classifier init failed", "err", err)
		os.Exit(1)
	}

	auditSvc := audit.NewService(audit.NewMemoryRepo())

	engine := conversation.NewEngine(
		store,
		gateway,
		conversation.NewRedisLocker(rdb),
		auditSvc,
		conversation.Config{
			OfferedPlan:         cfg.Conversation.OfferedPlan,
			AmountOwed:          cfg.Conversation.AmountOwed,
			ConfidenceThreshold: cfg.Conversation.ConfidenceThreshold,
			MaxClarifyRetries:   cfg.Conversation.MaxClarifyRetries,
		},
	)

	webhooks := telephony.NewHandlers(engine, telephony.GatherOptions{})
	api := httpapi.Handlers{
		Auth:         authManager,
		Store:        store,
		Reports:      reporting.NewService(store),
		DashboardKey: cfg.Auth.DashboardAPIKey,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, webhooks, api, auth.RequireAccessToken(authManager))

	// CORS sits outside gin so webhook and API routes share one policy.
	var handler http.Handler = r
	if len(cfg.App.CORSAllowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins:   cfg.App.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler(r)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
