package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mr1hm/go-raid-alerts/internal/api"
	"github.com/mr1hm/go-raid-alerts/internal/broadcast"
	"github.com/mr1hm/go-raid-alerts/internal/config"
	"github.com/mr1hm/go-raid-alerts/internal/delivery"
	"github.com/mr1hm/go-raid-alerts/internal/filter"
	"github.com/mr1hm/go-raid-alerts/internal/ingestion"
	"github.com/mr1hm/go-raid-alerts/internal/logging"
	"github.com/mr1hm/go-raid-alerts/internal/metrics"
	"github.com/mr1hm/go-raid-alerts/internal/repository"
	"github.com/mr1hm/go-raid-alerts/internal/retention"
	"github.com/mr1hm/go-raid-alerts/internal/verifier"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	m := metrics.New()

	var opts []filter.Option
	if cfg.LLM.Enabled {
		v := verifier.NewLLMVerifier(verifier.Config{
			Endpoint: cfg.LLM.Endpoint,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			Timeout:  cfg.LLM.Timeout,
		})
		slog.Info("verifier enabled", "verifier", v.String())
		opts = append(opts, filter.WithVerifier(verifier.Instrument(v, m.ObserveVerdict)))
	}
	engine := filter.New(cfg.EngineConfig(), opts...)

	var sender delivery.Sender = delivery.LogSender{}
	if cfg.Telegram.BotToken != "" {
		sender = delivery.NewTelegramSender(cfg.Telegram.APIURL, cfg.Telegram.BotToken)
	} else {
		slog.Warn("TELEGRAM_BOT_TOKEN not set, alerts will only be logged")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Broadcaster for SSE streaming
	broadcaster := broadcast.NewBroadcaster()

	mgr := ingestion.NewManager(cfg, engine, ingestion.Deps{
		Alerts:      db,
		Subscribers: db,
		Sender:      sender,
		Broadcaster: broadcaster,
		Metrics:     m,
	})
	mgr.Start(ctx)

	purger := retention.NewScheduler(db, cfg.Retention.History, m)
	if err := purger.Start(ctx, cfg.Retention.Schedule); err != nil {
		logging.Fatalf("Failed to schedule history retention: %v", err)
	}

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))

	handler := api.NewHandler(db, db, mgr, broadcaster, m)
	handler.RegisterRoutes(router, cfg.Server.IngestRateLimit)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	// End streams first so Shutdown does not wait on them
	broadcaster.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	mgr.Stop()
	purger.Stop()
	cancel()

	slog.Info("shutdown complete")
}
