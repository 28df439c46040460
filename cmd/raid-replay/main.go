package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/mr1hm/go-raid-alerts/internal/config"
	"github.com/mr1hm/go-raid-alerts/internal/delivery"
	"github.com/mr1hm/go-raid-alerts/internal/filter"
	"github.com/mr1hm/go-raid-alerts/internal/ingestion"
	"github.com/mr1hm/go-raid-alerts/internal/logging"
	"github.com/mr1hm/go-raid-alerts/internal/models"
	"github.com/mr1hm/go-raid-alerts/internal/repository"
	"github.com/mr1hm/go-raid-alerts/internal/verifier"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	replay, err := config.LoadReplay()
	if err != nil {
		logging.Fatalf("Fatal while loading replay config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	msgs, err := ingestion.LoadDump(replay.InputPath, ingestion.Range{
		FromLine: replay.FromLine,
		ToLine:   replay.ToLine,
		Limit:    replay.Limit,
	})
	if err != nil {
		logging.Fatalf("Failed to load replay dump: %v", err)
	}
	if len(msgs) == 0 {
		logging.Fatalf("Replay input is empty: %s", replay.InputPath)
	}

	clock := ingestion.NewVirtualClock(msgs[0].ReceivedAt)
	opts := []filter.Option{filter.WithClock(clock.Now)}
	if cfg.LLM.Enabled {
		v := verifier.NewLLMVerifier(verifier.Config{
			Endpoint: cfg.LLM.Endpoint,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			Timeout:  cfg.LLM.Timeout,
		})
		slog.Info("verifier enabled", "verifier", v.String())
		opts = append(opts, filter.WithVerifier(v))
	}
	engine := filter.New(cfg.EngineConfig(), opts...)

	var deps ingestion.Deps

	if replay.Broadcast {
		db, err := repository.NewSQLiteDB(cfg.DB.Path)
		if err != nil {
			logging.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		deps.Subscribers = db
		deps.Sender = delivery.LogSender{}
		if cfg.Telegram.BotToken != "" {
			deps.Sender = delivery.NewTelegramSender(cfg.Telegram.APIURL, cfg.Telegram.BotToken)
		}
		slog.Info("replay broadcast enabled, alerts will be sent to subscribers")
	}

	n := 0
	printAlert := func(a *models.Alert) {
		n++
		fmt.Printf("\n[REPLAY ALERT %d] %s\n%s\n", n, a.CreatedAt.Format("2006-01-02 15:04:05"), a.Text)
	}

	slog.Info("replay started", "events", len(msgs), "input", replay.InputPath, "engine", engine.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := ingestion.NewManager(cfg, engine, deps, ingestion.WithEventTime(clock.Set), ingestion.WithAlertHook(printAlert))
	mgr.Start(ctx)
	for _, msg := range msgs {
		if err := mgr.Submit(ctx, msg); err != nil {
			slog.Error("replay aborted", "error", err)
			break
		}
	}
	mgr.Stop()

	counts := mgr.Counts()
	forwarded := counts[filter.OutcomeForwarded] + counts[filter.OutcomeAllClear] + counts[filter.OutcomeStatus]
	slog.Info("replay complete",
		"total", len(msgs),
		"forwarded", forwarded,
		"suppressed", len(msgs)-forwarded,
		"recap", counts[filter.OutcomeRecap],
		"duplicate", counts[filter.OutcomeDuplicate],
		"not_local", counts[filter.OutcomeNotLocal],
		"no_threat", counts[filter.OutcomeNoThreat],
		"negative_suppressed", counts[filter.OutcomeNegativeSuppressed],
		"verifier_rejected", counts[filter.OutcomeVerifierRejected],
	)
}
