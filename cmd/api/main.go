package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/nyashahama/gameday-mailer/internal/api"
	"github.com/nyashahama/gameday-mailer/internal/config"
	"github.com/nyashahama/gameday-mailer/internal/digest"
	"github.com/nyashahama/gameday-mailer/internal/email"
	"github.com/nyashahama/gameday-mailer/internal/metrics"
	"github.com/nyashahama/gameday-mailer/internal/schedule"
	"github.com/nyashahama/gameday-mailer/internal/server"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	var logger *slog.Logger
	if os.Getenv("ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded",
		"env", cfg.Env,
		"port", cfg.Port,
		"team_id", cfg.TeamID,
		"display_tz", cfg.DisplayTimezone,
		"reference_tz", cfg.ReferenceTimezone,
		"recipient_configured", cfg.RecipientEmail != "",
	)

	// ── Metrics ───────────────────────────────────────────────────────────────
	rec := metrics.New()

	// ── Schedule provider (MLB Stats API) ─────────────────────────────────────
	fetcher := schedule.NewClient(schedule.Config{
		BaseURL:           cfg.ScheduleBaseURL,
		RequestsPerMinute: cfg.ScheduleRequestsPerMinute,
		Logger:            logger,
	})

	// ── Email (Resend) ────────────────────────────────────────────────────────
	mailer := email.NewResendClient(email.ResendConfig{
		APIKey:   cfg.ResendAPIKey,
		FromAddr: cfg.EmailFromAddr,
		FromName: cfg.EmailFromName,
	})

	// ── Pipeline ──────────────────────────────────────────────────────────────
	svc, err := digest.NewService(fetcher, mailer, digest.Options{
		TeamID:        cfg.TeamID,
		TeamName:      cfg.TeamName,
		DisplayZone:   cfg.DisplayTimezone,
		ReferenceZone: cfg.ReferenceTimezone,
		GameDuration:  cfg.GameDuration,
	}, rec, logger)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	// ── HTTP handler ──────────────────────────────────────────────────────────
	handler := api.NewServer(svc, rec, api.Config{
		Production:       cfg.IsProduction(),
		RecipientEmail:   cfg.RecipientEmail,
		CronOriginMarker: cfg.CronOriginMarker,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		FormRateLimit:    cfg.FormRateLimit,
		FormRateWindow:   cfg.FormRateWindow,
	}, logger)

	// ── Listener (HTTP + gRPC health on one port) ─────────────────────────────
	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	// Root context cancelled by OS signal. server.Serve drains both protocols.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, lis, handler, logger)
}
