package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"titledoctor/features/job"
	"titledoctor/internal/adapter/gemini"
	"titledoctor/internal/adapter/resend"
	"titledoctor/internal/adapter/youtube"
	"titledoctor/internal/app"
	"titledoctor/internal/config"
	"titledoctor/internal/logger"
	"titledoctor/internal/worker"
)

func main() {
	handler := logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	deps, err := app.Bootstrap(cfg)
	if err != nil {
		return err
	}
	defer deps.DB.Close()
	defer deps.Bus.Stop()

	ytClient, err := youtube.NewClient(ctx, cfg.YouTubeAPIKey)
	if err != nil {
		return err
	}

	generator, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return err
	}
	defer generator.Close()

	var sender worker.EmailSender
	if cfg.ResendAPIKey != "" {
		sender = resend.NewClient(cfg.ResendAPIKey, cfg.ResendFromEmail)
	} else {
		slog.Warn("RESEND_API_KEY not set, email delivery disabled")
	}

	store := job.NewPostgresStore(deps.DB)

	a, err := app.New(cfg, store, deps.Bus, ytClient, ytClient, generator, sender)
	if err != nil {
		return err
	}

	return a.Run(ctx)
}
