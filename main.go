package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"klarity/internal/app"
	"klarity/internal/config"
	"klarity/internal/logger"
)

func main() {
	base := slog.NewJSONHandler(os.Stdout, nil)
	slog.SetDefault(slog.New(logger.NewContextHandler(base)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer deps.DB.Close()

	application, err := app.New(cfg, deps.DB, deps.VectorStore, deps.NSQProducer, slog.Default())
	if err != nil {
		slog.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	consumer, err := app.StartIngestConsumer(cfg, application.IngestConsumer)
	if err != nil {
		// The HTTP surface still works without the consumer; queued items
		// stay pending until a consumer comes up.
		slog.Error("failed to start ingest consumer", "error", err)
	} else {
		defer consumer.Stop()
		slog.Info("ingest consumer connected", "topic", config.TopicContentIngest)
	}

	if err := application.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
