package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/reshetovitsme/chat-guard/internal/di"
	moderation "github.com/reshetovitsme/chat-guard/internal/modules/moderation/service"
	"github.com/reshetovitsme/chat-guard/internal/shared/config"
	httpServer "github.com/reshetovitsme/chat-guard/internal/transport/http"
	natsSubscriber "github.com/reshetovitsme/chat-guard/internal/transport/nats"
	"github.com/samber/do/v2"
	slogmulti "github.com/samber/slog-multi"
)

func main() {
	// Setup structured logging with multiple handlers using slog-multi
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	// Use Fanout to send logs to both handlers
	multiHandler := slogmulti.Fanout(textHandler, jsonHandler)
	logger := slog.New(multiHandler)
	slog.SetDefault(logger)

	// Setup dependency injection
	injector, err := di.Setup()
	if err != nil {
		slog.Error("Failed to setup dependency injection", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := di.Shutdown(injector); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	// Get services from DI container
	cfg := do.MustInvoke[*config.Config](injector)
	if cfg.AppEnv == config.AppEnvDevelopment {
		slog.SetDefault(slog.New(slogmulti.Fanout(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
			jsonHandler,
		)))
	}

	b := do.MustInvoke[*bot.Bot](injector)
	httpServer := do.MustInvoke[*httpServer.Server](injector)
	housekeeping := do.MustInvoke[*moderation.Housekeeping](injector)
	if _, err := do.Invoke[*natsSubscriber.Subscriber](injector); err != nil {
		slog.Error("Failed to subscribe to invalidation signals", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start sweeping idle counters
	housekeeping.Start()

	// Start HTTP server
	go func() {
		if err := httpServer.Start(); err != nil {
			slog.Error("Failed to start HTTP server", "error", err)
			os.Exit(1)
		}
	}()

	// Start polling updates
	go b.Start(ctx)

	slog.Info("Application started", "port", cfg.HTTPPort, "window_backend", cfg.WindowBackend)
	slog.Info("Press Ctrl+C to stop")

	<-ctx.Done()
	slog.Info("Shutting down...")
}
