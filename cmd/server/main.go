package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/your-org/visualdelta/internal/api"
	"github.com/your-org/visualdelta/internal/api/ws"
	"github.com/your-org/visualdelta/internal/config"
	"github.com/your-org/visualdelta/internal/eventbus"
	"github.com/your-org/visualdelta/internal/observability"
	"github.com/your-org/visualdelta/internal/pipeline"
	"github.com/your-org/visualdelta/internal/storage"
	"github.com/your-org/visualdelta/internal/verbalizer"
	"github.com/your-org/visualdelta/pkg/dto"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting visual-delta server", "port", cfg.Server.Port)

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to NATS
	producer, err := eventbus.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(context.Background()); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// This replica's local fan-out: every VisualEvent any replica
	// publishes comes back here and gets broadcast to this replica's
	// connected clients.
	consumer, err := eventbus.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create event consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A per-process consumer name keeps replicas from sharing (and
	// splitting) one consumer's messages.
	consumerName := "server-events-" + uuid.NewString()
	err = consumer.ConsumeEvents(ctx, consumerName, func(ctx context.Context, msg jetstream.Msg) error {
		var wire dto.VisualEventWire
		if err := json.Unmarshal(msg.Data(), &wire); err != nil {
			return err
		}

		callID := callIDFromSubject(msg.Subject())
		observability.EventBusConsumed.WithLabelValues(eventbus.VisualEventsSubjectBase).Inc()

		hub.Broadcast(dto.WSMessage{
			Type:   dto.WSVisualEvents,
			CallID: callID,
			Events: []dto.VisualEventWire{wire},
		})

		return nil
	})
	if err != nil {
		slog.Warn("start event consumer", "error", err)
	}

	var llmHandler verbalizer.Handler
	if cfg.Verbalizer.UseLLM && cfg.Verbalizer.LLMAPIKey != "" {
		llmHandler = verbalizer.NewAnthropicHandler(cfg.Verbalizer.LLMAPIKey, cfg.Verbalizer.LLMModel, cfg.Verbalizer.LLMMaxTokens)
		slog.Info("verbalizer LLM handler configured", "model", cfg.Verbalizer.LLMModel)
	}

	registry := pipeline.NewRegistry(cfg.ToPipelineConfig(), llmHandler, slog.Default())

	router := api.NewRouter(api.RouterConfig{
		BearerToken: cfg.Server.BearerToken,
		DB:          db,
		Producer:    producer,
		Registry:    registry,
		Hub:         hub,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}

// callIDFromSubject extracts the call id suffix from a
// "visual_events.<callId>" JetStream subject.
func callIDFromSubject(subject string) string {
	prefix := eventbus.VisualEventsSubjectBase + "."
	if len(subject) > len(prefix) && subject[:len(prefix)] == prefix {
		return subject[len(prefix):]
	}
	return ""
}
