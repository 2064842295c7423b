// Package eventbus fans VisualEvents out across service replicas over
// NATS JetStream, so every WebSocket gateway instance can broadcast
// events regardless of which instance processed the snapshot that
// produced them.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	VisualEventsStreamName  = "VISUAL_EVENTS"
	VisualEventsSubjectBase = "visual_events"
)

// Producer publishes VisualEvents to the VISUAL_EVENTS stream, one
// subject per call so a consumer can subscribe to a single call's
// events.
type Producer struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// NewProducer connects to NATS and wraps it in a JetStream context.
func NewProducer(natsURL string) (*Producer, error) {
	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Producer{nc: nc, js: js}, nil
}

// EnsureStreams creates the VISUAL_EVENTS stream if it doesn't exist,
// retrying to absorb NATS startup delay in compose/k8s environments.
func (p *Producer) EnsureStreams(ctx context.Context) error {
	cfg := jetstream.StreamConfig{
		Name:        VisualEventsStreamName,
		Subjects:    []string{VisualEventsSubjectBase + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      1 * time.Hour,
		MaxMsgs:     1_000_000,
		MaxBytes:    256 * 1024 * 1024,
		Storage:     jetstream.FileStorage,
		Discard:     jetstream.DiscardOld,
		Description: "Visual-delta events fanned out for WebSocket broadcast",
	}

	const maxAttempts = 30
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, err := p.js.CreateOrUpdateStream(opCtx, cfg)
		cancel()
		if err == nil {
			slog.Info("ensured NATS stream", "name", cfg.Name)
			return nil
		}
		if attempt == maxAttempts {
			return fmt.Errorf("create stream %s: %w (after %d attempts)", cfg.Name, err, maxAttempts)
		}
		slog.Warn("ensure NATS stream (retrying...)", "name", cfg.Name, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
		}
	}
	return nil
}

// PublishEvent publishes one VisualEvent under the given call's
// subject.
func (p *Producer) PublishEvent(ctx context.Context, callID string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", VisualEventsSubjectBase, callID)
	if _, err := p.js.Publish(ctx, subject, payload); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Ping reports whether the underlying NATS connection is up.
func (p *Producer) Ping() error {
	if !p.nc.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

// Close releases the NATS connection.
func (p *Producer) Close() {
	p.nc.Close()
}
