// Package pipeline wires one call's VIDTracker-backed DeltaDetector,
// ADPolicyGate, and Verbalizer into the single per-snapshot operation
// the API layer drives.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/your-org/visualdelta/internal/adgate"
	"github.com/your-org/visualdelta/internal/delta"
	"github.com/your-org/visualdelta/internal/models"
	"github.com/your-org/visualdelta/internal/verbalizer"
)

// Config bundles one call's worth of component configuration.
type Config struct {
	Detector   delta.Config
	Gate       adgate.Config
	Verbalizer verbalizer.Config
}

// Pipeline owns one call's detector, gate, and verbalizer. Not safe
// for concurrent use — a caller must serialize snapshot submissions
// per call.
type Pipeline struct {
	detector   *delta.Detector
	gate       *adgate.Gate
	verbalizer *verbalizer.Verbalizer
	state      models.VisualState
	logger     *slog.Logger
}

// New constructs a Pipeline for one call.
func New(cfg Config, llmHandler verbalizer.Handler, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		detector:   delta.New(cfg.Detector, models.NewEventFactory()),
		gate:       adgate.New(cfg.Gate),
		verbalizer: verbalizer.New(cfg.Verbalizer, llmHandler, logger),
		state:      models.NewVisualState(),
		logger:     logger,
	}
}

// Reset restores every owned component to its initial state.
func (p *Pipeline) Reset() {
	p.detector.Reset()
	p.gate.Reset()
	p.state = models.NewVisualState()
}

// State returns the pipeline's current world model.
func (p *Pipeline) State() models.VisualState {
	return p.state
}

// SnapshotResult is what one ProcessSnapshot call reports to its
// caller: the events emitted, the resulting state, and any AD text
// that became speakable as a result.
type SnapshotResult struct {
	Events          []models.VisualEvent
	State           models.VisualState
	SpokenText      string
	SpokenEventType models.EventType
}

// ProcessSnapshot runs one full tick: track → diff → emit, gate the
// resulting events for AD admission, and verbalize the next
// announcement if the gate currently allows speaking one.
//
// activity may be nil when the caller has no concurrent-speech signal.
func (p *Pipeline) ProcessSnapshot(ctx context.Context, regions []models.DetectedRegion, detectedLayout models.LayoutType, nowMs int64, activity *adgate.AudioActivity) SnapshotResult {
	deltaResult := p.detector.ComputeDeltas(p.state, regions, detectedLayout, nowMs)
	p.state = deltaResult.NextState

	candidates := p.gate.SelectADCandidates(deltaResult.Events, nowMs)
	p.gate.QueueAnnouncements(candidates)

	result := SnapshotResult{
		Events: deltaResult.Events,
		State:  p.state,
	}

	if p.gate.ShouldSpeakAD(nowMs, activity) {
		if next, ok := p.gate.GetNextAnnouncement(nowMs); ok {
			result.SpokenText = p.verbalizer.Verbalize(ctx, next.Event, p.state)
			result.SpokenEventType = next.Event.Type
		}
	}

	return result
}
