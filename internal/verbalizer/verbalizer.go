// Package verbalizer turns an admitted VisualEvent into spoken text.
// It never renders appearance, emotion, or identity — only where a
// region is on the composite frame and what kind of change happened.
package verbalizer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/your-org/visualdelta/internal/models"
)

// Verbosity controls which of the two template forms is used.
type Verbosity string

const (
	VerbosityMinimal Verbosity = "minimal"
	VerbosityNormal  Verbosity = "normal"
)

// Config holds the verbalizer's knobs.
type Config struct {
	UseLLM    bool
	MaxLength int
	Verbosity Verbosity
}

// DefaultConfig returns the verbalizer's default settings.
func DefaultConfig() Config {
	return Config{UseLLM: false, MaxLength: 120, Verbosity: VerbosityNormal}
}

type templatePair struct {
	minimal string
	normal  string
}

var templates = map[models.EventType]templatePair{
	models.EventHandRaised:         {minimal: "Participant ${position} raised their hand", normal: "Participant ${position} raised their hand"},
	models.EventHandLowered:        {minimal: "Participant ${position} lowered their hand", normal: "Participant ${position} lowered their hand"},
	models.EventScreenShareStarted: {minimal: "Screen sharing started", normal: "A participant started sharing their screen"},
	models.EventScreenShareStopped: {minimal: "Screen sharing stopped", normal: "Screen sharing has stopped"},
	models.EventSlideChanged:       {minimal: "Slide changed", normal: "The shared slide changed"},
	models.EventLayoutChanged:      {minimal: "Layout changed to ${to}", normal: "The meeting layout changed to ${to}"},
	models.EventVIDAppeared:        {minimal: "A participant joined view", normal: "A new participant tile appeared"},
	models.EventVIDDisappeared:     {minimal: "A participant left view", normal: "A participant tile disappeared"},
}

// Handler is the async, externally-injected LLM collaborator. It is
// the pipeline's sole suspension point — everything else in this
// package is synchronous.
type Handler interface {
	Verbalize(ctx context.Context, llmCtx Context) (string, error)
}

// Context is everything the LLM path is allowed to see: no bbox
// coordinates, no fingerprints, no images.
type Context struct {
	EventType         models.EventType
	Position          string
	Kind              models.RegionKind
	FromLayout        models.LayoutType
	ToLayout          models.LayoutType
	ParticipantCount  int
	HandRaisedCount   int
	ScreenShareActive bool
	Layout            models.LayoutType
	Verbosity         Verbosity
}

// Verbalizer renders events into text, optionally consulting an
// injected LLM handler before falling back to the template table.
type Verbalizer struct {
	cfg     Config
	handler Handler
	logger  *slog.Logger
}

// New constructs a Verbalizer. handler may be nil even when
// cfg.UseLLM is true — "LLM enabled" and "LLM available" are separate
// conditions, and that combination is the template path, silently,
// with no warning logged.
func New(cfg Config, handler Handler, logger *slog.Logger) *Verbalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verbalizer{cfg: cfg, handler: handler, logger: logger}
}

// Verbalize renders one event against the given state. ctx is used
// only to bound the optional LLM call; it is never passed to the
// template path.
func (v *Verbalizer) Verbalize(ctx context.Context, event models.VisualEvent, state models.VisualState) string {
	template := v.renderTemplate(event, state)

	if !v.cfg.UseLLM || v.handler == nil {
		return template
	}

	llmCtx := v.buildContext(event, state)
	text, err := v.handler.Verbalize(ctx, llmCtx)
	if err != nil {
		v.logger.Warn("llm verbalize failed, falling back to template", "error", err, "event_type", event.Type)
		return template
	}

	result := ValidateOutput(text, v.cfg.MaxLength)
	if !result.Valid {
		v.logger.Warn("llm output failed validation, falling back to template", "reason", result.Reason, "event_type", event.Type)
		return template
	}

	return text
}

func (v *Verbalizer) renderTemplate(event models.VisualEvent, state models.VisualState) string {
	pair, ok := templates[event.Type]
	if !ok {
		return ""
	}
	text := pair.normal
	if v.cfg.Verbosity == VerbosityMinimal {
		text = pair.minimal
	}

	text = strings.ReplaceAll(text, "${position}", positionOf(event, state))
	text = strings.ReplaceAll(text, "${to}", string(layoutOf(event)))

	return text
}

func (v *Verbalizer) buildContext(event models.VisualEvent, state models.VisualState) Context {
	c := Context{
		EventType:         event.Type,
		Position:          positionOf(event, state),
		ParticipantCount:  len(state.VIDs),
		HandRaisedCount:   state.HandRaisedCount,
		ScreenShareActive: state.ScreenShare.Active,
		Layout:            state.Layout,
		Verbosity:         v.cfg.Verbosity,
	}

	switch event.Type {
	case models.EventVIDAppeared:
		if p, ok := event.Payload.(models.VIDAppearedPayload); ok {
			c.Kind = p.Kind
		}
	case models.EventLayoutChanged:
		if p, ok := event.Payload.(models.LayoutChangedPayload); ok {
			c.FromLayout = p.From
			c.ToLayout = p.To
		}
	}

	return c
}

func vidOf(event models.VisualEvent) (models.VID, bool) {
	switch p := event.Payload.(type) {
	case models.VIDAppearedPayload:
		return p.VID, true
	case models.VIDDisappearedPayload:
		return p.VID, true
	case models.HandRaisedPayload:
		return p.VID, true
	case models.HandLoweredPayload:
		return p.VID, true
	case models.ScreenShareStartedPayload:
		return p.VID, true
	case models.ScreenShareStoppedPayload:
		return p.VID, true
	case models.SlideChangedPayload:
		return p.VID, true
	}
	return models.VID{}, false
}

func positionOf(event models.VisualEvent, state models.VisualState) string {
	vid, ok := vidOf(event)
	if !ok {
		return "at an unknown position"
	}
	vs, ok := state.VIDs[vid]
	if !ok {
		return "at an unknown position"
	}
	return describePosition(vs.BBox)
}

// describePosition never names identity — only a 3x3 grid cell
// derived from the box's top-left corner.
func describePosition(bbox models.BBox) string {
	col := clampIndex(int(math.Floor(bbox.X * 3)))
	row := clampIndex(int(math.Floor(bbox.Y * 3)))

	rows := []string{"top", "middle", "bottom"}
	cols := []string{"left", "center", "right"}

	return fmt.Sprintf("%s %s", rows[row], cols[col])
}

func clampIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i > 2 {
		return 2
	}
	return i
}

func layoutOf(event models.VisualEvent) models.LayoutType {
	if p, ok := event.Payload.(models.LayoutChangedPayload); ok {
		return p.To
	}
	return models.LayoutUnknown
}
