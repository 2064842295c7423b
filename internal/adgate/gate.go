// Package adgate implements the audio-description admission
// controller: it decides which world-model events are worth speaking,
// in what order, and how often, without ever inspecting what a
// region looks like.
package adgate

import (
	"sort"
	"time"

	"github.com/your-org/visualdelta/internal/models"
)

// Verbosity controls how aggressively events are filtered before
// announcement.
type Verbosity string

const (
	VerbosityMinimal Verbosity = "minimal"
	VerbosityNormal  Verbosity = "normal"
)

// Config holds the gate's admission knobs, all injectable.
type Config struct {
	Enabled                 bool
	Verbosity               Verbosity
	AvoidSpeechOverlap      bool
	GlobalCooldownMs        int64
	EventCooldownMs         map[models.EventType]int64
	MaxPendingAnnouncements int
}

// DefaultConfig returns the gate's default admission settings.
func DefaultConfig() Config {
	return Config{
		Enabled:            true,
		Verbosity:          VerbosityNormal,
		AvoidSpeechOverlap: true,
		GlobalCooldownMs:   2000,
		EventCooldownMs: map[models.EventType]int64{
			models.EventHandRaised:    5000,
			models.EventHandLowered:   5000,
			models.EventSlideChanged:  3000,
			models.EventLayoutChanged: 10000,
		},
		MaxPendingAnnouncements: 5,
	}
}

var basePriority = map[models.EventType]int{
	models.EventScreenShareStarted: 10,
	models.EventScreenShareStopped: 9,
	models.EventHandRaised:         8,
	models.EventSlideChanged:       6,
	models.EventHandLowered:        5,
	models.EventLayoutChanged:      4,
	models.EventVIDAppeared:        3,
	models.EventVIDDisappeared:     2,
}

var allowlist = map[models.EventType]bool{
	models.EventHandRaised:         true,
	models.EventHandLowered:        true,
	models.EventScreenShareStarted: true,
	models.EventScreenShareStopped: true,
	models.EventSlideChanged:       true,
	models.EventLayoutChanged:      true,
	models.EventVIDAppeared:        true,
	models.EventVIDDisappeared:     true,
}

const minimalPriorityFloor = 8

// AllowedADEvent pairs an admitted event with its resolved priority.
type AllowedADEvent struct {
	Event    models.VisualEvent
	Priority int
}

// AudioActivity describes concurrent speech, used only to avoid
// talking over a live speaker.
type AudioActivity struct {
	IsSpeechActive bool
	Confidence     float64
	LastSpeechMs   int64
}

// Gate is the ADPolicyGate: it holds no information about what a
// region looks like, only when and how often to speak about it.
type Gate struct {
	cfg Config

	lastAnnouncementMs int64
	lastEventTypeMs    map[models.EventType]int64
	queue              []AllowedADEvent
}

// New constructs a Gate from cfg.
func New(cfg Config) *Gate {
	return &Gate{
		cfg:             cfg,
		lastEventTypeMs: make(map[models.EventType]int64),
	}
}

// Reset restores the gate to its initial state.
func (g *Gate) Reset() {
	g.lastAnnouncementMs = 0
	g.lastEventTypeMs = make(map[models.EventType]int64)
	g.queue = nil
}

// Pending returns the current queue length, for I8's bound check.
func (g *Gate) Pending() int { return len(g.queue) }

// SelectADCandidates filters events by allowlist, per-type cooldown,
// and verbosity, returning survivors sorted by descending priority.
func (g *Gate) SelectADCandidates(events []models.VisualEvent, nowMs int64) []AllowedADEvent {
	var out []AllowedADEvent

	for _, ev := range events {
		if !allowlist[ev.Type] {
			continue
		}
		priority := basePriority[ev.Type]

		if g.cfg.Verbosity == VerbosityMinimal && priority < minimalPriorityFloor {
			continue
		}

		if cd, ok := g.cfg.EventCooldownMs[ev.Type]; ok {
			if last, seen := g.lastEventTypeMs[ev.Type]; seen && nowMs-last < cd {
				continue
			}
		}

		out = append(out, AllowedADEvent{Event: ev, Priority: priority})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

// QueueAnnouncements appends candidates to the pending queue, trimming
// to the last MaxPendingAnnouncements entries if it overflows.
func (g *Gate) QueueAnnouncements(candidates []AllowedADEvent) {
	g.queue = append(g.queue, candidates...)
	if len(g.queue) > g.cfg.MaxPendingAnnouncements {
		g.queue = g.queue[len(g.queue)-g.cfg.MaxPendingAnnouncements:]
	}
}

// ShouldSpeakAD reports whether the gate may currently emit an
// announcement, given optional concurrent audio activity.
func (g *Gate) ShouldSpeakAD(nowMs int64, activity *AudioActivity) bool {
	if !g.cfg.Enabled {
		return false
	}
	if len(g.queue) == 0 {
		return false
	}
	if nowMs-g.lastAnnouncementMs < g.cfg.GlobalCooldownMs {
		return false
	}
	if g.cfg.AvoidSpeechOverlap && activity != nil {
		if activity.IsSpeechActive && activity.Confidence > 0.5 {
			return false
		}
		if nowMs-activity.LastSpeechMs < 500 {
			return false
		}
	}
	return true
}

// GetNextAnnouncement re-sorts the queue by priority, pops the head,
// and records it against the cooldown clocks.
func (g *Gate) GetNextAnnouncement(nowMs int64) (AllowedADEvent, bool) {
	if len(g.queue) == 0 {
		return AllowedADEvent{}, false
	}
	sort.SliceStable(g.queue, func(i, j int) bool { return g.queue[i].Priority > g.queue[j].Priority })

	head := g.queue[0]
	g.queue = g.queue[1:]

	g.lastAnnouncementMs = nowMs
	g.lastEventTypeMs[head.Event.Type] = nowMs

	return head, true
}

// ClearPending empties the queue.
func (g *Gate) ClearPending() {
	g.queue = nil
}

// Now is the default wall-clock source; injected so tests can use a
// fixed time instead.
func Now() int64 {
	return time.Now().UnixMilli()
}
