package delta

import (
	"fmt"

	"github.com/your-org/visualdelta/internal/models"
	"github.com/your-org/visualdelta/internal/tracker"
)

// Config holds the DeltaDetector's own knobs; tracker knobs live in
// TrackerConfig so callers can tune both from one place.
type Config struct {
	DebounceSnapshots int
	TrackerConfig     tracker.Config
}

// DefaultConfig returns the detector's default debounce window.
func DefaultConfig() Config {
	return Config{
		DebounceSnapshots: 2,
		TrackerConfig:     tracker.DefaultConfig(),
	}
}

type pendingSignal struct {
	value     bool
	seenCount int
}

// Detector owns a VIDTracker and the debounce bookkeeping needed to
// turn noisy per-snapshot signals into a clean event stream.
type Detector struct {
	cfg Config

	tracker *tracker.Tracker

	pending    map[string]pendingSignal
	confirmed  map[string]bool
	slideHash  map[string]string // key "{vid}:slideHash"
	prevLayout models.LayoutType

	factory *models.EventFactory
}

// New constructs a Detector. factory must be owned by the same
// session/pipeline as the detector — ids must stay monotonic within a
// session without leaking across sessions.
func New(cfg Config, factory *models.EventFactory) *Detector {
	return &Detector{
		cfg:        cfg,
		tracker:    tracker.New(cfg.TrackerConfig),
		pending:    make(map[string]pendingSignal),
		confirmed:  make(map[string]bool),
		slideHash:  make(map[string]string),
		prevLayout: models.LayoutUnknown,
		factory:    factory,
	}
}

// Reset restores the detector (and its owned tracker) to their initial
// state.
func (d *Detector) Reset() {
	d.tracker.Reset()
	d.pending = make(map[string]pendingSignal)
	d.confirmed = make(map[string]bool)
	d.slideHash = make(map[string]string)
	d.prevLayout = models.LayoutUnknown
}

// Result bundles the detector's per-snapshot output.
type Result struct {
	NextState models.VisualState
	Events    []models.VisualEvent
}

func key(vid models.VID, field string) string {
	return fmt.Sprintf("%s:%s", vid.String(), field)
}

// ComputeDeltas runs one snapshot tick: tracks regions, diffs signals
// against confirmed state through the debounce protocol, and projects
// the next VisualState.
func (d *Detector) ComputeDeltas(prevState models.VisualState, regions []models.DetectedRegion, detectedLayout models.LayoutType, nowMs int64) Result {
	var events []models.VisualEvent

	events = append(events, d.factory.New(models.EventSnapshotReceived, nowMs, nowMs, 1.0, models.SnapshotReceivedPayload{}))

	trackRes := d.tracker.ProcessRegions(regions, nowMs)

	for _, vid := range trackRes.Appeared {
		entry, _ := d.tracker.Entry(vid)
		events = append(events, d.factory.New(models.EventVIDAppeared, nowMs, nowMs, entry.Confidence, models.VIDAppearedPayload{
			VID:  vid,
			Kind: entry.Kind,
			BBox: entry.BBox,
		}))
	}

	for _, vid := range trackRes.Expired {
		events = append(events, d.factory.New(models.EventVIDDisappeared, nowMs, nowMs, 1.0, models.VIDDisappearedPayload{VID: vid}))
		d.purge(vid)
	}

	// Boolean signal transitions, in input-region order, stamped as they
	// fire so ids stay monotonic in emitted order. Slide-hash transitions
	// run as a second pass over the same region order — after every
	// region's isPresenting debounce has settled — so a slide change that
	// depends on a later region's presenting state never stamps an id
	// ahead of an earlier region's boolean transition.
	for ri, region := range regions {
		vid := trackRes.Assignments[ri]
		if vid.IsZero() {
			continue
		}

		if evType, payload, ok := d.debounce(vid, "handRaised", region.Signals.HandRaisedOr(),
			models.EventHandRaised, models.HandRaisedPayload{VID: vid},
			models.EventHandLowered, models.HandLoweredPayload{VID: vid}); ok {
			events = append(events, d.factory.New(evType, nowMs, nowMs, 1.0, payload))
		}

		if evType, payload, ok := d.debounce(vid, "isPresenting", region.Signals.IsPresentingOr(),
			models.EventScreenShareStarted, models.ScreenShareStartedPayload{VID: vid, SlideHash: region.Signals.SlideHash},
			models.EventScreenShareStopped, models.ScreenShareStoppedPayload{VID: vid}); ok {
			events = append(events, d.factory.New(evType, nowMs, nowMs, 1.0, payload))
			if evType == models.EventScreenShareStarted {
				// screen_share_started already carries the initial slide;
				// seed it here so the slide-hash pass below doesn't also
				// fire a redundant slide_changed for it this same tick.
				d.slideHash[key(vid, "slideHash")] = region.Signals.SlideHash
			}
		}
	}

	for ri, region := range regions {
		vid := trackRes.Assignments[ri]
		if vid.IsZero() {
			continue
		}

		if d.confirmed[key(vid, "isPresenting")] && region.Signals.SlideHash != "" {
			sk := key(vid, "slideHash")
			from := d.slideHash[sk]
			if region.Signals.SlideHash != from {
				d.slideHash[sk] = region.Signals.SlideHash
				events = append(events, d.factory.New(models.EventSlideChanged, nowMs, nowMs, 1.0, models.SlideChangedPayload{
					VID:      vid,
					FromHash: from,
					ToHash:   region.Signals.SlideHash,
				}))
			}
		}
	}

	if detectedLayout != models.LayoutUnknown && detectedLayout != d.prevLayout {
		events = append(events, d.factory.New(models.EventLayoutChanged, nowMs, nowMs, 1.0, models.LayoutChangedPayload{
			From: d.prevLayout,
			To:   detectedLayout,
		}))
		d.prevLayout = detectedLayout
	}

	nextState := d.projectState(prevState, regions, trackRes, nowMs)

	return Result{NextState: nextState, Events: events}
}

// debounce requires a field to hold its new value for cfg.DebounceSnapshots
// consecutive calls before confirming the transition. It reports the
// event type/payload to emit, if the field transitioned this call,
// but never stamps the event itself — the caller assigns ids only once
// it knows the event's final position in the emitted sequence.
func (d *Detector) debounce(vid models.VID, field string, incoming bool,
	onType models.EventType, onPayload interface{},
	offType models.EventType, offPayload interface{}) (models.EventType, interface{}, bool) {

	k := key(vid, field)
	confirmed := d.confirmed[k] // zero value false is the correct default

	if incoming == confirmed {
		delete(d.pending, k)
		return "", nil, false
	}

	p, exists := d.pending[k]
	if !exists || p.value != incoming {
		d.pending[k] = pendingSignal{value: incoming, seenCount: 1}
		return "", nil, false
	}

	p.seenCount++
	if p.seenCount < d.cfg.DebounceSnapshots {
		d.pending[k] = p
		return "", nil, false
	}

	delete(d.pending, k)
	d.confirmed[k] = incoming

	if incoming {
		return onType, onPayload, true
	}
	return offType, offPayload, true
}

func (d *Detector) purge(vid models.VID) {
	prefix := vid.String() + ":"
	for k := range d.pending {
		if hasPrefix(k, prefix) {
			delete(d.pending, k)
		}
	}
	for k := range d.confirmed {
		if hasPrefix(k, prefix) {
			delete(d.confirmed, k)
		}
	}
	for k := range d.slideHash {
		if hasPrefix(k, prefix) {
			delete(d.slideHash, k)
		}
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func (d *Detector) projectState(prevState models.VisualState, regions []models.DetectedRegion, trackRes tracker.Result, nowMs int64) models.VisualState {
	next := models.NewVisualState()
	next.Layout = d.prevLayout
	next.SnapshotCount = prevState.SnapshotCount + 1
	next.LastSnapshotMs = nowMs

	type presenter struct {
		vid       models.VID
		slideHash string
	}
	var presenters []presenter

	for ri, region := range regions {
		vid := trackRes.Assignments[ri]
		if vid.IsZero() {
			continue
		}
		entry, _ := d.tracker.Entry(vid)

		handRaised := d.confirmed[key(vid, "handRaised")]
		isPresenting := d.confirmed[key(vid, "isPresenting")]

		sig := models.Signals{
			HandRaised:      &handRaised,
			IsPresenting:    &isPresenting,
			CameraOn:        region.Signals.CameraOn,
			IsActiveSpeaker: region.Signals.IsActiveSpeaker,
		}
		if isPresenting {
			sig.SlideHash = d.slideHash[key(vid, "slideHash")]
		}

		vs := models.VIDState{
			VID:         vid,
			LastSeenMs:  entry.LastSeenMs,
			BBox:        entry.BBox,
			Kind:        entry.Kind,
			Signals:     sig,
			Confidence:  entry.Confidence,
			Fingerprint: entry.Fingerprint,
		}
		if prev, ok := prevState.VIDs[vid]; ok {
			vs.AudioSID = prev.AudioSID
		}
		next.VIDs[vid] = vs

		if isPresenting {
			presenters = append(presenters, presenter{vid: vid, slideHash: sig.SlideHash})
		}
	}

	if len(presenters) > 0 {
		// first presenter in region-input order wins (documented tie-break)
		first := presenters[0]
		next.ScreenShare = models.ScreenShareState{Active: true, VID: first.vid, SlideHash: first.slideHash}
	}

	next.RecomputeHandRaisedCount()

	return next
}
