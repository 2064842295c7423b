package models

// EventType tags a VisualEvent variant.
type EventType string

const (
	EventSnapshotReceived   EventType = "snapshot_received"
	EventVIDAppeared        EventType = "vid_appeared"
	EventVIDDisappeared     EventType = "vid_disappeared"
	EventHandRaised         EventType = "hand_raised"
	EventHandLowered        EventType = "hand_lowered"
	EventScreenShareStarted EventType = "screen_share_started"
	EventScreenShareStopped EventType = "screen_share_stopped"
	EventSlideChanged       EventType = "slide_changed"
	EventLayoutChanged      EventType = "layout_changed"
	EventAudioVideoLink     EventType = "audio_video_link"
)

// EventSource tags every event emitted by this pipeline.
const EventSource = "visual_delta"

// VisualEvent is an immutable, ID-stamped, timestamped fact about a
// change in the world model. Construct these only through
// EventFactory.New so id assignment stays monotonic within a session.
type VisualEvent struct {
	ID         int64       `json:"id"`
	TsEmitMs   int64       `json:"ts_emit_ms"`
	TsObsMs    int64       `json:"ts_obs_ms"`
	Source     string      `json:"source"`
	Confidence float64     `json:"confidence"`
	Type       EventType   `json:"type"`
	Payload    interface{} `json:"payload"`
}

// --- Typed payloads, one per event variant ---

type VIDAppearedPayload struct {
	VID  VID        `json:"vid"`
	Kind RegionKind `json:"kind"`
	BBox BBox       `json:"bbox"`
}

type VIDDisappearedPayload struct {
	VID VID `json:"vid"`
}

type HandRaisedPayload struct {
	VID VID `json:"vid"`
}

type HandLoweredPayload struct {
	VID VID `json:"vid"`
}

type ScreenShareStartedPayload struct {
	VID       VID    `json:"vid"`
	SlideHash string `json:"slideHash,omitempty"`
}

type ScreenShareStoppedPayload struct {
	VID VID `json:"vid"`
}

type SlideChangedPayload struct {
	VID      VID    `json:"vid"`
	FromHash string `json:"fromHash,omitempty"`
	ToHash   string `json:"toHash"`
}

type LayoutChangedPayload struct {
	From LayoutType `json:"from"`
	To   LayoutType `json:"to"`
}

type AudioVideoLinkPayload struct {
	VID      VID      `json:"vid"`
	AudioSID AudioSID `json:"audioSid"`
}

type SnapshotReceivedPayload struct{}

// EventFactory stamps monotonically increasing ids onto events for a
// single session. A multi-session deployment needs one factory per
// session so ids stay monotonic within a session without colliding
// across sessions — callers must not share one factory across
// pipelines.
type EventFactory struct {
	nextID int64
}

// NewEventFactory returns a factory whose first id is 1.
func NewEventFactory() *EventFactory {
	return &EventFactory{nextID: 1}
}

// New constructs and stamps a VisualEvent.
func (f *EventFactory) New(typ EventType, tsEmitMs, tsObsMs int64, confidence float64, payload interface{}) VisualEvent {
	id := f.nextID
	f.nextID++
	return VisualEvent{
		ID:         id,
		TsEmitMs:   tsEmitMs,
		TsObsMs:    tsObsMs,
		Source:     EventSource,
		Confidence: confidence,
		Type:       typ,
		Payload:    payload,
	}
}
