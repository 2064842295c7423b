package dto

import "github.com/your-org/visualdelta/internal/models"

// VisualEventWire is the over-the-wire shape of a models.VisualEvent —
// identical field-for-field, kept separate so the transport layer
// never has to reach into internal/models for JSON tags.
type VisualEventWire struct {
	ID         int64            `json:"id"`
	TsEmitMs   int64            `json:"ts_emit_ms"`
	TsObsMs    int64            `json:"ts_obs_ms"`
	Source     string           `json:"source"`
	Confidence float64          `json:"confidence"`
	Type       models.EventType `json:"type"`
	Payload    interface{}      `json:"payload"`
}

func EventToWire(e models.VisualEvent) VisualEventWire {
	return VisualEventWire{
		ID:         e.ID,
		TsEmitMs:   e.TsEmitMs,
		TsObsMs:    e.TsObsMs,
		Source:     e.Source,
		Confidence: e.Confidence,
		Type:       e.Type,
		Payload:    e.Payload,
	}
}

func EventsToWire(events []models.VisualEvent) []VisualEventWire {
	out := make([]VisualEventWire, 0, len(events))
	for _, e := range events {
		out = append(out, EventToWire(e))
	}
	return out
}

// VIDStateWire mirrors models.VIDState for JSON responses.
type VIDStateWire struct {
	VID         string            `json:"vid"`
	LastSeenMs  int64             `json:"lastSeenMs"`
	BBox        models.BBox       `json:"bbox"`
	Kind        models.RegionKind `json:"kind"`
	Signals     models.Signals    `json:"signals"`
	Confidence  float64           `json:"confidence"`
	AudioSID    string            `json:"audioSid,omitempty"`
	Fingerprint string            `json:"fingerprint"`
}

// VisualStateWire mirrors models.VisualState for JSON responses.
type VisualStateWire struct {
	VIDs            []VIDStateWire       `json:"vids"`
	ScreenShare     ScreenShareStateWire `json:"screenShare"`
	Layout          models.LayoutType    `json:"layout"`
	HandRaisedCount int                  `json:"handRaisedCount"`
	LastSnapshotMs  int64                `json:"lastSnapshotMs"`
	SnapshotCount   int64                `json:"snapshotCount"`
}

type ScreenShareStateWire struct {
	Active    bool   `json:"active"`
	VID       string `json:"vid,omitempty"`
	SlideHash string `json:"slideHash,omitempty"`
}

func StateToWire(s models.VisualState) VisualStateWire {
	vids := make([]VIDStateWire, 0, len(s.VIDs))
	for _, vs := range s.VIDs {
		w := VIDStateWire{
			VID:         vs.VID.String(),
			LastSeenMs:  vs.LastSeenMs,
			BBox:        vs.BBox,
			Kind:        vs.Kind,
			Signals:     vs.Signals,
			Confidence:  vs.Confidence,
			Fingerprint: vs.Fingerprint,
		}
		if vs.AudioSID != nil {
			w.AudioSID = string(*vs.AudioSID)
		}
		vids = append(vids, w)
	}

	ss := ScreenShareStateWire{Active: s.ScreenShare.Active, SlideHash: s.ScreenShare.SlideHash}
	if ss.Active {
		ss.VID = s.ScreenShare.VID.String()
	}

	return VisualStateWire{
		VIDs:            vids,
		ScreenShare:     ss,
		Layout:          s.Layout,
		HandRaisedCount: s.HandRaisedCount,
		LastSnapshotMs:  s.LastSnapshotMs,
		SnapshotCount:   s.SnapshotCount,
	}
}

// WSMessageType tags the three frame kinds the event stream emits.
type WSMessageType string

const (
	WSVisualEvents    WSMessageType = "visual_events"
	WSVisualStateSync WSMessageType = "visual_state_sync"
	WSVisualError     WSMessageType = "visual_error"
)

// WSMessage is one text frame on the /visual/events WebSocket.
type WSMessage struct {
	Type   WSMessageType     `json:"type"`
	CallID string            `json:"call_id"`
	Events []VisualEventWire `json:"events,omitempty"`
	State  *VisualStateWire  `json:"state,omitempty"`
	Error  string            `json:"error,omitempty"`
}
