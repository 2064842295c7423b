// Package models holds the data types shared by every stage of the
// visual-delta pipeline: the region a caller detects, the continuity
// handle the tracker mints for it, and the world-model the pipeline
// maintains across snapshots.
package models

import "fmt"

// BBox is a rectangle normalized to the composite frame: each field
// lies in [0,1] and w>0, h>0, x+w<=1+epsilon, y+h<=1+epsilon.
type BBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

const bboxEpsilon = 1e-6

// Valid reports whether the box satisfies the normalized-rectangle
// invariants. Callers should skip (not panic on) an invalid box.
func (b BBox) Valid() bool {
	if b.W <= 0 || b.H <= 0 {
		return false
	}
	if b.X < 0 || b.Y < 0 {
		return false
	}
	if b.X+b.W > 1+bboxEpsilon || b.Y+b.H > 1+bboxEpsilon {
		return false
	}
	return true
}

// Center returns the box's center point.
func (b BBox) Center() (cx, cy float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// RegionKind classifies a detected region.
type RegionKind string

const (
	RegionTile        RegionKind = "tile"
	RegionScreenShare RegionKind = "screen_share"
	RegionUnknown     RegionKind = "unknown"
)

// LayoutType is the overall arrangement of the meeting UI.
type LayoutType string

const (
	LayoutGrid         LayoutType = "grid"
	LayoutSpeaker      LayoutType = "speaker"
	LayoutPresentation LayoutType = "presentation"
	LayoutUnknown      LayoutType = "unknown"
)

// VID is an opaque, session-local continuity handle. It is never an
// identity: two different VIDs may well be the same physical
// participant, and the same VID is never proof of who is present.
type VID struct {
	n int
}

// NewVID wraps a 1-based handle number into a VID. Used internally by
// VIDTracker and by tests that need a specific handle value.
func NewVID(n int) VID { return VID{n: n} }

// String renders the handle in its wire form: "v" + the integer.
func (v VID) String() string {
	return fmt.Sprintf("v%d", v.n)
}

// IsZero reports whether v is the unset VID (handle 0, never minted).
func (v VID) IsZero() bool { return v.n == 0 }

// Less orders VIDs by handle number, giving callers a stable tie-break
// without exposing the handle itself.
func (v VID) Less(other VID) bool { return v.n < other.n }

// MarshalText renders v in its wire form so any encoding that defers
// to TextMarshaler — encoding/json included, for both map keys and
// plain struct fields — emits "v1" rather than the unexported field.
func (v VID) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses v's wire form back into a handle number.
func (v *VID) UnmarshalText(text []byte) error {
	var n int
	if _, err := fmt.Sscanf(string(text), "v%d", &n); err != nil {
		return fmt.Errorf("invalid vid %q: %w", text, err)
	}
	v.n = n
	return nil
}

// AudioSID is an opaque external reference to an audio stream. The
// core never interprets its contents.
type AudioSID string

// Signals is the partial set of instantaneous per-region state a
// caller may report. Missing booleans are treated as false.
type Signals struct {
	HandRaised      *bool  `json:"handRaised,omitempty"`
	CameraOn        *bool  `json:"cameraOn,omitempty"`
	IsActiveSpeaker *bool  `json:"isActiveSpeaker,omitempty"`
	IsPresenting    *bool  `json:"isPresenting,omitempty"`
	SlideHash       string `json:"slideHash,omitempty"`
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// HandRaisedOr returns the signal value, defaulting to false when unset.
func (s Signals) HandRaisedOr() bool { return boolOr(s.HandRaised, false) }

// IsPresentingOr returns the signal value, defaulting to false when unset.
func (s Signals) IsPresentingOr() bool { return boolOr(s.IsPresenting, false) }

// CameraOnOr returns the signal value, defaulting to false when unset.
func (s Signals) CameraOnOr() bool { return boolOr(s.CameraOn, false) }

// IsActiveSpeakerOr returns the signal value, defaulting to false when unset.
func (s Signals) IsActiveSpeakerOr() bool { return boolOr(s.IsActiveSpeaker, false) }

// DetectedRegion is one region of a snapshot as reported by the
// caller's region-detection collaborator.
type DetectedRegion struct {
	BBox        BBox
	Kind        RegionKind
	Fingerprint string
	Signals     Signals
}

// VIDEntry is the tracker's private record for a live handle. Kind is
// immutable for the entry's lifetime.
type VIDEntry struct {
	VID         VID
	BBox        BBox
	Kind        RegionKind
	Fingerprint string
	LastSeenMs  int64
	Confidence  float64
}

// VIDState is the world-model projection of one handle.
type VIDState struct {
	VID         VID
	LastSeenMs  int64
	BBox        BBox
	Kind        RegionKind
	Signals     Signals
	Confidence  float64
	AudioSID    *AudioSID
	Fingerprint string
}

// ScreenShareState is the top-level screen-share projection.
type ScreenShareState struct {
	Active    bool
	VID       VID
	SlideHash string
}

// VisualState is the full world model: one VIDState per live handle,
// plus screen-share and layout projections.
type VisualState struct {
	VIDs            map[VID]VIDState
	ScreenShare     ScreenShareState
	Layout          LayoutType
	HandRaisedCount int
	LastSnapshotMs  int64
	SnapshotCount   int64
}

// NewVisualState returns the zero/initial world model.
func NewVisualState() VisualState {
	return VisualState{
		VIDs:        make(map[VID]VIDState),
		ScreenShare: ScreenShareState{},
		Layout:      LayoutUnknown,
	}
}

// Clone returns a deep-enough copy for safe mutation by the reducer:
// the VIDs map is copied, VIDState values are copied by value.
func (s VisualState) Clone() VisualState {
	out := s
	out.VIDs = make(map[VID]VIDState, len(s.VIDs))
	for k, v := range s.VIDs {
		out.VIDs[k] = v
	}
	return out
}

// RecomputeHandRaisedCount sets HandRaisedCount from the current
// signals rather than trusting any cached counter, since callers must
// not trust a stale value after any VIDs mutation.
func (s *VisualState) RecomputeHandRaisedCount() {
	n := 0
	for _, vs := range s.VIDs {
		if vs.Signals.HandRaisedOr() {
			n++
		}
	}
	s.HandRaisedCount = n
}
