package dto

import "github.com/your-org/visualdelta/internal/models"

// ClientAnalysis is the caller-supplied region detection result for
// one snapshot. The core never decodes bytes_base64 itself — it has
// no region detector of its own — so a submission without this field
// cannot be processed and is rejected.
type ClientAnalysis struct {
	Regions []models.DetectedRegion `json:"regions"`
	Layout  models.LayoutType       `json:"layout"`
}

// AudioActivityInput is an optional concurrent-speech signal used only
// by the AD policy gate's overlap avoidance — never by the tracker or
// detector.
type AudioActivityInput struct {
	IsSpeechActive bool    `json:"isSpeechActive"`
	Confidence     float64 `json:"confidence"`
	LastSpeechMs   int64   `json:"lastSpeechMs"`
}

// SnapshotRequest is the body of POST /v1/calls/{callId}/visual/snapshot.
type SnapshotRequest struct {
	TsObsMs        int64               `json:"ts_obs_ms" binding:"required"`
	ContentHash    string              `json:"content_hash"`
	Mime           string              `json:"mime" binding:"required,oneof=image/jpeg image/webp"`
	Width          int                 `json:"width" binding:"required"`
	Height         int                 `json:"height" binding:"required"`
	BytesBase64    string              `json:"bytes_base64" binding:"required"`
	ClientAnalysis *ClientAnalysis     `json:"client_analysis,omitempty"`
	AudioActivity  *AudioActivityInput `json:"audio_activity,omitempty"`
}

// SnapshotResponse is the body returned by the snapshot endpoint.
type SnapshotResponse struct {
	Success bool              `json:"success"`
	Events  []VisualEventWire `json:"events"`
	State   *VisualStateWire  `json:"state,omitempty"`
	Error   string            `json:"error,omitempty"`
}
