package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CallSessionStatus tracks whether a call is currently expected to be
// submitting snapshots.
type CallSessionStatus string

const (
	CallSessionActive CallSessionStatus = "active"
	CallSessionClosed CallSessionStatus = "closed"
)

// CallSession is the only durable record this service keeps: which
// calls exist and how their pipeline is configured. It never carries
// visual content, fingerprints, or events.
type CallSession struct {
	ID              uuid.UUID         `json:"id" db:"id"`
	Status          CallSessionStatus `json:"status" db:"status"`
	ConfigOverrides json.RawMessage   `json:"config_overrides,omitempty" db:"config_overrides"`
	LastSnapshotMs  int64             `json:"last_snapshot_ms" db:"last_snapshot_ms"`
	SnapshotCount   int64             `json:"snapshot_count" db:"snapshot_count"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}
