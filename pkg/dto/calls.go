package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

type CreateCallRequest struct {
	ConfigOverrides json.RawMessage `json:"config_overrides,omitempty"`
}

type CallResponse struct {
	ID              uuid.UUID       `json:"id"`
	Status          string          `json:"status"`
	ConfigOverrides json.RawMessage `json:"config_overrides,omitempty"`
	LastSnapshotMs  int64           `json:"last_snapshot_ms"`
	SnapshotCount   int64           `json:"snapshot_count"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

type CallListResponse struct {
	Calls []CallResponse `json:"calls"`
	Total int            `json:"total"`
}
