package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/visualdelta/internal/adgate"
	"github.com/your-org/visualdelta/internal/eventbus"
	"github.com/your-org/visualdelta/internal/observability"
	"github.com/your-org/visualdelta/internal/pipeline"
	"github.com/your-org/visualdelta/internal/storage"
	"github.com/your-org/visualdelta/pkg/dto"
)

// SnapshotHandler drives one call's pipeline per submission. The core
// never sees bytes_base64 — decoding it here only validates the
// caller sent well-formed base64, the content itself is discarded.
type SnapshotHandler struct {
	db       *storage.PostgresStore
	registry *pipeline.Registry
	producer *eventbus.Producer
}

func NewSnapshotHandler(db *storage.PostgresStore, registry *pipeline.Registry, producer *eventbus.Producer) *SnapshotHandler {
	return &SnapshotHandler{db: db, registry: registry, producer: producer}
}

func (h *SnapshotHandler) Submit(c *gin.Context) {
	callID, err := uuid.Parse(c.Param("callId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.SnapshotResponse{Success: false, Events: []dto.VisualEventWire{}, Error: "invalid call id"})
		return
	}

	var req dto.SnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.SnapshotResponse{Success: false, Events: []dto.VisualEventWire{}, Error: err.Error()})
		return
	}

	if _, err := base64.StdEncoding.DecodeString(req.BytesBase64); err != nil {
		c.JSON(http.StatusBadRequest, dto.SnapshotResponse{Success: false, Events: []dto.VisualEventWire{}, Error: "bytes_base64 is not valid base64"})
		return
	}

	if req.ClientAnalysis == nil {
		c.JSON(http.StatusUnprocessableEntity, dto.SnapshotResponse{
			Success: false, Events: []dto.VisualEventWire{},
			Error: "client_analysis is required: this service performs no server-side region detection",
		})
		return
	}

	var activity *adgate.AudioActivity
	if req.AudioActivity != nil {
		activity = &adgate.AudioActivity{
			IsSpeechActive: req.AudioActivity.IsSpeechActive,
			Confidence:     req.AudioActivity.Confidence,
			LastSpeechMs:   req.AudioActivity.LastSpeechMs,
		}
	}

	start := time.Now()
	p := h.registry.Get(callID)
	result := p.ProcessSnapshot(c.Request.Context(), req.ClientAnalysis.Regions, req.ClientAnalysis.Layout, req.TsObsMs, activity)
	observability.PipelineDuration.WithLabelValues("snapshot").Observe(time.Since(start).Seconds())

	observability.SnapshotsProcessed.WithLabelValues(callID.String()).Inc()
	for _, e := range result.Events {
		observability.EventsEmitted.WithLabelValues(string(e.Type)).Inc()
	}
	if result.SpokenText != "" {
		observability.ADLinesSpoken.WithLabelValues(string(result.SpokenEventType)).Inc()
	}

	if err := h.db.RecordSnapshot(c.Request.Context(), callID, req.TsObsMs); err != nil {
		slog.Warn("record snapshot", "call_id", callID, "error", err)
	}

	if h.producer != nil {
		ctx := c.Request.Context()
		for _, e := range result.Events {
			if err := h.producer.PublishEvent(ctx, callID.String(), dto.EventToWire(e)); err != nil {
				slog.Warn("publish visual event", "call_id", callID, "error", err)
			} else {
				observability.EventBusPublished.WithLabelValues(eventbus.VisualEventsSubjectBase).Inc()
			}
		}
	}

	state := dto.StateToWire(result.State)
	c.JSON(http.StatusOK, dto.SnapshotResponse{
		Success: true,
		Events:  dto.EventsToWire(result.Events),
		State:   &state,
	})
}
