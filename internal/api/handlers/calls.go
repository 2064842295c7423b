package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/visualdelta/internal/models"
	"github.com/your-org/visualdelta/internal/pipeline"
	"github.com/your-org/visualdelta/internal/storage"
	"github.com/your-org/visualdelta/pkg/dto"
)

// CallHandler manages the call-session registry: which calls exist
// and how their pipeline is configured, before any snapshot arrives.
type CallHandler struct {
	db       *storage.PostgresStore
	registry *pipeline.Registry
}

func NewCallHandler(db *storage.PostgresStore, registry *pipeline.Registry) *CallHandler {
	return &CallHandler{db: db, registry: registry}
}

func (h *CallHandler) Create(c *gin.Context) {
	var req dto.CreateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cs := &models.CallSession{ConfigOverrides: req.ConfigOverrides}
	if err := h.db.CreateCallSession(c.Request.Context(), cs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, callToResponse(cs))
}

func (h *CallHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("callId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid call id"})
		return
	}

	cs, err := h.db.GetCallSession(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "call not found"})
		return
	}

	c.JSON(http.StatusOK, callToResponse(cs))
}

func (h *CallHandler) List(c *gin.Context) {
	sessions, err := h.db.ListCallSessions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.CallResponse, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, callToResponse(&sessions[i]))
	}

	c.JSON(http.StatusOK, dto.CallListResponse{Calls: resp, Total: len(resp)})
}

func (h *CallHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("callId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid call id"})
		return
	}

	if err := h.db.CloseCallSession(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.registry.Delete(id)

	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

func callToResponse(cs *models.CallSession) dto.CallResponse {
	return dto.CallResponse{
		ID:              cs.ID,
		Status:          string(cs.Status),
		ConfigOverrides: cs.ConfigOverrides,
		LastSnapshotMs:  cs.LastSnapshotMs,
		SnapshotCount:   cs.SnapshotCount,
		CreatedAt:       cs.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       cs.UpdatedAt.Format(time.RFC3339),
	}
}
