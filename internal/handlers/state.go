package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Corsox-Tech/pathlight-backend/internal/services"
)

type StateHandler struct {
	svc services.ActivityStateService
}

func NewStateHandler(svc services.ActivityStateService) *StateHandler {
	return &StateHandler{svc: svc}
}

type recordStateRequest struct {
	CompletionPercent int        `json:"completion_percent"`
	CompletionStatus  string     `json:"completion_status" binding:"required"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

// PUT /api/enrollments/:id/activities/:activityID/state
//
// Called by the state-writing subsystems (assessment, coaching, LMS sync).
func (h *StateHandler) RecordState(c *gin.Context) {
	enrollmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_enrollment_id", fmt.Errorf("invalid enrollment id"))
		return
	}
	activityID, err := uuid.Parse(c.Param("activityID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_activity_id", fmt.Errorf("invalid activity id"))
		return
	}

	var req recordStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	state, err := h.svc.RecordState(c.Request.Context(), enrollmentID, activityID, req.CompletionPercent, req.CompletionStatus, req.CompletedAt)
	if err != nil {
		if state != nil {
			// write landed, recompute did not; the rollup will catch up on
			// the next event, but the caller should know
			RespondError(c, http.StatusInternalServerError, "recompute_failed", err)
			return
		}
		RespondError(c, http.StatusBadRequest, "record_state_failed", err)
		return
	}
	RespondOK(c, state)
}

// GET /api/enrollments/:id/activities/:activityID/state
func (h *StateHandler) GetState(c *gin.Context) {
	enrollmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_enrollment_id", fmt.Errorf("invalid enrollment id"))
		return
	}
	activityID, err := uuid.Parse(c.Param("activityID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_activity_id", fmt.Errorf("invalid activity id"))
		return
	}

	state, err := h.svc.GetState(c.Request.Context(), enrollmentID, activityID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_state_failed", err)
		return
	}
	if state == nil {
		RespondError(c, http.StatusNotFound, "state_not_found", fmt.Errorf("no state recorded"))
		return
	}
	RespondOK(c, state)
}
