package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Corsox-Tech/pathlight-backend/internal/services"
)

type OverrideHandler struct {
	svc services.OverrideService
}

func NewOverrideHandler(svc services.OverrideService) *OverrideHandler {
	return &OverrideHandler{svc: svc}
}

type applyOverrideRequest struct {
	OverrideType string     `json:"override_type" binding:"required"`
	AppliedBy    *uuid.UUID `json:"applied_by,omitempty"`
	Reason       string     `json:"reason,omitempty"`
}

// POST /api/enrollments/:id/activities/:activityID/overrides
func (h *OverrideHandler) ApplyOverride(c *gin.Context) {
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

	var req applyOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	override, err := h.svc.Apply(c.Request.Context(), enrollmentID, activityID, req.OverrideType, req.AppliedBy, req.Reason)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "apply_override_failed", err)
		return
	}
	c.JSON(http.StatusCreated, override)
}

// GET /api/enrollments/:id/activities/:activityID/overrides
func (h *OverrideHandler) ListOverrides(c *gin.Context) {
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

	overrides, err := h.svc.History(c.Request.Context(), enrollmentID, activityID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_overrides_failed", err)
		return
	}
	RespondOK(c, gin.H{"overrides": overrides})
}
