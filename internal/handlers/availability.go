package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Corsox-Tech/pathlight-backend/internal/services"
)

type AvailabilityHandler struct {
	svc services.AvailabilityService
}

func NewAvailabilityHandler(svc services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

// GET /api/enrollments/:id/activities/:activityID/availability
//
// Optional "at" query (RFC 3339) pins the evaluation clock; dashboards use it
// to preview upcoming unlocks.
func (h *AvailabilityHandler) ComputeAvailability(c *gin.Context) {
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

	now := time.Now().UTC()
	if at := c.Query("at"); at != "" {
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_at", fmt.Errorf("invalid at timestamp"))
			return
		}
		now = parsed
	}

	decision, err := h.svc.ComputeAvailability(c.Request.Context(), enrollmentID, activityID, now)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "availability_failed", err)
		return
	}
	RespondOK(c, decision)
}
