package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Corsox-Tech/pathlight-backend/internal/services"
	"github.com/Corsox-Tech/pathlight-backend/internal/signal"
)

type RollupHandler struct {
	svc services.RollupService
	bus signal.Bus
}

func NewRollupHandler(svc services.RollupService, bus signal.Bus) *RollupHandler {
	return &RollupHandler{svc: svc, bus: bus}
}

// GET /api/enrollments/:id/rollup
func (h *RollupHandler) GetRollup(c *gin.Context) {
	enrollmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_enrollment_id", fmt.Errorf("invalid enrollment id"))
		return
	}

	rollup, err := h.svc.GetRollup(c.Request.Context(), enrollmentID)
	if errors.Is(err, services.ErrEnrollmentNotFound) {
		RespondError(c, http.StatusNotFound, "enrollment_not_found", err)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "rollup_failed", err)
		return
	}
	RespondOK(c, rollup)
}

// POST /api/enrollments/:id/rollup/recompute
//
// The recompute signal endpoint. External subsystems hit it after mutating
// completion state when they are not wired to the bus directly.
func (h *RollupHandler) RequestRecompute(c *gin.Context) {
	enrollmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_enrollment_id", fmt.Errorf("invalid enrollment id"))
		return
	}

	if err := h.bus.Publish(c.Request.Context(), signal.Event{EnrollmentID: enrollmentID}); err != nil {
		RespondError(c, http.StatusInternalServerError, "recompute_failed", err)
		return
	}
	c.Status(http.StatusAccepted)
}
