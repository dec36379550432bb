package handlers

import (
	"errors"
	"net/http"

	"shade_control/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Scheduler status
// @Description  Reports whether the reconciliation timer is armed, the last tick time, and the live settings.
// @Tags         scheduler
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/scheduler/status [get]
// @Security     BearerAuth
func (h *Handler) schedulerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Scheduler.Status())
}

// UpdateSettingsRequest is the partial settings payload; omitted fields are
// left unchanged.
type UpdateSettingsRequest struct {
	IntervalMinutes       *int  `json:"interval_minutes,omitempty" example:"1"`
	OverrideWindowMinutes *int  `json:"override_window_minutes,omitempty" example:"30"`
	Paused                *bool `json:"paused,omitempty" example:"false"`
}

// @Summary      Update scheduler settings
// @Description  Partial update. An interval change re-arms the timer with an immediate tick.
// @Tags         scheduler
// @Accept       json
// @Produce      json
// @Param        body  body  UpdateSettingsRequest  true  "Settings patch"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/scheduler/settings [patch]
// @Security     BearerAuth
func (h *Handler) updateSchedulerSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	settings, err := h.services.Scheduler.UpdateSettings(service.SettingsPatch{
		IntervalMinutes:       req.IntervalMinutes,
		OverrideWindowMinutes: req.OverrideWindowMinutes,
		Paused:                req.Paused,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInterval) || errors.Is(err, service.ErrInvalidWindow) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to update settings", "scheduler_settings_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "settings": settings})
}

// @Summary      Run the scheduler now
// @Description  Triggers one out-of-band reconciliation tick for diagnostics.
// @Tags         scheduler
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/scheduler/run [post]
// @Security     BearerAuth
func (h *Handler) runSchedulerNow(c *gin.Context) {
	at, err := h.services.Scheduler.RunNow(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "tick failed", "scheduler_run_now_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "ran_at": at})
}
