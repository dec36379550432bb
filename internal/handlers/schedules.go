package handlers

import (
	"errors"
	"net/http"

	"shade_control/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errListSchedules  = "failed to load schedules"
	errDeleteSchedule = "failed to delete schedule"
)

// @Summary      List schedules for a shade
// @Tags         schedules
// @Produce      json
// @Param        id  path  int  true  "Shade ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/shades/{id}/schedules [get]
// @Security     BearerAuth
func (h *Handler) listSchedules(c *gin.Context) {
	shadeID, ok := idParam(c)
	if !ok {
		return
	}
	schedules, err := h.services.Schedules.ListByShade(c.Request.Context(), shadeID)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListSchedules, "schedules_list_failed", err, "shade_id", shadeID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(schedules), "schedules": schedules})
}

// CreateScheduleRequest is the payload for a new automation rule.
type CreateScheduleRequest struct {
	ShadeID        int    `json:"shade_id" binding:"required" example:"7"`
	Name           string `json:"name" binding:"required" example:"Morning Open"`
	DayOfWeek      string `json:"day_of_week" binding:"required" example:"daily"` // monday..sunday | daily
	StartTime      string `json:"start_time" binding:"required" example:"08:00"`
	EndTime        string `json:"end_time" example:"18:00"`
	TargetPosition int    `json:"target_position" example:"80"`
}

// @Summary      Create a schedule
// @Tags         schedules
// @Accept       json
// @Produce      json
// @Param        body  body  CreateScheduleRequest  true  "Schedule payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/schedules [post]
// @Security     BearerAuth
func (h *Handler) createSchedule(c *gin.Context) {
	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	id, err := h.services.Schedules.Create(c.Request.Context(), service.CreateScheduleParams{
		ShadeID:        req.ShadeID,
		Name:           req.Name,
		DayOfWeek:      req.DayOfWeek,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		TargetPosition: req.TargetPosition,
		CreatedBy:      callerID(c),
	})
	if err != nil {
		if h.log != nil {
			h.log.Infow("schedule_create_failed", "name", req.Name, "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "schedule_id": id})
}

type setActiveRequest struct {
	Active *bool `json:"is_active" binding:"required"`
}

// @Summary      Activate or deactivate a schedule
// @Tags         schedules
// @Accept       json
// @Produce      json
// @Param        id    path  int               true  "Schedule ID"
// @Param        body  body  setActiveRequest  true  "Active flag"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/schedules/{id}/active [patch]
// @Security     BearerAuth
func (h *Handler) setScheduleActive(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	if err := h.services.Schedules.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to update schedule", "schedule_set_active_failed", err, "schedule_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "is_active": *req.Active})
}

// @Summary      Delete a schedule
// @Tags         schedules
// @Produce      json
// @Param        id  path  int  true  "Schedule ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/schedules/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteSchedule(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.services.Schedules.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrScheduleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errDeleteSchedule, "schedule_delete_failed", err, "schedule_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
