package handlers

import (
	"errors"
	"net/http"

	"shade_control/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateAlertRequest is the payload for raising a facility alert.
type CreateAlertRequest struct {
	Description string `json:"description" binding:"required" example:"Shade stuck halfway"`
	Location    string `json:"location" binding:"required" example:"B2 / floor 3 / room 312"`
	Priority    string `json:"priority" binding:"required" example:"high"` // low | medium | high
	AssignedTo  int    `json:"assigned_to_user_id,omitempty" example:"4"`
}

// @Summary      Create an alert
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Param        body  body  CreateAlertRequest  true  "Alert payload"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/alerts [post]
// @Security     BearerAuth
func (h *Handler) createAlert(c *gin.Context) {
	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	id, err := h.services.Alerts.Create(c.Request.Context(), service.CreateAlertParams{
		Description: req.Description,
		Location:    req.Location,
		Priority:    req.Priority,
		CreatedBy:   callerID(c),
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "alert_id": id})
}

// @Summary      List all alerts
// @Tags         alerts
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/alerts [get]
// @Security     BearerAuth
func (h *Handler) listAlerts(c *gin.Context) {
	alerts, err := h.services.Alerts.List(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadAlerts, "alerts_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(alerts), "alerts": alerts})
}

type setAlertStatusRequest struct {
	Status string `json:"status" binding:"required"` // active | acknowledged | resolved
}

// @Summary      Acknowledge or resolve an alert
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Param        id    path  int                    true  "Alert ID"
// @Param        body  body  setAlertStatusRequest  true  "Status payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/alerts/{id}/status [patch]
// @Security     BearerAuth
func (h *Handler) setAlertStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req setAlertStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	if err := h.services.Alerts.SetStatus(c.Request.Context(), id, req.Status, callerID(c)); err != nil {
		if errors.Is(err, service.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": req.Status})
}
