package handlers

import (
	"net/http"
	"strconv"

	"shade_control/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errLoadMetrics    = "failed to load metrics"
	errLoadActivities = "failed to load activities"
	errLoadAlerts     = "failed to load alerts"
)

// @Summary      Dashboard metrics
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/dashboard/metrics [get]
// @Security     BearerAuth
func (h *Handler) dashboardMetrics(c *gin.Context) {
	metrics, err := h.services.Dashboard.Metrics(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadMetrics, "dashboard_metrics_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": metrics})
}

// @Summary      Recent activity log
// @Tags         dashboard
// @Produce      json
// @Param        type     query  string  false  "Entry type"  Enums(schedule,override,device,alert,system)
// @Param        user_id  query  int     false  "Filter by user"
// @Param        limit    query  int     false  "Max entries (clamped to 50)"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/dashboard/activities [get]
// @Security     BearerAuth
func (h *Handler) dashboardActivities(c *gin.Context) {
	var f service.ActivityFilter
	f.Type = c.Query("type")
	if qs := c.Query("user_id"); qs != "" {
		if v, err := strconv.Atoi(qs); err == nil && v > 0 {
			f.UserID = v
		}
	}
	if qs := c.Query("limit"); qs != "" {
		if v, err := strconv.Atoi(qs); err == nil && v > 0 {
			f.Limit = v
		}
	}

	entries, err := h.services.Dashboard.Activities(c.Request.Context(), f)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadActivities, "dashboard_activities_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(entries), "activities": entries})
}

// @Summary      Open alerts (active and acknowledged)
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/dashboard/alerts [get]
// @Security     BearerAuth
func (h *Handler) dashboardAlerts(c *gin.Context) {
	alerts, err := h.services.Dashboard.OpenAlerts(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadAlerts, "dashboard_alerts_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(alerts), "alerts": alerts})
}
