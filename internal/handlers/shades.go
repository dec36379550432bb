package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"shade_control/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errListShades      = "failed to load shades"
	errCreateShade     = "failed to create shade"
	errOverrideShade   = "failed to apply override"
	errListOverrides   = "failed to load overrides"
	errListAreas       = "failed to load areas"
	errInvalidIDParam  = "invalid id parameter"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// idParam parses the :id path parameter; writes a 400 and returns false on failure.
func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidIDParam})
		return 0, false
	}
	return id, true
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      List all shades
// @Tags         shades
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/shades [get]
// @Security     BearerAuth
func (h *Handler) listShades(c *gin.Context) {
	shades, err := h.services.Shades.List(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListShades, "shades_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(shades), "shades": shades})
}

// @Summary      List shades in an area
// @Tags         shades
// @Produce      json
// @Param        id  path  int  true  "Area ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/areas/{id}/shades [get]
// @Security     BearerAuth
func (h *Handler) listShadesByArea(c *gin.Context) {
	areaID, ok := idParam(c)
	if !ok {
		return
	}
	shades, err := h.services.Shades.ListByArea(c.Request.Context(), areaID)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListShades, "shades_list_by_area_failed", err, "area_id", areaID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(shades), "shades": shades})
}

// CreateShadeRequest is the payload for installing a new device.
type CreateShadeRequest struct {
	AreaID          int    `json:"area_id" binding:"required" example:"3"`
	Description     string `json:"description" binding:"required" example:"South window"`
	Type            string `json:"type" example:"roller"`
	CurrentPosition int    `json:"current_position" example:"0"`
	TargetPosition  int    `json:"target_position" example:"0"`
}

// @Summary      Install a shade device
// @Tags         shades
// @Accept       json
// @Produce      json
// @Param        body  body  CreateShadeRequest  true  "Shade payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/shades [post]
// @Security     BearerAuth
func (h *Handler) createShade(c *gin.Context) {
	var req CreateShadeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	id, err := h.services.Shades.Create(c.Request.Context(), service.CreateShadeParams{
		AreaID:          req.AreaID,
		Description:     req.Description,
		Type:            req.Type,
		CurrentPosition: req.CurrentPosition,
		TargetPosition:  req.TargetPosition,
		InstalledBy:     callerID(c),
	})
	if err != nil {
		if h.log != nil {
			h.log.Infow("shade_create_failed", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "shade_id": id})
}

// OverrideRequest is the payload for a manual position change.
type OverrideRequest struct {
	Type     string `json:"override_type" binding:"required" example:"partial"` // open | close | partial
	Position int    `json:"position" example:"40"`                              // used when override_type=partial
	Reason   string `json:"reason" example:"glare on screens"`
}

// @Summary      Manually override a shade position
// @Description  Suppresses automatic schedule execution for the device within the engine's override window.
// @Tags         shades
// @Accept       json
// @Produce      json
// @Param        id    path  int              true  "Shade ID"
// @Param        body  body  OverrideRequest  true  "Override payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/shades/{id}/override [post]
// @Security     BearerAuth
func (h *Handler) overrideShade(c *gin.Context) {
	shadeID, ok := idParam(c)
	if !ok {
		return
	}
	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	id, err := h.services.Shades.Override(c.Request.Context(), service.OverrideParams{
		ShadeID:  shadeID,
		UserID:   callerID(c),
		Type:     req.Type,
		Position: req.Position,
		Reason:   req.Reason,
	})
	if err != nil {
		if errors.Is(err, service.ErrShadeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusBadRequest, err.Error(), "shade_override_failed", err, "shade_id", shadeID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "override_id": id})
}

// @Summary      List active manual overrides
// @Tags         shades
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/overrides [get]
// @Security     BearerAuth
func (h *Handler) listOverrides(c *gin.Context) {
	overrides, err := h.services.Shades.ActiveOverrides(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListOverrides, "overrides_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(overrides), "overrides": overrides})
}

// @Summary      List areas grouped by building
// @Tags         areas
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/areas [get]
// @Security     BearerAuth
func (h *Handler) listAreas(c *gin.Context) {
	buildings, err := h.services.Areas.ListGrouped(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListAreas, "areas_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, buildings)
}

// CreateAreaRequest is the payload for registering a new area.
type CreateAreaRequest struct {
	BuildingNumber string `json:"building_number" binding:"required" example:"B2"`
	Floor          int    `json:"floor" example:"3"`
	Room           string `json:"room" binding:"required" example:"Conference"`
	RoomNumber     string `json:"room_number" example:"312"`
	Description    string `json:"description" example:"east wing"`
}

// @Summary      Create an area
// @Tags         areas
// @Accept       json
// @Produce      json
// @Param        body  body  CreateAreaRequest  true  "Area payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/areas [post]
// @Security     BearerAuth
func (h *Handler) createArea(c *gin.Context) {
	var req CreateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	id, err := h.services.Areas.Create(c.Request.Context(), service.CreateAreaParams{
		BuildingNumber: req.BuildingNumber,
		Floor:          req.Floor,
		Room:           req.Room,
		RoomNumber:     req.RoomNumber,
		Description:    req.Description,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "area_id": id})
}
