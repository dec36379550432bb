package handlers

import (
	"shade_control/internal/logger"
	"shade_control/internal/models"
	"shade_control/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Live dashboard stream (HTTP upgrade) — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.login)
		auth.GET("/me", h.authMiddleware, h.me)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.authMiddleware)
	{
		h.registerAreaRoutes(api)
		h.registerShadeRoutes(api)
		h.registerScheduleRoutes(api)
		h.registerSchedulerRoutes(api)
		h.registerAlertRoutes(api)
		h.registerDashboardRoutes(api)
		h.registerUserRoutes(api)
	}
}

func (h *Handler) registerAreaRoutes(api *gin.RouterGroup) {
	areas := api.Group("/areas")
	{
		areas.GET("", h.listAreas)
		areas.POST("", h.requireRole(models.RoleAdmin), h.createArea)
		areas.GET("/:id/shades", h.listShadesByArea)
	}
}

func (h *Handler) registerShadeRoutes(api *gin.RouterGroup) {
	shades := api.Group("/shades")
	{
		shades.GET("", h.listShades)
		shades.POST("", h.requireRole(models.RoleAdmin, models.RoleMaintenance), h.createShade)
		// Body example: {"override_type":"partial","position":40,"reason":"glare"}
		shades.POST("/:id/override", h.overrideShade)
		shades.GET("/:id/schedules", h.listSchedules)
	}
	api.GET("/overrides", h.listOverrides)
}

func (h *Handler) registerScheduleRoutes(api *gin.RouterGroup) {
	schedules := api.Group("/schedules")
	{
		schedules.POST("", h.requireRole(models.RoleAdmin, models.RoleMaintenance, models.RolePlanner), h.createSchedule)
		schedules.PATCH("/:id/active", h.requireRole(models.RoleAdmin, models.RoleMaintenance, models.RolePlanner), h.setScheduleActive)
		schedules.DELETE("/:id", h.requireRole(models.RoleAdmin, models.RoleMaintenance), h.deleteSchedule)
	}
}

func (h *Handler) registerSchedulerRoutes(api *gin.RouterGroup) {
	scheduler := api.Group("/scheduler")
	{
		scheduler.GET("/status", h.schedulerStatus)
		scheduler.PATCH("/settings", h.requireRole(models.RoleAdmin, models.RoleMaintenance), h.updateSchedulerSettings)
		scheduler.POST("/run", h.requireRole(models.RoleAdmin, models.RoleMaintenance), h.runSchedulerNow)
	}
}

func (h *Handler) registerAlertRoutes(api *gin.RouterGroup) {
	alerts := api.Group("/alerts")
	{
		alerts.GET("", h.listAlerts)
		alerts.POST("", h.createAlert)
		alerts.PATCH("/:id/status", h.requireRole(models.RoleAdmin, models.RoleMaintenance), h.setAlertStatus)
	}
}

func (h *Handler) registerDashboardRoutes(api *gin.RouterGroup) {
	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("/metrics", h.dashboardMetrics)
		dashboard.GET("/alerts", h.dashboardAlerts)
		dashboard.GET("/activities", h.dashboardActivities)
	}
}

func (h *Handler) registerUserRoutes(api *gin.RouterGroup) {
	users := api.Group("/users", h.requireRole(models.RoleAdmin))
	{
		users.GET("", h.listUsers)
		users.POST("", h.createUser)
	}
}
