package handlers

import (
	"github.com/gin-gonic/gin"

	"todo-list/backend/internal/middleware"
	"todo-list/backend/internal/monitoring"
)

type RouterConfig struct {
	Manager     TaskManager
	Monitoring  *monitoring.Registry
	RateLimiter *middleware.RateLimiter
	// CORS is applied when non-nil.
	CORS gin.HandlerFunc
	// AccessLog adds gin's request logger.
	AccessLog bool
}

func NewRouter(config RouterConfig) *gin.Engine {
	router := gin.New()
	if config.AccessLog {
		router.Use(gin.Logger())
	}
	router.Use(middleware.RecoveryWithLog())
	if config.CORS != nil {
		router.Use(config.CORS)
	}

	registry := config.Monitoring
	if registry == nil {
		registry = monitoring.NewRegistry()
	}
	router.Use(registry.MetricsMiddleware())

	router.GET("/health", registry.HealthHandler())
	router.GET("/ready", registry.ReadinessHandler())
	router.GET("/live", registry.LivenessHandler())
	router.GET("/metrics", registry.MetricsHandler())

	api := router.Group("/api")
	if config.RateLimiter != nil {
		api.Use(config.RateLimiter.Middleware())
	}
	RegisterTaskRoutes(api, NewTaskHandler(config.Manager))

	return router
}

func RegisterTaskRoutes(api *gin.RouterGroup, h *TaskHandler) {
	api.GET("/tasks", h.GetTasks)
	api.POST("/tasks", h.CreateTask)
	api.GET("/tasks/summary", h.GetSummary)
	api.POST("/tasks/clear-completed", h.ClearCompleted)
	api.PUT("/tasks/:id", h.UpdateTask)
	api.PATCH("/tasks/:id/toggle", h.ToggleTask)
	api.DELETE("/tasks/:id", h.DeleteTask)
	api.GET("/defaults", h.GetDefaults)
	api.GET("/options", h.GetOptions)
}
