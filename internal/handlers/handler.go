package handlers

import (
	"purpleair_display/internal/logger"
	"purpleair_display/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "purpleair_display/docs"
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

	// OTA session endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// Live reading stream (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth/ota")
	{
		auth.GET("/challenge", h.otaChallenge)
		auth.POST("", h.otaSignIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerReadingRoutes(api)

		protected := api.Group("", h.otaMiddleware)
		h.registerLogRoutes(protected)
		h.registerFirmwareRoutes(protected)
	}
}

func (h *Handler) registerReadingRoutes(api *gin.RouterGroup) {
	api.GET("/reading", h.getReading)
	api.GET("/readings", h.getReadings)
	api.GET("/display", h.getDisplay)
	api.GET("/device", h.getDevice)
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}

func (h *Handler) registerFirmwareRoutes(api *gin.RouterGroup) {
	ota := api.Group("/ota")
	{
		ota.POST("/firmware", h.uploadFirmware)
		ota.GET("/firmware", h.getFirmware)
	}
}
