package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/parceldesk/shiptrack-backend/internal/graphql"
	"github.com/parceldesk/shiptrack-backend/internal/http/handlers"
	"github.com/parceldesk/shiptrack-backend/internal/http/middleware"
	"github.com/parceldesk/shiptrack-backend/internal/platform/logger"
	"github.com/parceldesk/shiptrack-backend/internal/services"
)

type RouterConfig struct {
	Log             *logger.Logger
	Notifier        services.Notifier
	HealthHandler   *handlers.HealthHandler
	ShipmentHandler *handlers.ShipmentHandler
	GraphQLHandler  *graphql.Handler
	AuthMiddleware  *middleware.AuthMiddleware
	TracingEnabled  bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware("shiptrack-backend"))
	}
	router.Use(middleware.RequestLogger(cfg.Log, cfg.Notifier))
	router.Use(middleware.CORS())

	// Public: the health probe bypasses auth.
	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)

	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	shipments := api.Group("/shipments")
	{
		shipments.GET("", cfg.ShipmentHandler.List)
		shipments.GET("/:order_id", cfg.ShipmentHandler.GetByOrderID)
		shipments.POST("", cfg.ShipmentHandler.Create)
		shipments.POST("/verify", cfg.ShipmentHandler.Verify)
		shipments.PUT("/:id/delivery-status", cfg.ShipmentHandler.UpdateStatus)
		shipments.PUT("/:id/timestamp", cfg.ShipmentHandler.TouchTimestamp)
		shipments.DELETE("/:id", cfg.ShipmentHandler.Delete)
		shipments.DELETE("", cfg.ShipmentHandler.DeleteAll)
	}

	api.POST("/graphql", cfg.GraphQLHandler.Serve)

	return router
}
