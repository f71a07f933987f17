package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/parceldesk/shiptrack-backend/internal/db"
	"github.com/parceldesk/shiptrack-backend/internal/graphql"
	httpapi "github.com/parceldesk/shiptrack-backend/internal/http"
	httpH "github.com/parceldesk/shiptrack-backend/internal/http/handlers"
	httpMW "github.com/parceldesk/shiptrack-backend/internal/http/middleware"
	"github.com/parceldesk/shiptrack-backend/internal/observability"
	"github.com/parceldesk/shiptrack-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Shipment *httpH.ShipmentHandler
	GraphQL  *graphql.Handler
}

func wireHandlers(log *logger.Logger, pg *db.PostgresService, services Services) (Handlers, error) {
	log.Info("Wiring handlers...")
	gqlHandler, err := graphql.NewHandler(log, services.Shipment)
	if err != nil {
		return Handlers{}, fmt.Errorf("build graphql schema: %w", err)
	}
	return Handlers{
		Health:   httpH.NewHealthHandler(pg),
		Shipment: httpH.NewShipmentHandler(log, services.Shipment),
		GraphQL:  gqlHandler,
	}, nil
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Identity),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware, services Services) *gin.Engine {
	return httpapi.NewRouter(httpapi.RouterConfig{
		Log:             log,
		Notifier:        services.Notifier,
		HealthHandler:   handlers.Health,
		ShipmentHandler: handlers.Shipment,
		GraphQLHandler:  handlers.GraphQL,
		AuthMiddleware:  middleware.Auth,
		TracingEnabled:  observability.Enabled(),
	})
}
