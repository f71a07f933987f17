package app

import (
	"io"

	"github.com/parceldesk/shiptrack-backend/internal/clients/events"
	"github.com/parceldesk/shiptrack-backend/internal/clients/requestlog"
	"github.com/parceldesk/shiptrack-backend/internal/clients/stats"
	"github.com/parceldesk/shiptrack-backend/internal/platform/logger"
	"github.com/parceldesk/shiptrack-backend/internal/services"
)

type Services struct {
	Identity services.IdentityService
	Shipment services.ShipmentService
	Notifier services.Notifier

	// Closed on shutdown, after the notifier has drained.
	sinkClosers []io.Closer
}

// wireServices builds the notifier's best-effort sinks first; any sink whose
// collaborator is unconfigured or unreachable stays nil and is simply skipped.
func wireServices(log *logger.Logger, cfg Config, repos Repos) Services {
	log.Info("Wiring services...")

	var sinkClosers []io.Closer

	var requestLogSink services.RequestLogSink
	if store, err := requestlog.NewRedisStore(log); err != nil {
		log.Warn("request log sink disabled", "error", err)
	} else {
		requestLogSink = store
		sinkClosers = append(sinkClosers, store)
	}

	var usageSink services.UsageSink
	if cfg.StatsServiceURL != "" {
		usageSink = stats.New(log, cfg.StatsServiceURL)
	} else {
		log.Warn("usage stats sink disabled, STATS_SERVICE_URL not set")
	}

	var eventSink services.EventSink
	if cfg.KafkaBrokerURL != "" {
		producer := events.NewProducer(log, cfg.KafkaBrokerURL, cfg.KafkaTopic)
		eventSink = producer
		sinkClosers = append(sinkClosers, producer)
	} else {
		log.Warn("event sink disabled, KAFKA_BROKER not set")
	}

	notifier := services.NewNotifier(log, requestLogSink, usageSink, eventSink)

	return Services{
		Identity:    services.NewIdentityService(log, cfg.JWTSecretKey),
		Shipment:    services.NewShipmentService(log, repos.Shipment, notifier),
		Notifier:    notifier,
		sinkClosers: sinkClosers,
	}
}
