package app

import (
	"github.com/parceldesk/shiptrack-backend/internal/platform/envutil"
)

type Config struct {
	Environment     string
	HTTPAddr        string
	JWTSecretKey    string
	StatsServiceURL string
	KafkaBrokerURL  string
	KafkaTopic      string
}

func LoadConfig() Config {
	return Config{
		Environment:     envutil.String("APP_ENV", "development"),
		HTTPAddr:        envutil.String("HTTP_ADDR", ":8080"),
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		StatsServiceURL: envutil.String("STATS_SERVICE_URL", ""),
		KafkaBrokerURL:  envutil.String("KAFKA_BROKER", ""),
		KafkaTopic:      envutil.String("KAFKA_TOPIC", "shipment.events"),
	}
}
