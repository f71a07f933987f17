package app

import (
	"gorm.io/gorm"

	"github.com/parceldesk/shiptrack-backend/internal/platform/logger"
	"github.com/parceldesk/shiptrack-backend/internal/repos"
)

type Repos struct {
	Shipment repos.ShipmentRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Shipment: repos.NewShipmentRepo(db, log),
	}
}
