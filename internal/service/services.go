package service

import (
	"github.com/shiptrack-io/shiptrack/internal/config"
	"github.com/shiptrack-io/shiptrack/internal/logger"
	"github.com/shiptrack-io/shiptrack/internal/store"
)

type Services struct {
	AuthService     AuthService
	ShipmentService ShipmentService
}

func NewServices(storages *store.Storages, cfg config.StructuredConfig, logger *logger.Logger) *Services {
	return &Services{
		AuthService:     NewAuthService(storages.Users, cfg.Auth, logger),
		ShipmentService: NewShipmentService(storages.Shipments, logger),
	}
}
