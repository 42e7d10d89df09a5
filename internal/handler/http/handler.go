package http

import (
	"github.com/shiptrack-io/shiptrack/internal/logger"
	"github.com/shiptrack-io/shiptrack/internal/service"
)

type Handler struct {
	services *service.Services

	logger *logger.Logger
}

func NewHandler(services *service.Services, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		logger:   logger,
	}
}
