package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/shiptrack-io/shiptrack/internal/config"
	myHTTP "github.com/shiptrack-io/shiptrack/internal/handler/http"
	"github.com/shiptrack-io/shiptrack/internal/logger"
	"github.com/shiptrack-io/shiptrack/internal/server"
	"github.com/shiptrack-io/shiptrack/internal/service"
	"github.com/shiptrack-io/shiptrack/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	// a missing .env file is fine, real env vars still apply
	_ = godotenv.Load()

	log := logger.NewLogger("ship-track-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	storages, err := store.NewStorages(context.Background(), cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer func() {
		if err := storages.Close(); err != nil {
			log.Err(err).Msg("error closing storages")
		}
	}()

	services := service.NewServices(storages, *cfg, log)
	handler := myHTTP.NewHandler(services, log)

	srv, err := server.NewServer(handler, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
