package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"huddle/config"
	"huddle/di"
	"huddle/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	service := di.InitializeService()

	// the index must mirror persisted bookings before any request is served
	if _, err := service.Bookings.Hydrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to hydrate availability index")
	}

	if err := service.Janitor.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start availability janitor")
	}
	defer service.Janitor.Stop()

	service.HTTP.Serve()
}
