package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"appointer/config"
	"appointer/di"
	"appointer/helper"
	"appointer/shared/logger"
)

const closeTimeout = 5 * time.Second

func main() {
	cfg := config.Get()

	logger.InitLogger(cfg.Server.Env)

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	app := di.InitializeApp()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	if cfg.Kafka.Enable {
		wg.Add(1)

		go func() {
			defer wg.Done()

			err := app.Payment.Run(ctx, app.Kafka, cfg.Kafka.ConsumerGroup, cfg.Kafka.Topics.PaymentOutcomes)
			if err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("Payment consumer stopped")
			}
		}()
	}

	app.HTTP.Serve()

	stop()
	wg.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	if err := app.Kafka.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Kafka client")
	}

	if err := app.Otel.Shutdown(closeCtx); err != nil {
		log.Error().Err(err).Msg("Failed to flush traces")
	}

	app.DB.Close()

	log.Info().Msg("Shut down.")
}
