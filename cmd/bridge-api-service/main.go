package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/xrpbridge/bridge-api-service/cmd/bridge-api-service/cli"
	"github.com/xrpbridge/bridge-api-service/cmd/bridge-api-service/scripts"
	"github.com/xrpbridge/bridge-api-service/internal/api"
	"github.com/xrpbridge/bridge-api-service/internal/clients"
	"github.com/xrpbridge/bridge-api-service/internal/config"
	"github.com/xrpbridge/bridge-api-service/internal/db/model"
	"github.com/xrpbridge/bridge-api-service/internal/jobs"
	"github.com/xrpbridge/bridge-api-service/internal/observability/healthcheck"
	"github.com/xrpbridge/bridge-api-service/internal/observability/metrics"
	"github.com/xrpbridge/bridge-api-service/internal/queue"
	"github.com/xrpbridge/bridge-api-service/internal/services"
	"github.com/xrpbridge/bridge-api-service/internal/types"
)

const shutdownTimeout = 30 * time.Second

func init() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("failed to load .env file")
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// setup cli commands and flags
	if err := cli.Setup(); err != nil {
		log.Fatal().Err(err).Msg("error while setting up cli")
	}

	// load config
	cfgPath := cli.GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	routesPath := cli.GetRoutesPath()
	routes, err := types.NewSupportedRoutes(routesPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading supported routes file: %s", routesPath))
	}

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	err = model.Setup(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up bridge db model")
	}

	bridgeClients, err := clients.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up chain and price clients")
	}
	services, err := services.New(ctx, cfg, routes, bridgeClients)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up bridge services layer")
	}
	queues := queue.New(&cfg.Queue, services)

	// Check if the replay flag is set
	if cli.GetReplayFlag() {
		log.Info().Msg("Replay flag is set. Starting replay of unprocessable messages.")
		err := scripts.ReplayUnprocessableMessages(ctx, queues, services.DbClient)
		if err != nil {
			log.Fatal().Err(err).Msg("error while replaying unprocessable messages")
		}
		return
	}

	queues.StartReceivingMessages()

	if err := healthcheck.StartHealthCheckCron(ctx, queues, cfg.Server.HealthCheckInterval); err != nil {
		log.Fatal().Err(err).Msg("error while starting health check cron")
	}

	if cfg.Bridge.AutoRestart.Enabled {
		sweeper := jobs.NewRestartSweeper(&cfg.Bridge.AutoRestart, services, queues)
		if err := sweeper.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("error while starting restart sweeper")
		}
	}

	apiServer, err := api.New(ctx, cfg, services)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up bridge api service")
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		log.Info().Msg("Shutting down bridge api service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error while shutting down api server")
		}
		queues.StopReceivingMessages()
	}()

	if err = apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("error while starting bridge api service")
	}
	<-shutdownDone
}
