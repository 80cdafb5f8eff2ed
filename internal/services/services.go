package services

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/xrpbridge/bridge-api-service/internal/cache"
	"github.com/xrpbridge/bridge-api-service/internal/chains"
	"github.com/xrpbridge/bridge-api-service/internal/clients"
	"github.com/xrpbridge/bridge-api-service/internal/clients/price"
	"github.com/xrpbridge/bridge-api-service/internal/config"
	"github.com/xrpbridge/bridge-api-service/internal/db"
	"github.com/xrpbridge/bridge-api-service/internal/types"
)

// Service layer contains the bridge pipeline and is used to interact with
// the database, the price source and the chain adapters.
type Services struct {
	DbClient db.DBClient
	cfg      *config.Config
	routes   *types.SupportedRoutes
	prices   price.Source
	chains   *chains.Registry
	cache    cache.Cache
}

func New(
	ctx context.Context, cfg *config.Config, routes *types.SupportedRoutes, clients *clients.Clients,
) (*Services, error) {
	if err := clients.Chains.Require(routes.Chains()); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("a supported route uses a chain without configuration")
		return nil, err
	}
	dbClient, err := db.New(ctx, cfg.Db)
	if err != nil {
		log.Ctx(ctx).Fatal().Err(err).Msg("error while creating db client")
		return nil, err
	}
	return &Services{
		DbClient: dbClient,
		cfg:      cfg,
		routes:   routes,
		prices:   clients.Price,
		chains:   clients.Chains,
		cache:    clients.Cache,
	}, nil
}

// DoHealthCheck checks the health of the services by pinging the database and,
// when configured, the price cache.
func (s *Services) DoHealthCheck(ctx context.Context) error {
	if err := s.DbClient.Ping(ctx); err != nil {
		return err
	}
	if s.cache != nil {
		return s.cache.Ping(ctx)
	}
	return nil
}

func (s *Services) SaveUnprocessableMessages(ctx context.Context, messageBody, receipt, queueName, reason string) error {
	err := s.DbClient.SaveUnprocessableMessage(ctx, messageBody, receipt, queueName, reason)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while saving unprocessable message")
		return types.NewErrorWithMsg(http.StatusInternalServerError, types.InternalServiceError, "error while saving unprocessable message")
	}
	return nil
}

func (s *Services) adapterFor(ctx context.Context, chain types.Chain) (chains.Adapter, *types.Error) {
	adapter, err := s.chains.Get(chain)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("chain", chain.ToString()).Msg("no adapter for chain")
		return nil, types.NewInternalServiceError(err)
	}
	return adapter, nil
}
