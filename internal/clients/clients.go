package clients

import (
	"fmt"

	"github.com/xrpbridge/bridge-api-service/internal/cache"
	"github.com/xrpbridge/bridge-api-service/internal/chains"
	"github.com/xrpbridge/bridge-api-service/internal/chains/evm"
	"github.com/xrpbridge/bridge-api-service/internal/chains/utxo"
	"github.com/xrpbridge/bridge-api-service/internal/chains/xrpl"
	"github.com/xrpbridge/bridge-api-service/internal/clients/price"
	"github.com/xrpbridge/bridge-api-service/internal/config"
	"github.com/xrpbridge/bridge-api-service/internal/types"
)

type Clients struct {
	Price  price.Source
	Chains *chains.Registry
	// Cache is nil when redis is not configured
	Cache cache.Cache
}

func New(cfg *config.Config) (*Clients, error) {
	var priceSource price.Source = price.NewPriceClient(&cfg.Price)
	var priceCache cache.Cache
	if cfg.Redis != nil {
		priceCache = cache.NewRedisCache(cfg.Redis)
		priceSource = price.NewCachedSource(priceSource, priceCache, cfg.Redis.PriceTTL)
	}

	var adapters []chains.Adapter
	if cfg.Chains.Xrpl != nil {
		adapters = append(adapters, xrpl.New(cfg.Chains.Xrpl, cfg.Secrets.XrplSecret))
	}
	evmChains := map[types.Chain]*config.EvmConfig{
		types.ChainEthereum: cfg.Chains.Ethereum,
		types.ChainBSC:      cfg.Chains.Bsc,
	}
	for chain, evmCfg := range evmChains {
		if evmCfg == nil {
			continue
		}
		a, err := evm.New(chain, evmCfg, cfg.Secrets.EvmPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to init %s adapter: %w", chain, err)
		}
		adapters = append(adapters, a)
	}
	if cfg.Chains.Bitcoin != nil {
		adapters = append(adapters, utxo.New(
			cfg.Chains.Bitcoin, cfg.Secrets.BtcRpcUser, cfg.Secrets.BtcRpcPassword,
		))
	}

	return &Clients{
		Price:  priceSource,
		Chains: chains.NewRegistry(adapters...),
		Cache:  priceCache,
	}, nil
}
