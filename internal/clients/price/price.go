package price

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	baseclient "github.com/xrpbridge/bridge-api-service/internal/clients/base"
	"github.com/xrpbridge/bridge-api-service/internal/config"
	"github.com/xrpbridge/bridge-api-service/internal/types"
)

// simplePriceResponse maps asset id to quote currency to price,
// e.g. {"ripple": {"usd": 0.52}}.
type simplePriceResponse map[string]map[string]decimal.Decimal

type PriceClient struct {
	config        *config.PriceConfig
	httpClient    *http.Client
	defaultHeader map[string]string
}

func NewPriceClient(config *config.PriceConfig) *PriceClient {
	defaultHeader := map[string]string{
		"Accept": "application/json",
	}
	if config.ApiKey != "" {
		defaultHeader["x-cg-pro-api-key"] = config.ApiKey
	}
	return &PriceClient{
		config:        config,
		httpClient:    &http.Client{},
		defaultHeader: defaultHeader,
	}
}

// Necessary for the BaseClient interface
func (c *PriceClient) GetBaseURL() string {
	return c.config.Host
}

func (c *PriceClient) GetDefaultRequestTimeout() int {
	return c.config.Timeout
}

func (c *PriceClient) GetHttpClient() *http.Client {
	return c.httpClient
}

// UsdPrice fetches the current USD price of a token from a CoinGecko compatible
// /simple/price endpoint.
func (c *PriceClient) UsdPrice(ctx context.Context, symbol types.TokenSymbol) (decimal.Decimal, *types.Error) {
	assetID, ok := c.config.AssetIDs[symbol.ToString()]
	if !ok {
		return decimal.Zero, types.NewBridgeError(
			types.PriceUnavailable, fmt.Sprintf("no price feed configured for %s", symbol),
		)
	}
	opts := &baseclient.BaseClientOptions{
		Path:    fmt.Sprintf("/simple/price?ids=%s&vs_currencies=usd", url.QueryEscape(assetID)),
		Headers: c.defaultHeader,
	}

	resp, err := baseclient.SendRequest[any, simplePriceResponse](
		ctx, c, http.MethodGet, opts, nil,
	)
	if err != nil {
		return decimal.Zero, types.NewError(
			types.StatusCodeFor(types.PriceUnavailable), types.PriceUnavailable, err,
		)
	}

	usd, ok := (*resp)[assetID]["usd"]
	if !ok || !usd.IsPositive() {
		return decimal.Zero, types.NewBridgeError(
			types.PriceUnavailable, fmt.Sprintf("price for %s is unavailable", symbol),
		)
	}
	return usd, nil
}
