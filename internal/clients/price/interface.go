package price

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xrpbridge/bridge-api-service/internal/types"
)

// Source quotes the USD price of a bridgeable token.
type Source interface {
	UsdPrice(ctx context.Context, symbol types.TokenSymbol) (decimal.Decimal, *types.Error)
}
