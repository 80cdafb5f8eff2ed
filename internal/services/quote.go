package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/xrpbridge/bridge-api-service/internal/types"
)

// BridgeFeeRate is charged on the inbound amount.
var BridgeFeeRate = decimal.RequireFromString("0.01")

const (
	exchangeRatePrecision = 18
	usdPrecision          = 2
)

type QuotePublic struct {
	FromToken       string `json:"fromToken"`
	ToToken         string `json:"toToken"`
	Amount          string `json:"amount"`
	BridgeFee       string `json:"bridgeFee"`
	ExchangeRate    string `json:"exchangeRate"`
	EstimatedOutput string `json:"estimatedOutput"`
	UsdValue        string `json:"usdValue"`
}

type quote struct {
	route        *types.Route
	amountIn     decimal.Decimal
	feeAmount    decimal.Decimal
	exchangeRate decimal.Decimal
	amountOut    decimal.Decimal
	usdValue     decimal.Decimal
}

func (q *quote) toPublic() *QuotePublic {
	return &QuotePublic{
		FromToken:       q.route.Source.Symbol.ToString(),
		ToToken:         q.route.Destination.Symbol.ToString(),
		Amount:          q.amountIn.String(),
		BridgeFee:       q.feeAmount.String(),
		ExchangeRate:    q.exchangeRate.String(),
		EstimatedOutput: q.amountOut.String(),
		UsdValue:        q.usdValue.StringFixed(usdPrecision),
	}
}

// Quote previews a bridge of amountIn source tokens without writing anything.
func (s *Services) Quote(ctx context.Context, fromToken, toToken, amount string) (*QuotePublic, *types.Error) {
	route, err := s.findRoute(fromToken, toToken)
	if err != nil {
		return nil, err
	}
	amountIn, err := parseAmount(route, amount)
	if err != nil {
		return nil, err
	}
	q, err := s.quote(ctx, route, amountIn)
	if err != nil {
		return nil, err
	}
	return q.toPublic(), nil
}

func (s *Services) findRoute(fromToken, toToken string) (*types.Route, *types.Error) {
	route, err := s.routes.Find(fromToken, toToken)
	if err != nil {
		return nil, types.NewError(types.StatusCodeFor(types.InvalidRoute), types.InvalidRoute, err)
	}
	return route, nil
}

// parseAmount checks the amount is positive, above the route minimum and not
// finer than the source token precision.
func parseAmount(route *types.Route, amount string) (decimal.Decimal, *types.Error) {
	amountIn, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, types.NewBridgeError(types.ValidationError, "amount must be a decimal number")
	}
	if !amountIn.IsPositive() {
		return decimal.Zero, types.NewBridgeError(types.ValidationError, "amount must be greater than 0")
	}
	if amountIn.LessThan(route.MinAmount) {
		return decimal.Zero, types.NewBridgeError(types.ValidationError, fmt.Sprintf(
			"amount must be at least %s %s", route.MinAmount, route.Source.Symbol,
		))
	}
	if !amountIn.Equal(amountIn.Truncate(route.Source.Decimals)) {
		return decimal.Zero, types.NewBridgeError(types.ValidationError, fmt.Sprintf(
			"amount has more than %d decimals", route.Source.Decimals,
		))
	}
	return amountIn, nil
}

func (s *Services) quote(ctx context.Context, route *types.Route, amountIn decimal.Decimal) (*quote, *types.Error) {
	sourceUsd, err := s.prices.UsdPrice(ctx, route.Source.Symbol)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("token", route.Source.Symbol.ToString()).Msg("source token price unavailable")
		return nil, types.NewError(types.StatusCodeFor(types.PriceUnavailable), types.PriceUnavailable, err)
	}
	destinationUsd, err := s.prices.UsdPrice(ctx, route.Destination.Symbol)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("token", route.Destination.Symbol.ToString()).Msg("destination token price unavailable")
		return nil, types.NewError(types.StatusCodeFor(types.PriceUnavailable), types.PriceUnavailable, err)
	}

	fee, rate, out, calcErr := computeQuote(amountIn, sourceUsd, destinationUsd, route.Destination.Decimals)
	if calcErr != nil {
		return nil, types.NewError(types.StatusCodeFor(types.PriceUnavailable), types.PriceUnavailable, calcErr)
	}
	return &quote{
		route:        route,
		amountIn:     amountIn,
		feeAmount:    fee,
		exchangeRate: rate,
		amountOut:    out,
		usdValue:     amountIn.Mul(sourceUsd).Round(usdPrecision),
	}, nil
}

// computeQuote returns the fee, the exchange rate and the output amount rounded
// down to the destination precision.
func computeQuote(
	amountIn, sourceUsd, destinationUsd decimal.Decimal, destinationDecimals int32,
) (fee, rate, amountOut decimal.Decimal, err error) {
	if !sourceUsd.IsPositive() || !destinationUsd.IsPositive() {
		return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("token prices must be positive")
	}
	fee = amountIn.Mul(BridgeFeeRate)
	rate = sourceUsd.DivRound(destinationUsd, exchangeRatePrecision)
	amountOut = amountIn.Sub(fee).Mul(rate).RoundFloor(destinationDecimals)
	return fee, rate, amountOut, nil
}
