package types

import (
	"fmt"
	"strings"
)

// Chain is one of the networks the bridge holds a custodial wallet on.
type Chain string

const (
	ChainXRPL     Chain = "xrpl"
	ChainEthereum Chain = "ethereum"
	ChainBSC      Chain = "bsc"
	ChainBitcoin  Chain = "bitcoin"
)

func (c Chain) ToString() string {
	return string(c)
}

func FromStringToChain(s string) (Chain, error) {
	switch strings.ToLower(s) {
	case "xrpl":
		return ChainXRPL, nil
	case "ethereum":
		return ChainEthereum, nil
	case "bsc":
		return ChainBSC, nil
	case "bitcoin":
		return ChainBitcoin, nil
	default:
		return "", fmt.Errorf("unsupported chain: %s", s)
	}
}

// TokenSymbol identifies a bridgeable asset. Every symbol lives on exactly one chain.
type TokenSymbol string

const (
	TokenXRP  TokenSymbol = "XRP"
	TokenRDL  TokenSymbol = "RDL"
	TokenETH  TokenSymbol = "ETH"
	TokenUSDT TokenSymbol = "USDT"
	TokenBNB  TokenSymbol = "BNB"
	TokenBTC  TokenSymbol = "BTC"
)

func (t TokenSymbol) ToString() string {
	return string(t)
}

type TokenInfo struct {
	Symbol TokenSymbol
	Chain  Chain
	// Decimals is the native precision of the token, i.e. the number of
	// fractional digits of its smallest on-chain unit.
	Decimals int32
	// Native is false for issued/contract tokens that need extra chain config
	// (XRPL issuer, ERC20 contract) to be moved.
	Native bool
}

var tokens = map[TokenSymbol]TokenInfo{
	TokenXRP:  {Symbol: TokenXRP, Chain: ChainXRPL, Decimals: 6, Native: true},
	TokenRDL:  {Symbol: TokenRDL, Chain: ChainXRPL, Decimals: 6, Native: false},
	TokenETH:  {Symbol: TokenETH, Chain: ChainEthereum, Decimals: 18, Native: true},
	TokenUSDT: {Symbol: TokenUSDT, Chain: ChainEthereum, Decimals: 6, Native: false},
	TokenBNB:  {Symbol: TokenBNB, Chain: ChainBSC, Decimals: 18, Native: true},
	TokenBTC:  {Symbol: TokenBTC, Chain: ChainBitcoin, Decimals: 8, Native: true},
}

// LookupToken returns the token info for a symbol, case-insensitively.
func LookupToken(symbol string) (TokenInfo, error) {
	info, ok := tokens[TokenSymbol(strings.ToUpper(strings.TrimSpace(symbol)))]
	if !ok {
		return TokenInfo{}, fmt.Errorf("unsupported token: %s", symbol)
	}
	return info, nil
}

// MustLookupToken is LookupToken for symbols already validated by the route table.
func MustLookupToken(symbol TokenSymbol) TokenInfo {
	info, err := LookupToken(string(symbol))
	if err != nil {
		panic(err)
	}
	return info
}
