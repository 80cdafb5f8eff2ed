package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/xrpbridge/bridge-api-service/internal/types"
	"github.com/xrpbridge/bridge-api-service/internal/utils"
)

type ChainsConfig struct {
	Xrpl     *XrplConfig `mapstructure:"xrpl"`
	Ethereum *EvmConfig  `mapstructure:"ethereum"`
	Bsc      *EvmConfig  `mapstructure:"bsc"`
	Bitcoin  *UtxoConfig `mapstructure:"bitcoin"`
}

type IssuedTokenConfig struct {
	Currency string `mapstructure:"currency"`
	Issuer   string `mapstructure:"issuer"`
}

type XrplConfig struct {
	RpcUrl       string                       `mapstructure:"rpc-url"`
	BankAddress  string                       `mapstructure:"bank-address"`
	ExplorerUrl  string                       `mapstructure:"explorer-url"`
	Timeout      time.Duration                `mapstructure:"timeout"`
	IssuedTokens map[string]IssuedTokenConfig `mapstructure:"issued-tokens"`
}

type EvmConfig struct {
	RpcUrls          []string          `mapstructure:"rpc-urls"`
	ChainID          int64             `mapstructure:"chain-id"`
	BankAddress      string            `mapstructure:"bank-address"`
	MinConfirmations uint64            `mapstructure:"min-confirmations"`
	ExplorerUrl      string            `mapstructure:"explorer-url"`
	Timeout          time.Duration     `mapstructure:"timeout"`
	TokenContracts   map[string]string `mapstructure:"token-contracts"`
}

type UtxoConfig struct {
	RpcUrl           string        `mapstructure:"rpc-url"`
	Wallet           string        `mapstructure:"wallet"`
	BankAddress      string        `mapstructure:"bank-address"`
	MinConfirmations int64         `mapstructure:"min-confirmations"`
	BTCNet           string        `mapstructure:"btc-net"`
	ExplorerUrl      string        `mapstructure:"explorer-url"`
	Timeout          time.Duration `mapstructure:"timeout"`

	BTCNetParam *chaincfg.Params
}

func (cfg *ChainsConfig) Validate() error {
	if cfg.Xrpl == nil && cfg.Ethereum == nil && cfg.Bsc == nil && cfg.Bitcoin == nil {
		return errors.New("at least one chain must be configured")
	}
	if cfg.Xrpl != nil {
		if err := cfg.Xrpl.Validate(); err != nil {
			return fmt.Errorf("xrpl: %w", err)
		}
	}
	if cfg.Ethereum != nil {
		if err := cfg.Ethereum.Validate(); err != nil {
			return fmt.Errorf("ethereum: %w", err)
		}
	}
	if cfg.Bsc != nil {
		if err := cfg.Bsc.Validate(); err != nil {
			return fmt.Errorf("bsc: %w", err)
		}
	}
	if cfg.Bitcoin != nil {
		if err := cfg.Bitcoin.Validate(); err != nil {
			return fmt.Errorf("bitcoin: %w", err)
		}
	}
	return nil
}

// Configured reports whether the given chain has a config section
func (cfg *ChainsConfig) Configured(chain types.Chain) bool {
	switch chain {
	case types.ChainXRPL:
		return cfg.Xrpl != nil
	case types.ChainEthereum:
		return cfg.Ethereum != nil
	case types.ChainBSC:
		return cfg.Bsc != nil
	case types.ChainBitcoin:
		return cfg.Bitcoin != nil
	default:
		return false
	}
}

func (cfg *XrplConfig) Validate() error {
	if err := validateHttpUrl(cfg.RpcUrl, "rpc-url"); err != nil {
		return err
	}
	if err := utils.ValidateXrplAddress(cfg.BankAddress); err != nil {
		return fmt.Errorf("invalid bank-address: %w", err)
	}
	if err := validateExplorerUrl(cfg.ExplorerUrl); err != nil {
		return err
	}
	if cfg.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	// viper lowercases map keys, token symbols are upper case
	normalized := make(map[string]IssuedTokenConfig, len(cfg.IssuedTokens))
	for symbol, issued := range cfg.IssuedTokens {
		normalized[strings.ToUpper(symbol)] = issued
	}
	cfg.IssuedTokens = normalized
	for symbol, issued := range cfg.IssuedTokens {
		if issued.Currency == "" {
			return fmt.Errorf("issued token %s is missing a currency code", symbol)
		}
		if err := utils.ValidateXrplAddress(issued.Issuer); err != nil {
			return fmt.Errorf("issued token %s has an invalid issuer: %w", symbol, err)
		}
	}
	return nil
}

func (cfg *EvmConfig) Validate() error {
	if len(cfg.RpcUrls) == 0 {
		return errors.New("rpc-urls cannot be empty")
	}
	for _, rpcUrl := range cfg.RpcUrls {
		if err := validateHttpUrl(rpcUrl, "rpc-urls"); err != nil {
			return err
		}
	}
	if cfg.ChainID <= 0 {
		return errors.New("chain-id must be positive")
	}
	if err := utils.ValidateEvmAddress(cfg.BankAddress); err != nil {
		return fmt.Errorf("invalid bank-address: %w", err)
	}
	if err := validateExplorerUrl(cfg.ExplorerUrl); err != nil {
		return err
	}
	if cfg.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	normalized := make(map[string]string, len(cfg.TokenContracts))
	for symbol, contract := range cfg.TokenContracts {
		normalized[strings.ToUpper(symbol)] = contract
	}
	cfg.TokenContracts = normalized
	for symbol, contract := range cfg.TokenContracts {
		if err := utils.ValidateEvmAddress(contract); err != nil {
			return fmt.Errorf("token contract for %s is invalid: %w", symbol, err)
		}
	}
	return nil
}

func (cfg *UtxoConfig) Validate() error {
	if err := validateHttpUrl(cfg.RpcUrl, "rpc-url"); err != nil {
		return err
	}
	btcNet, err := utils.GetBtcNetParamesFromString(cfg.BTCNet)
	if err != nil {
		return errors.New("invalid btc-net")
	}
	cfg.BTCNetParam = btcNet

	if err := utils.ValidateBtcAddress(cfg.BankAddress, btcNet); err != nil {
		return fmt.Errorf("invalid bank-address: %w", err)
	}
	if cfg.MinConfirmations <= 0 {
		return errors.New("min-confirmations must be positive")
	}
	if err := validateExplorerUrl(cfg.ExplorerUrl); err != nil {
		return err
	}
	if cfg.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}

func validateHttpUrl(raw string, field string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	parsedURL, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("invalid %s", field)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s must start with http or https", field)
	}
	return nil
}

// validateExplorerUrl requires the explorer host root, adapters append the
// per-chain transaction path themselves.
func validateExplorerUrl(raw string) error {
	if err := validateHttpUrl(raw, "explorer-url"); err != nil {
		return err
	}
	parsedURL, _ := url.Parse(raw)
	if strings.Trim(parsedURL.Path, "/") != "" {
		return fmt.Errorf("explorer-url must be the explorer root without a path, got %q", raw)
	}
	return nil
}
