package config

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Secrets holds the custodial signer material, read from BRIDGE_* env variables.
type Secrets struct {
	XrplSecret     string `envconfig:"XRPL_SECRET"`
	EvmPrivateKey  string `envconfig:"EVM_PRIVATE_KEY"`
	BtcRpcUser     string `envconfig:"BTC_RPC_USER"`
	BtcRpcPassword string `envconfig:"BTC_RPC_PASSWORD"`
}

func LoadSecrets() (*Secrets, error) {
	var s Secrets
	if err := envconfig.Process("bridge", &s); err != nil {
		return nil, fmt.Errorf("failed to load secrets from env: %w", err)
	}
	return &s, nil
}

// Validate checks that every configured chain has the material it needs to sign payouts.
func (s *Secrets) Validate(chains *ChainsConfig) error {
	if chains.Xrpl != nil && s.XrplSecret == "" {
		return errors.New("BRIDGE_XRPL_SECRET is required when xrpl is configured")
	}
	if (chains.Ethereum != nil || chains.Bsc != nil) && s.EvmPrivateKey == "" {
		return errors.New("BRIDGE_EVM_PRIVATE_KEY is required when an evm chain is configured")
	}
	if chains.Bitcoin != nil && (s.BtcRpcUser == "" || s.BtcRpcPassword == "") {
		return errors.New("BRIDGE_BTC_RPC_USER and BRIDGE_BTC_RPC_PASSWORD are required when bitcoin is configured")
	}
	return nil
}
