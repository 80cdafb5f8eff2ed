package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadLocalChains(t *testing.T) ChainsConfig {
	v := viper.New()
	v.SetConfigFile("../../config/config-local.yml")
	require.NoError(t, v.ReadInConfig())

	var cfg struct {
		Chains ChainsConfig `mapstructure:"chains"`
	}
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg.Chains
}

func TestLocalChainsConfigIsValid(t *testing.T) {
	chains := loadLocalChains(t)
	require.NoError(t, chains.Validate())

	require.NotNil(t, chains.Xrpl)
	require.NotNil(t, chains.Ethereum)
	require.NotNil(t, chains.Bsc)
	require.NotNil(t, chains.Bitcoin)
	for _, explorer := range []string{
		chains.Xrpl.ExplorerUrl,
		chains.Ethereum.ExplorerUrl,
		chains.Bsc.ExplorerUrl,
		chains.Bitcoin.ExplorerUrl,
	} {
		assert.NoError(t, validateExplorerUrl(explorer), explorer)
	}
	assert.Contains(t, chains.Xrpl.IssuedTokens, "RDL")
	assert.Contains(t, chains.Ethereum.TokenContracts, "USDT")
}

func TestExplorerUrlMustBeHostRoot(t *testing.T) {
	valid := []string{"https://etherscan.io", "https://mempool.space/", "http://localhost:8080"}
	for _, raw := range valid {
		assert.NoError(t, validateExplorerUrl(raw), raw)
	}

	invalid := []string{"https://etherscan.io/tx", "https://testnet.xrpl.org/transactions/", "ftp://bscscan.com", ""}
	for _, raw := range invalid {
		assert.Error(t, validateExplorerUrl(raw), raw)
	}
}

func TestEvmConfigRejectsExplorerPath(t *testing.T) {
	cfg := &EvmConfig{
		RpcUrls:     []string{"https://bsc-rpc.publicnode.com"},
		ChainID:     56,
		BankAddress: "0x8617E340B3D01FA5F11F306F4090FD50E238070D",
		ExplorerUrl: "https://bscscan.com/tx",
		Timeout:     time.Second,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "explorer-url")

	cfg.ExplorerUrl = "https://bscscan.com"
	assert.NoError(t, cfg.Validate())
}
