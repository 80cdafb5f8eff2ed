package utils

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
)

func GetBtcNetParamesFromString(net string) (*chaincfg.Params, error) {
	var netParams chaincfg.Params
	switch net {
	case "mainnet":
		netParams = chaincfg.MainNetParams
	case "testnet3":
		netParams = chaincfg.TestNet3Params
	case "regtest":
		netParams = chaincfg.RegressionNetParams
	case "simnet":
		netParams = chaincfg.SimNetParams
	case "signet":
		netParams = chaincfg.SigNetParams
	default:
		return nil, fmt.Errorf("invalid network: %s", net)
	}
	return &netParams, nil
}
