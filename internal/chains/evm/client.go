package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"
)

// EthClient is the subset of ethclient.Client the adapter uses.
type EthClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*ethtypes.Transaction, bool, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	Close()
}

type dialFunc func(ctx context.Context, url string) (EthClient, error)

func dialEthClient(ctx context.Context, url string) (EthClient, error) {
	return ethclient.DialContext(ctx, url)
}

// withClient runs f against each configured rpc endpoint in turn until one succeeds.
func withClient[T any](ctx context.Context, a *Adapter, f func(client EthClient) (T, error)) (res T, err error) {
	for _, url := range a.cfg.RpcUrls {
		var client EthClient
		client, err = a.dial(ctx, url)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("chain", a.chain.ToString()).Msg(fmt.Sprintf("error connecting to %s", url))
			continue
		}

		res, err = f(client)
		client.Close()
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
	return
}
