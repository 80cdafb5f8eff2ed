package evm

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog/log"

	"github.com/xrpbridge/bridge-api-service/internal/chains"
	"github.com/xrpbridge/bridge-api-service/internal/config"
	"github.com/xrpbridge/bridge-api-service/internal/types"
	"github.com/xrpbridge/bridge-api-service/internal/utils"
)

// keccak of Transfer(address,address,uint256)
var transferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

const (
	erc20TransferABI = `[{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}]`

	nativeTransferGas       = uint64(21000)
	defaultTokenTransferGas = uint64(100000)
	defaultReceiptPoll      = 2 * time.Second
)

type Adapter struct {
	chain   types.Chain
	cfg     *config.EvmConfig
	chainID *big.Int
	key     *ecdsa.PrivateKey
	bank    common.Address
	erc20   abi.ABI
	dial    dialFunc
	// how often a broadcast payout is checked for its receipt
	receiptPollInterval time.Duration
}

func New(chain types.Chain, cfg *config.EvmConfig, privateKeyHex string) (*Adapter, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("error instantiating private key: %w", err)
	}
	bank := crypto.PubkeyToAddress(key.PublicKey)
	if bank != common.HexToAddress(cfg.BankAddress) {
		return nil, fmt.Errorf("%s bank-address %s does not belong to the configured private key", chain, cfg.BankAddress)
	}
	parsed, err := abi.JSON(strings.NewReader(erc20TransferABI))
	if err != nil {
		return nil, err
	}
	return &Adapter{
		chain:               chain,
		cfg:                 cfg,
		chainID:             big.NewInt(cfg.ChainID),
		key:                 key,
		bank:                bank,
		erc20:               parsed,
		dial:                dialEthClient,
		receiptPollInterval: defaultReceiptPoll,
	}, nil
}

func (a *Adapter) Chain() types.Chain {
	return a.chain
}

func (a *Adapter) SupportsMemo() bool {
	return false
}

func (a *Adapter) BankAddress() string {
	return a.bank.Hex()
}

func (a *Adapter) ValidateAddress(address string) error {
	return utils.ValidateEvmAddress(address)
}

func (a *Adapter) ExplorerURLFor(txHash string) string {
	return fmt.Sprintf("%s/tx/%s", strings.TrimRight(a.cfg.ExplorerUrl, "/"), txHash)
}

func (a *Adapter) FindIncomingPayment(ctx context.Context, q chains.PaymentQuery) (*chains.IncomingPayment, error) {
	if !utils.IsValidHexTxHash(q.TxHash) {
		return nil, chains.NewPaymentMismatch("malformed transaction hash")
	}
	hash := common.HexToHash(q.TxHash)
	deposit := common.HexToAddress(q.DepositAddress)

	type lookup struct {
		receipt *ethtypes.Receipt
		head    uint64
		tx      *ethtypes.Transaction
	}
	found, err := withClient(ctx, a, func(client EthClient) (*lookup, error) {
		receipt, err := client.TransactionReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		head, err := client.BlockNumber(ctx)
		if err != nil {
			return nil, err
		}
		l := &lookup{receipt: receipt, head: head}
		if q.Token.Native {
			tx, _, err := client.TransactionByHash(ctx, hash)
			if err != nil {
				return nil, err
			}
			l.tx = tx
		}
		return l, nil
	})
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, chains.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("%s receipt lookup failed: %w", a.chain, err)
	}

	receipt := found.receipt
	if receipt.BlockNumber == nil {
		return nil, chains.ErrNotFinal
	}
	included := receipt.BlockNumber.Uint64()
	if found.head < included || found.head-included+1 < a.cfg.MinConfirmations {
		return nil, chains.ErrNotFinal
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return nil, chains.NewPaymentMismatch("transaction reverted")
	}

	var value *big.Int
	var from string
	if q.Token.Native {
		tx := found.tx
		if tx.To() == nil || *tx.To() != deposit {
			return nil, chains.NewPaymentMismatch("payment does not go to the deposit address")
		}
		value = tx.Value()
		if sender, err := ethtypes.Sender(ethtypes.LatestSignerForChainID(a.chainID), tx); err == nil {
			from = sender.Hex()
		}
	} else {
		contract, err := a.tokenContract(q.Token)
		if err != nil {
			return nil, err
		}
		value, from = sumTransfers(receipt.Logs, contract, deposit)
		if value.Sign() == 0 {
			return nil, chains.NewPaymentMismatch("no %s transfer to the deposit address", q.Token.Symbol)
		}
	}

	paid := chains.FromBaseUnits(value, q.Token.Decimals)
	if paid.LessThan(q.MinAmount) {
		return nil, chains.NewPaymentMismatch("paid %s %s, expected at least %s", paid, q.Token.Symbol, q.MinAmount)
	}
	return &chains.IncomingPayment{
		TxHash: hash.Hex(),
		From:   from,
		To:     deposit.Hex(),
		Amount: paid,
	}, nil
}

// sumTransfers adds up the token Transfer events paying to the deposit address.
func sumTransfers(logs []*ethtypes.Log, contract, deposit common.Address) (*big.Int, string) {
	total := new(big.Int)
	from := ""
	for _, l := range logs {
		if l.Address != contract || len(l.Topics) != 3 || l.Topics[0] != transferTopic {
			continue
		}
		if common.BytesToAddress(l.Topics[2].Bytes()) != deposit {
			continue
		}
		total.Add(total, new(big.Int).SetBytes(l.Data))
		from = common.BytesToAddress(l.Topics[1].Bytes()).Hex()
	}
	return total, from
}

func (a *Adapter) SendPayment(ctx context.Context, req chains.PaymentRequest) (string, error) {
	if err := a.ValidateAddress(req.Destination); err != nil {
		return "", chains.NewRejectedSend(err)
	}
	signed, err := a.buildSignedTx(ctx, req)
	if err != nil {
		return "", chains.NewRejectedSend(err)
	}
	hash := signed.Hash().Hex()

	if err := a.broadcast(ctx, signed); err != nil {
		return "", err
	}

	log.Ctx(ctx).Debug().Str("transactionId", req.Reference).Str("txHash", hash).
		Msg(fmt.Sprintf("%s payment broadcast, waiting for receipt", a.chain))
	return a.awaitReceipt(ctx, signed.Hash())
}

// broadcast submits the same signed tx to every endpoint until one accepts it,
// a duplicate broadcast cannot pay twice. Once an endpoint failed without a
// definite answer the tx may be in a mempool, so any later rejection such as
// "nonce too low" is reported as ambiguous.
func (a *Adapter) broadcast(ctx context.Context, signed *ethtypes.Transaction) error {
	hash := signed.Hash().Hex()
	maybeBroadcast := false
	var err error
	for _, url := range a.cfg.RpcUrls {
		var client EthClient
		client, err = a.dial(ctx, url)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("chain", a.chain.ToString()).Msg(fmt.Sprintf("error connecting to %s", url))
			continue
		}
		err = client.SendTransaction(ctx, signed)
		client.Close()
		if err == nil || strings.Contains(err.Error(), "already known") {
			return nil
		}
		var rpcErr rpc.Error
		if !errors.As(err, &rpcErr) {
			maybeBroadcast = true
		}
		log.Ctx(ctx).Warn().Err(err).Str("chain", a.chain.ToString()).Str("txHash", hash).
			Bool("maybeBroadcast", maybeBroadcast).Msg(fmt.Sprintf("broadcast via %s failed", url))
		if ctx.Err() != nil {
			break
		}
	}
	if err == nil {
		err = errors.New("no rpc endpoint reachable")
	}
	if maybeBroadcast || ctx.Err() != nil {
		return chains.NewAmbiguousSend(err, hash)
	}
	return chains.NewRejectedSend(err)
}

func (a *Adapter) buildSignedTx(ctx context.Context, req chains.PaymentRequest) (*ethtypes.Transaction, error) {
	amount := chains.ToBaseUnits(req.Amount, req.Token.Decimals)
	destination := common.HexToAddress(req.Destination)

	to := destination
	value := amount
	var data []byte
	gas := nativeTransferGas
	if !req.Token.Native {
		contract, err := a.tokenContract(req.Token)
		if err != nil {
			return nil, err
		}
		data, err = a.erc20.Pack("transfer", destination, amount)
		if err != nil {
			return nil, fmt.Errorf("error packing transfer call: %w", err)
		}
		to = contract
		value = big.NewInt(0)
	}

	type txParams struct {
		nonce    uint64
		gasPrice *big.Int
		gas      uint64
	}
	params, err := withClient(ctx, a, func(client EthClient) (*txParams, error) {
		nonce, err := client.PendingNonceAt(ctx, a.bank)
		if err != nil {
			return nil, fmt.Errorf("error getting nonce for wallet: %w", err)
		}
		gasPrice, err := client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting suggested gas price: %w", err)
		}
		p := &txParams{nonce: nonce, gasPrice: gasPrice, gas: gas}
		if data != nil {
			estimated, err := client.EstimateGas(ctx, ethereum.CallMsg{From: a.bank, To: &to, Data: data})
			if err != nil {
				log.Ctx(ctx).Warn().Err(err).Msg("gas estimation failed, using default token transfer gas")
				p.gas = defaultTokenTransferGas
			} else {
				p.gas = estimated * 12 / 10
			}
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    params.nonce,
		GasPrice: params.gasPrice,
		Gas:      params.gas,
		To:       &to,
		Value:    value,
		Data:     data,
	})
	return ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(a.chainID), a.key)
}

func (a *Adapter) awaitReceipt(ctx context.Context, hash common.Hash) (string, error) {
	ticker := time.NewTicker(a.receiptPollInterval)
	defer ticker.Stop()
	for {
		receipt, err := withClient(ctx, a, func(client EthClient) (*ethtypes.Receipt, error) {
			return client.TransactionReceipt(ctx, hash)
		})
		if err == nil {
			if receipt.Status == ethtypes.ReceiptStatusSuccessful {
				return hash.Hex(), nil
			}
			return "", chains.NewRejectedSend(fmt.Errorf("payout %s reverted", hash.Hex()))
		}
		select {
		case <-ctx.Done():
			return "", chains.NewAmbiguousSend(fmt.Errorf("no receipt in time: %w", ctx.Err()), hash.Hex())
		case <-ticker.C:
		}
	}
}

func (a *Adapter) tokenContract(token types.TokenInfo) (common.Address, error) {
	contract, ok := a.cfg.TokenContracts[token.Symbol.ToString()]
	if !ok {
		return common.Address{}, fmt.Errorf("no %s contract configured on %s", token.Symbol, a.chain)
	}
	return common.HexToAddress(contract), nil
}
