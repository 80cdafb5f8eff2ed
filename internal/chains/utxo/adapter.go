package utxo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/ybbus/jsonrpc"

	"github.com/xrpbridge/bridge-api-service/internal/chains"
	"github.com/xrpbridge/bridge-api-service/internal/config"
	"github.com/xrpbridge/bridge-api-service/internal/types"
	"github.com/xrpbridge/bridge-api-service/internal/utils"
)

// bitcoind RPC_INVALID_ADDRESS_OR_KEY, returned for unknown transactions
const rpcInvalidAddressOrKey = -5

type scriptPubKey struct {
	Address   string   `json:"address"`
	Addresses []string `json:"addresses"`
}

type vout struct {
	Value        decimal.Decimal `json:"value"`
	N            int             `json:"n"`
	ScriptPubKey scriptPubKey    `json:"scriptPubKey"`
}

type rawTransaction struct {
	Txid          string `json:"txid"`
	Confirmations int64  `json:"confirmations"`
	Vout          []vout `json:"vout"`
}

// Adapter verifies deposits with getrawtransaction (the node needs txindex=1) and
// pays out from a loaded bitcoind wallet.
type Adapter struct {
	rpc    jsonrpc.RPCClient
	wallet jsonrpc.RPCClient
	cfg    *config.UtxoConfig
}

func New(cfg *config.UtxoConfig, rpcUser, rpcPassword string) *Adapter {
	opts := &jsonrpc.RPCClientOpts{
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		CustomHeaders: map[string]string{
			"Authorization": "Basic " + base64.StdEncoding.EncodeToString([]byte(rpcUser+":"+rpcPassword)),
		},
	}
	base := strings.TrimRight(cfg.RpcUrl, "/")
	walletURL := base
	if cfg.Wallet != "" {
		walletURL = fmt.Sprintf("%s/wallet/%s", base, cfg.Wallet)
	}
	return &Adapter{
		rpc:    jsonrpc.NewClientWithOpts(base, opts),
		wallet: jsonrpc.NewClientWithOpts(walletURL, opts),
		cfg:    cfg,
	}
}

func (a *Adapter) Chain() types.Chain {
	return types.ChainBitcoin
}

func (a *Adapter) SupportsMemo() bool {
	return false
}

func (a *Adapter) BankAddress() string {
	return a.cfg.BankAddress
}

func (a *Adapter) ValidateAddress(address string) error {
	return utils.ValidateBtcAddress(address, a.cfg.BTCNetParam)
}

func (a *Adapter) ExplorerURLFor(txHash string) string {
	return fmt.Sprintf("%s/tx/%s", strings.TrimRight(a.cfg.ExplorerUrl, "/"), txHash)
}

func (a *Adapter) FindIncomingPayment(ctx context.Context, q chains.PaymentQuery) (*chains.IncomingPayment, error) {
	if !utils.IsValidTxHash(q.TxHash) {
		return nil, chains.NewPaymentMismatch("malformed transaction hash")
	}
	resp, err := chains.CallRPC(ctx, a.rpc, "getrawtransaction", q.TxHash, true)
	if err != nil {
		var rpcErr *jsonrpc.RPCError
		if errors.As(err, &rpcErr) && rpcErr.Code == rpcInvalidAddressOrKey {
			return nil, chains.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("getrawtransaction failed: %w", err)
	}
	var tx rawTransaction
	if err := resp.GetObject(&tx); err != nil {
		return nil, fmt.Errorf("unreadable raw transaction: %w", err)
	}
	if tx.Confirmations < a.cfg.MinConfirmations {
		return nil, chains.ErrNotFinal
	}

	paid := decimal.Zero
	for _, out := range tx.Vout {
		if pays(out, q.DepositAddress) {
			paid = paid.Add(out.Value)
		}
	}
	if paid.IsZero() {
		return nil, chains.NewPaymentMismatch("no output pays the deposit address")
	}
	if paid.LessThan(q.MinAmount) {
		return nil, chains.NewPaymentMismatch("paid %s BTC, expected at least %s", paid, q.MinAmount)
	}
	return &chains.IncomingPayment{
		TxHash: tx.Txid,
		To:     q.DepositAddress,
		Amount: paid,
	}, nil
}

func pays(out vout, address string) bool {
	if out.ScriptPubKey.Address == address {
		return true
	}
	for _, a := range out.ScriptPubKey.Addresses {
		if a == address {
			return true
		}
	}
	return false
}

func (a *Adapter) SendPayment(ctx context.Context, req chains.PaymentRequest) (string, error) {
	if err := a.ValidateAddress(req.Destination); err != nil {
		return "", chains.NewRejectedSend(err)
	}
	amount := json.Number(req.Amount.Truncate(req.Token.Decimals).StringFixed(req.Token.Decimals))
	resp, err := chains.CallRPC(ctx, a.wallet, "sendtoaddress", req.Destination, amount)
	if err != nil {
		var rpcErr *jsonrpc.RPCError
		if errors.As(err, &rpcErr) {
			return "", chains.NewRejectedSend(err)
		}
		return "", chains.NewAmbiguousSend(err, "")
	}
	var txid string
	if err := resp.GetObject(&txid); err != nil {
		return "", chains.NewAmbiguousSend(fmt.Errorf("unreadable sendtoaddress response: %w", err), "")
	}
	log.Ctx(ctx).Debug().Str("transactionId", req.Reference).Str("txHash", txid).Msg("bitcoin payment broadcast")
	return txid, nil
}
