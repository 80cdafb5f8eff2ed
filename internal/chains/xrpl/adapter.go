package xrpl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/ybbus/jsonrpc"

	"github.com/xrpbridge/bridge-api-service/internal/chains"
	"github.com/xrpbridge/bridge-api-service/internal/config"
	"github.com/xrpbridge/bridge-api-service/internal/types"
	"github.com/xrpbridge/bridge-api-service/internal/utils"
)

const defaultValidationPollInterval = time.Second

// Adapter talks to a rippled node over JSON-RPC. Payouts are signed server side
// with the bank secret, the node must allow signing.
type Adapter struct {
	rpc    jsonrpc.RPCClient
	cfg    *config.XrplConfig
	secret string
	// how often a submitted payout is checked for validation
	validationPollInterval time.Duration
}

func New(cfg *config.XrplConfig, secret string) *Adapter {
	rpc := jsonrpc.NewClientWithOpts(cfg.RpcUrl, &jsonrpc.RPCClientOpts{
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	})
	return &Adapter{
		rpc:                    rpc,
		cfg:                    cfg,
		secret:                 secret,
		validationPollInterval: defaultValidationPollInterval,
	}
}

func (a *Adapter) Chain() types.Chain {
	return types.ChainXRPL
}

func (a *Adapter) SupportsMemo() bool {
	return true
}

func (a *Adapter) BankAddress() string {
	return a.cfg.BankAddress
}

func (a *Adapter) ValidateAddress(address string) error {
	return utils.ValidateXrplAddress(address)
}

func (a *Adapter) ExplorerURLFor(txHash string) string {
	return fmt.Sprintf("%s/transactions/%s", strings.TrimRight(a.cfg.ExplorerUrl, "/"), txHash)
}

func (a *Adapter) FindIncomingPayment(ctx context.Context, q chains.PaymentQuery) (*chains.IncomingPayment, error) {
	tx, err := a.lookupTx(ctx, q.TxHash)
	if err != nil {
		return nil, err
	}
	if !tx.Validated {
		return nil, chains.ErrNotFinal
	}
	if tx.TransactionType != paymentTxType {
		return nil, chains.NewPaymentMismatch("transaction type %s is not a payment", tx.TransactionType)
	}
	if tx.Meta == nil || tx.Meta.TransactionResult != resultSuccess {
		result := "unknown"
		if tx.Meta != nil {
			result = tx.Meta.TransactionResult
		}
		return nil, chains.NewPaymentMismatch("transaction failed on ledger with %s", result)
	}
	if tx.Destination != q.DepositAddress {
		return nil, chains.NewPaymentMismatch("payment goes to %s, not the deposit address", tx.Destination)
	}
	if q.Memo != "" {
		expectedTag, err := parseMemo(q.Memo)
		if err != nil {
			return nil, err
		}
		if tx.DestinationTag == nil || *tx.DestinationTag != expectedTag {
			return nil, chains.NewPaymentMismatch("destination tag does not match the expected memo %s", q.Memo)
		}
	}

	// delivered_amount is authoritative, Amount overstates partial payments
	delivered := tx.Meta.DeliveredAmount
	if delivered == nil {
		return nil, chains.NewPaymentMismatch("delivered amount is not available")
	}
	if err := a.checkCurrency(*delivered, q.Token); err != nil {
		return nil, err
	}
	value, err := delivered.decimalValue()
	if err != nil {
		return nil, chains.NewPaymentMismatch("unreadable delivered amount: %v", err)
	}
	if value.LessThan(q.MinAmount) {
		return nil, chains.NewPaymentMismatch("delivered %s %s, expected at least %s", value, q.Token.Symbol, q.MinAmount)
	}

	payment := &chains.IncomingPayment{
		TxHash: tx.Hash,
		From:   tx.Account,
		To:     tx.Destination,
		Amount: value,
	}
	if tx.DestinationTag != nil {
		payment.Memo = formatMemo(*tx.DestinationTag)
	}
	return payment, nil
}

func (a *Adapter) SendPayment(ctx context.Context, req chains.PaymentRequest) (string, error) {
	if err := a.ValidateAddress(req.Destination); err != nil {
		return "", chains.NewRejectedSend(err)
	}
	amt, err := a.toAmount(req)
	if err != nil {
		return "", chains.NewRejectedSend(err)
	}

	current, err := a.currentLedgerIndex(ctx)
	if err != nil {
		return "", chains.NewRejectedSend(err)
	}
	lastLedger := current + lastLedgerWindow

	params := submitRequest{
		Secret: a.secret,
		TxJSON: paymentTxJSON{
			TransactionType:    paymentTxType,
			Account:            a.cfg.BankAddress,
			Destination:        req.Destination,
			Amount:             amt,
			LastLedgerSequence: lastLedger,
		},
		FeeMultMax: defaultFeeMaxMul,
	}
	resp, err := chains.CallRPC(ctx, a.rpc, "submit", []interface{}{params})
	if err != nil {
		var rpcErr *jsonrpc.RPCError
		if errors.As(err, &rpcErr) {
			return "", chains.NewRejectedSend(err)
		}
		return "", chains.NewAmbiguousSend(err, "")
	}
	var result submitResult
	if err := resp.GetObject(&result); err != nil {
		return "", chains.NewAmbiguousSend(fmt.Errorf("unreadable submit response: %w", err), "")
	}
	if result.Error != "" {
		return "", chains.NewRejectedSend(fmt.Errorf("%s: %s", result.Error, result.ErrorMessage))
	}

	hash := result.TxJSON.Hash
	engine := result.EngineResult
	// Only tem and tel results are final at submit time, anything else is
	// preliminary and is settled by the validated ledger.
	if strings.HasPrefix(engine, "tem") || strings.HasPrefix(engine, "tel") {
		return "", chains.NewRejectedSend(fmt.Errorf("%s: %s", engine, result.EngineResultMessage))
	}
	if hash == "" {
		return "", chains.NewAmbiguousSend(fmt.Errorf("%s: %s", engine, result.EngineResultMessage), "")
	}
	if engine != resultSuccess && engine != resultQueued {
		log.Ctx(ctx).Warn().Str("transactionId", req.Reference).Str("txHash", hash).Str("engineResult", engine).
			Msg("xrpl payment got a preliminary failure, waiting for the validated result")
	}

	log.Ctx(ctx).Debug().Str("transactionId", req.Reference).Str("txHash", hash).Uint32("lastLedgerSequence", lastLedger).
		Msg("xrpl payment submitted, waiting for validation")
	return a.awaitValidation(ctx, hash, lastLedger)
}

// awaitValidation waits until a submitted payout is in a validated ledger, or
// until the validated ledger passed lastLedger without it.
func (a *Adapter) awaitValidation(ctx context.Context, hash string, lastLedger uint32) (string, error) {
	ticker := time.NewTicker(a.validationPollInterval)
	defer ticker.Stop()
	for {
		// read before the tx lookup so an expiry is never decided on a stale index
		validatedIndex, ledgerErr := a.validatedLedgerIndex(ctx)
		tx, err := a.lookupTx(ctx, hash)
		if err == nil && tx.Validated {
			if tx.Meta != nil && tx.Meta.TransactionResult == resultSuccess {
				return hash, nil
			}
			result := "unknown"
			if tx.Meta != nil {
				result = tx.Meta.TransactionResult
			}
			return "", chains.NewRejectedSend(fmt.Errorf("payment %s validated with %s", hash, result))
		}
		if errors.Is(err, chains.ErrPaymentNotFound) && ledgerErr == nil && validatedIndex > lastLedger {
			return "", chains.NewRejectedSend(fmt.Errorf("payment %s expired, validated ledger %d is past %d", hash, validatedIndex, lastLedger))
		}
		select {
		case <-ctx.Done():
			return "", chains.NewAmbiguousSend(fmt.Errorf("payment not validated in time: %w", ctx.Err()), hash)
		case <-ticker.C:
		}
	}
}

func (a *Adapter) currentLedgerIndex(ctx context.Context) (uint32, error) {
	resp, err := chains.CallRPC(ctx, a.rpc, "ledger_current", []interface{}{struct{}{}})
	if err != nil {
		return 0, fmt.Errorf("xrpl ledger_current failed: %w", err)
	}
	var result ledgerResult
	if err := resp.GetObject(&result); err != nil {
		return 0, fmt.Errorf("unreadable xrpl ledger_current response: %w", err)
	}
	if result.Error != "" || result.LedgerCurrentIndex == 0 {
		return 0, fmt.Errorf("xrpl ledger_current failed: %s %s", result.Error, result.ErrorMessage)
	}
	return result.LedgerCurrentIndex, nil
}

func (a *Adapter) validatedLedgerIndex(ctx context.Context) (uint32, error) {
	resp, err := chains.CallRPC(ctx, a.rpc, "ledger", []interface{}{ledgerRequest{LedgerIndex: "validated"}})
	if err != nil {
		return 0, fmt.Errorf("xrpl ledger lookup failed: %w", err)
	}
	var result ledgerResult
	if err := resp.GetObject(&result); err != nil {
		return 0, fmt.Errorf("unreadable xrpl ledger response: %w", err)
	}
	if result.Error != "" || !result.Validated {
		return 0, fmt.Errorf("xrpl ledger lookup failed: %s %s", result.Error, result.ErrorMessage)
	}
	return result.LedgerIndex, nil
}

func (a *Adapter) lookupTx(ctx context.Context, hash string) (*txResult, error) {
	resp, err := chains.CallRPC(ctx, a.rpc, "tx", []interface{}{txRequest{Transaction: hash}})
	if err != nil {
		return nil, fmt.Errorf("xrpl tx lookup failed: %w", err)
	}
	var tx txResult
	if err := resp.GetObject(&tx); err != nil {
		return nil, fmt.Errorf("unreadable xrpl tx response: %w", err)
	}
	if tx.Error == errTxnNotFound {
		return nil, chains.ErrPaymentNotFound
	}
	if tx.Error != "" {
		return nil, fmt.Errorf("xrpl tx lookup failed: %s %s", tx.Error, tx.ErrorMessage)
	}
	return &tx, nil
}

func (a *Adapter) checkCurrency(delivered amount, token types.TokenInfo) error {
	if token.Native {
		if !delivered.isXRP() {
			return chains.NewPaymentMismatch("expected XRP, got %s", delivered.Currency)
		}
		return nil
	}
	issued, ok := a.cfg.IssuedTokens[token.Symbol.ToString()]
	if !ok {
		return fmt.Errorf("issued token %s is not configured", token.Symbol)
	}
	if delivered.Currency != issued.Currency || delivered.Issuer != issued.Issuer {
		return chains.NewPaymentMismatch("expected %s issued by %s", issued.Currency, issued.Issuer)
	}
	return nil
}

func (a *Adapter) toAmount(req chains.PaymentRequest) (amount, error) {
	if req.Token.Native {
		return amount{Drops: chains.ToBaseUnits(req.Amount, dropsPerXRP).String()}, nil
	}
	issued, ok := a.cfg.IssuedTokens[req.Token.Symbol.ToString()]
	if !ok {
		return amount{}, fmt.Errorf("issued token %s is not configured", req.Token.Symbol)
	}
	return amount{
		Currency: issued.Currency,
		Issuer:   issued.Issuer,
		Value:    req.Amount.Truncate(req.Token.Decimals).String(),
	}, nil
}
