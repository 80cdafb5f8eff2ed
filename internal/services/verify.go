package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/xrpbridge/bridge-api-service/internal/chains"
	"github.com/xrpbridge/bridge-api-service/internal/db"
	"github.com/xrpbridge/bridge-api-service/internal/db/model"
	"github.com/xrpbridge/bridge-api-service/internal/observability/metrics"
	"github.com/xrpbridge/bridge-api-service/internal/types"
	"github.com/xrpbridge/bridge-api-service/internal/utils"
)

const (
	actionVerify     = "verify"
	actionDistribute = "distribute"
	actionRestart    = "restart"
)

type VerifyRequest struct {
	TransactionID string
	TxHash        string
	// FromToken and ToToken are optional, when given they must match the record
	FromToken string
	ToToken   string
}

type VerificationPublic struct {
	Verified      bool   `json:"verified"`
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	InboundTxHash string `json:"inboundTxHash,omitempty"`
}

// VerifyTransaction proves the inbound payment of a transaction on its source chain.
// A payment that can never match, or one that stays unconfirmed for the whole poll
// budget, fails the record. Cancelling ctx while polling leaves it in verifying.
func (s *Services) VerifyTransaction(ctx context.Context, req VerifyRequest) (*VerificationPublic, *types.Error) {
	doc, err := s.findTransaction(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}
	if err := matchTokens(doc, req.FromToken, req.ToToken); err != nil {
		return nil, err
	}
	if !isValidTxHashFor(doc.SourceChain, req.TxHash) {
		return nil, types.NewBridgeError(types.ValidationError, fmt.Sprintf(
			"txHash is not a valid %s transaction hash", doc.SourceChain,
		))
	}
	if !canVerify(doc) {
		return nil, invalidStateFor(doc, actionVerify)
	}
	adapter, err := s.adapterFor(ctx, doc.SourceChain)
	if err != nil {
		return nil, err
	}

	doc, err = s.casTransition(ctx, doc.ID, actionVerify, s.DbClient.TransitionToVerifying)
	if err != nil {
		return nil, err
	}
	recordTransition(doc)

	query := chains.PaymentQuery{
		TxHash:         req.TxHash,
		DepositAddress: doc.BankDepositAddress,
		Memo:           doc.ExpectedMemo,
		Token:          types.MustLookupToken(doc.SourceToken),
		MinAmount:      decimal.RequireFromString(doc.AmountIn),
	}
	payment, pollErr := chains.PollForPayment(
		ctx, s.cfg.Bridge.VerificationPollBudget, s.cfg.Bridge.VerificationPollInterval,
		func(ctx context.Context) (*chains.IncomingPayment, error) {
			return adapter.FindIncomingPayment(ctx, query)
		},
	)
	// The outcome is written even when the caller has gone away
	bookkeepingCtx := context.WithoutCancel(ctx)
	if pollErr != nil {
		if ctx.Err() != nil {
			log.Ctx(ctx).Warn().Err(pollErr).Str("transactionId", doc.ID).
				Msg("verification cancelled by the caller, transaction stays in verifying")
			return nil, types.NewBridgeError(types.RequestTimeout, "verification was interrupted, submit the proof again")
		}
		code := types.VerificationTimeout
		if chains.IsPaymentMismatch(pollErr) {
			code = types.VerificationMismatch
		}
		return nil, s.failVerification(bookkeepingCtx, doc, code, pollErr.Error())
	}

	verified, markErr := s.DbClient.MarkVerified(bookkeepingCtx, doc.ID, payment.TxHash)
	if markErr != nil {
		if db.IsDuplicateKeyError(markErr) {
			return nil, s.failVerification(
				bookkeepingCtx, doc, types.VerificationMismatch,
				"the payment already proves another bridge transaction",
			)
		}
		if db.IsNotFoundError(markErr) {
			return nil, s.resolveCASMiss(bookkeepingCtx, doc.ID, actionVerify)
		}
		log.Ctx(ctx).Error().Err(markErr).Str("transactionId", doc.ID).Msg("failed to mark transaction verified")
		return nil, types.NewInternalServiceError(markErr)
	}
	recordTransition(verified)
	log.Ctx(ctx).Info().Str("transactionId", verified.ID).Str("inboundTxHash", verified.InboundTxHash).
		Msg("inbound payment verified")

	return &VerificationPublic{
		Verified:      true,
		TransactionID: verified.ID,
		Status:        verified.Status.ToString(),
		InboundTxHash: verified.InboundTxHash,
	}, nil
}

func (s *Services) failVerification(
	ctx context.Context, doc *model.BridgeTransactionDocument, code types.ErrorCode, msg string,
) *types.Error {
	log.Ctx(ctx).Warn().Str("transactionId", doc.ID).Str("errorCode", code.String()).Str("reason", msg).
		Msg("inbound payment verification failed")
	failed, err := s.DbClient.MarkVerificationFailed(ctx, doc.ID, code.String(), msg)
	if err != nil {
		if db.IsNotFoundError(err) {
			return s.resolveCASMiss(ctx, doc.ID, actionVerify)
		}
		log.Ctx(ctx).Error().Err(err).Str("transactionId", doc.ID).Msg("failed to mark verification failure")
		return types.NewInternalServiceError(err)
	}
	recordTransition(failed)
	return types.NewBridgeError(code, msg)
}

func canVerify(doc *model.BridgeTransactionDocument) bool {
	if doc.InboundTxHash != "" {
		return false
	}
	if doc.Status == types.Failed {
		return doc.FailureStage == types.VerificationStage
	}
	return utils.Contains(utils.QualifiedStatesToVerifying(), doc.Status)
}

func isValidTxHashFor(chain types.Chain, txHash string) bool {
	switch chain {
	case types.ChainBitcoin:
		return utils.IsValidTxHash(txHash)
	case types.ChainEthereum, types.ChainBSC:
		return strings.HasPrefix(txHash, "0x") && utils.IsValidHexTxHash(txHash)
	default:
		return !strings.HasPrefix(txHash, "0x") && utils.IsValidHexTxHash(txHash)
	}
}

// matchTokens rejects a request whose optional token fields disagree with the record.
func matchTokens(doc *model.BridgeTransactionDocument, fromToken, toToken string) *types.Error {
	if fromToken != "" && !strings.EqualFold(fromToken, doc.SourceToken.ToString()) {
		return types.NewBridgeError(types.ValidationError, "fromToken does not match the transaction")
	}
	if toToken != "" && !strings.EqualFold(toToken, doc.DestinationToken.ToString()) {
		return types.NewBridgeError(types.ValidationError, "toToken does not match the transaction")
	}
	return nil
}

// casTransition runs a conditional transition and maps a lost race to the error
// the current state of the record calls for.
func (s *Services) casTransition(
	ctx context.Context, id, action string,
	transition func(ctx context.Context, id string) (*model.BridgeTransactionDocument, error),
) (*model.BridgeTransactionDocument, *types.Error) {
	doc, err := transition(ctx, id)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, s.resolveCASMiss(ctx, id, action)
		}
		log.Ctx(ctx).Error().Err(err).Str("transactionId", id).Str("action", action).Msg("failed to transition bridge transaction")
		return nil, types.NewInternalServiceError(err)
	}
	return doc, nil
}

// resolveCASMiss re-reads a record whose conditional update matched nothing.
func (s *Services) resolveCASMiss(ctx context.Context, id, action string) *types.Error {
	doc, err := s.findTransaction(ctx, id)
	if err != nil {
		return err
	}
	return invalidStateFor(doc, action)
}

func invalidStateFor(doc *model.BridgeTransactionDocument, action string) *types.Error {
	if doc.OutboundTxHash != "" && action != actionVerify {
		return types.NewBridgeError(types.AlreadyDistributed, fmt.Sprintf(
			"transaction %s was already distributed in %s", doc.ID, doc.OutboundTxHash,
		))
	}
	if action == actionRestart && doc.Status == types.Failed && doc.FailureStage == types.DistributionStage {
		return types.NewBridgeError(types.RestartLimitExceeded, fmt.Sprintf(
			"transaction %s used all of its %d restarts", doc.ID, doc.RetryCount,
		))
	}
	return types.NewBridgeError(types.InvalidState, fmt.Sprintf(
		"cannot %s transaction %s in status %s", action, doc.ID, doc.Status,
	))
}

func recordTransition(doc *model.BridgeTransactionDocument) {
	metrics.RecordBridgeTransition(doc.SourceChain.ToString(), doc.DestinationChain.ToString(), doc.Status.ToString())
}
