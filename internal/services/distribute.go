package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/xrpbridge/bridge-api-service/internal/chains"
	"github.com/xrpbridge/bridge-api-service/internal/db"
	"github.com/xrpbridge/bridge-api-service/internal/db/model"
	"github.com/xrpbridge/bridge-api-service/internal/types"
	"github.com/xrpbridge/bridge-api-service/internal/utils"
)

type DistributionRequest struct {
	TransactionID string
	// The fields below are optional echoes of the record, when given they must match it
	FromToken          string
	ToToken            string
	DestinationAddress string
	Step1Hash          string
}

type DistributionPublic struct {
	TransactionID string `json:"transactionId"`
	TxHash        string `json:"txHash"`
	Amount        string `json:"amount"`
	Token         string `json:"token"`
	ExplorerUrl   string `json:"explorerUrl"`
}

// ExecuteDistribution pays the destination amount out of the bank wallet. The record
// is claimed with a conditional verified -> executing update before any chain call,
// so concurrent callers can never both send.
func (s *Services) ExecuteDistribution(ctx context.Context, req DistributionRequest) (*DistributionPublic, *types.Error) {
	doc, err := s.findTransaction(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}
	if err := matchDistributionRequest(doc, req); err != nil {
		return nil, err
	}
	if doc.OutboundTxHash != "" || !utils.Contains(utils.QualifiedStatesToExecuting(), doc.Status) {
		return nil, invalidStateFor(doc, actionDistribute)
	}

	doc, err = s.casTransition(ctx, doc.ID, actionDistribute, s.DbClient.TransitionToExecuting)
	if err != nil {
		return nil, err
	}
	recordTransition(doc)
	return s.distribute(ctx, doc)
}

// distribute sends the payout of a record this caller has just moved to executing.
// Every attempt is recorded, also when ctx is cancelled mid-send.
func (s *Services) distribute(ctx context.Context, doc *model.BridgeTransactionDocument) (*DistributionPublic, *types.Error) {
	bookkeepingCtx := context.WithoutCancel(ctx)
	token := types.MustLookupToken(doc.DestinationToken)
	startedAt := utils.NowMilli()

	adapter, err := s.adapterFor(ctx, doc.DestinationChain)
	if err != nil {
		s.failDistribution(bookkeepingCtx, doc, model.DistributionAttempt{
			StartedAt:  startedAt,
			FinishedAt: utils.NowMilli(),
			Outcome:    model.AttemptFailed,
			Error:      err.Error(),
		})
		return nil, err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.Bridge.DistributionTimeout)
	defer cancel()
	txHash, sendErr := adapter.SendPayment(sendCtx, chains.PaymentRequest{
		Reference:   doc.ID,
		Destination: doc.DestinationAddress,
		Amount:      decimal.RequireFromString(doc.AmountOut),
		Token:       token,
	})

	attempt := model.DistributionAttempt{
		StartedAt:  startedAt,
		FinishedAt: utils.NowMilli(),
		TxHash:     txHash,
	}
	if sendErr != nil {
		attempt.Outcome = model.AttemptFailed
		attempt.Error = sendErr.Error()
		var sendFailure *chains.SendError
		if attempt.TxHash == "" && errors.As(sendErr, &sendFailure) {
			attempt.TxHash = sendFailure.TxHash
		}
		if chains.IsAmbiguous(sendErr) {
			attempt.Outcome = model.AttemptAmbiguous
			attempt.Ambiguous = true
		}
		if typedErr := s.failDistribution(bookkeepingCtx, doc, attempt); typedErr != nil {
			return nil, typedErr
		}
		return nil, types.NewBridgeError(types.DistributionError, fmt.Sprintf(
			"payout of %s %s failed: %v", doc.AmountOut, doc.DestinationToken, sendErr,
		))
	}

	attempt.Outcome = model.AttemptSucceeded
	completed, markErr := s.DbClient.MarkCompleted(bookkeepingCtx, doc.ID, txHash, attempt)
	if markErr != nil {
		// The record stays in executing and is picked up by the stale sweeper as
		// ambiguous, it is never sent again automatically.
		log.Ctx(ctx).Error().Err(markErr).Str("transactionId", doc.ID).Str("outboundTxHash", txHash).
			Msg("payout sent but the transaction could not be marked completed")
		if db.IsNotFoundError(markErr) {
			return nil, s.resolveCASMiss(bookkeepingCtx, doc.ID, actionDistribute)
		}
		return nil, types.NewInternalServiceError(markErr)
	}
	recordTransition(completed)
	log.Ctx(ctx).Info().Str("transactionId", completed.ID).Str("outboundTxHash", txHash).
		Msg("bridge transaction completed")

	return &DistributionPublic{
		TransactionID: completed.ID,
		TxHash:        txHash,
		Amount:        completed.AmountOut,
		Token:         completed.DestinationToken.ToString(),
		ExplorerUrl:   adapter.ExplorerURLFor(txHash),
	}, nil
}

// failDistribution moves an executing record to failed. It returns nil when the
// record was updated.
func (s *Services) failDistribution(
	ctx context.Context, doc *model.BridgeTransactionDocument, attempt model.DistributionAttempt,
) *types.Error {
	log.Ctx(ctx).Warn().Str("transactionId", doc.ID).Str("error", attempt.Error).Bool("ambiguous", attempt.Ambiguous).
		Msg("payout failed")
	failed, err := s.DbClient.MarkDistributionFailed(
		ctx, doc.ID, types.DistributionError.String(), attempt.Error, attempt,
	)
	if err != nil {
		if db.IsNotFoundError(err) {
			return s.resolveCASMiss(ctx, doc.ID, actionDistribute)
		}
		log.Ctx(ctx).Error().Err(err).Str("transactionId", doc.ID).Msg("failed to record the payout failure")
		return types.NewInternalServiceError(err)
	}
	recordTransition(failed)
	return nil
}

func matchDistributionRequest(doc *model.BridgeTransactionDocument, req DistributionRequest) *types.Error {
	if err := matchTokens(doc, req.FromToken, req.ToToken); err != nil {
		return err
	}
	if req.DestinationAddress != "" && req.DestinationAddress != doc.DestinationAddress {
		return types.NewBridgeError(types.ValidationError, "destinationAddress does not match the transaction")
	}
	if req.Step1Hash != "" && !strings.EqualFold(req.Step1Hash, doc.InboundTxHash) {
		return types.NewBridgeError(types.ValidationError, "step1Hash does not match the verified inbound transaction")
	}
	return nil
}
