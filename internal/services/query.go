package services

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/xrpbridge/bridge-api-service/internal/db"
	"github.com/xrpbridge/bridge-api-service/internal/db/model"
	"github.com/xrpbridge/bridge-api-service/internal/types"
	"github.com/xrpbridge/bridge-api-service/internal/utils"
)

type DistributionAttemptPublic struct {
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt"`
	Outcome    string `json:"outcome"`
	TxHash     string `json:"txHash,omitempty"`
	Error      string `json:"error,omitempty"`
	Ambiguous  bool   `json:"ambiguous"`
}

type BridgeTransactionPublic struct {
	TransactionID      string                      `json:"transactionId"`
	SourceChain        string                      `json:"sourceChain"`
	SourceToken        string                      `json:"sourceToken"`
	DestinationChain   string                      `json:"destinationChain"`
	DestinationToken   string                      `json:"destinationToken"`
	SourceAddress      string                      `json:"sourceAddress,omitempty"`
	DestinationAddress string                      `json:"destinationAddress"`
	AmountIn           string                      `json:"amountIn"`
	FeeAmount          string                      `json:"feeAmount"`
	ExchangeRate       string                      `json:"exchangeRate"`
	AmountOut          string                      `json:"amountOut"`
	UsdValueAtCreation string                      `json:"usdValueAtCreation"`
	BankDepositAddress string                      `json:"bankDepositAddress"`
	ExpectedMemo       string                      `json:"expectedMemo,omitempty"`
	InboundTxHash      string                      `json:"inboundTxHash,omitempty"`
	OutboundTxHash     string                      `json:"outboundTxHash,omitempty"`
	Status             string                      `json:"status"`
	FailureStage       string                      `json:"failureStage,omitempty"`
	ErrorCode          string                      `json:"errorCode,omitempty"`
	ErrorMessage       string                      `json:"errorMessage,omitempty"`
	RetryCount         int                         `json:"retryCount"`
	Attempts           []DistributionAttemptPublic `json:"distributionAttempts,omitempty"`
	CreatedAt          string                      `json:"createdAt"`
	UpdatedAt          string                      `json:"updatedAt"`
}

type ReceiptPublic struct {
	BridgeTransactionPublic
	InboundExplorerUrl  string `json:"inboundExplorerUrl,omitempty"`
	OutboundExplorerUrl string `json:"outboundExplorerUrl,omitempty"`
}

func fromBridgeTransactionDocument(d *model.BridgeTransactionDocument) BridgeTransactionPublic {
	tx := BridgeTransactionPublic{
		TransactionID:      d.ID,
		SourceChain:        d.SourceChain.ToString(),
		SourceToken:        d.SourceToken.ToString(),
		DestinationChain:   d.DestinationChain.ToString(),
		DestinationToken:   d.DestinationToken.ToString(),
		SourceAddress:      d.SourceAddress,
		DestinationAddress: d.DestinationAddress,
		AmountIn:           d.AmountIn,
		FeeAmount:          d.FeeAmount,
		ExchangeRate:       d.ExchangeRate,
		AmountOut:          d.AmountOut,
		UsdValueAtCreation: d.UsdValueAtCreation,
		BankDepositAddress: d.BankDepositAddress,
		ExpectedMemo:       d.ExpectedMemo,
		InboundTxHash:      d.InboundTxHash,
		OutboundTxHash:     d.OutboundTxHash,
		Status:             d.Status.ToString(),
		FailureStage:       d.FailureStage.ToString(),
		ErrorCode:          d.ErrorCode,
		ErrorMessage:       d.ErrorMessage,
		RetryCount:         d.RetryCount,
		CreatedAt:          utils.UnixMilliToIsoFormat(d.CreatedAt),
		UpdatedAt:          utils.UnixMilliToIsoFormat(d.UpdatedAt),
	}
	for _, a := range d.DistributionAttempts {
		tx.Attempts = append(tx.Attempts, DistributionAttemptPublic{
			StartedAt:  utils.UnixMilliToIsoFormat(a.StartedAt),
			FinishedAt: utils.UnixMilliToIsoFormat(a.FinishedAt),
			Outcome:    string(a.Outcome),
			TxHash:     a.TxHash,
			Error:      a.Error,
			Ambiguous:  a.Ambiguous,
		})
	}
	return tx
}

// ListTransactions returns the transactions an address took part in, newest first.
func (s *Services) ListTransactions(
	ctx context.Context, address string, status types.BridgeStatus, chain types.Chain, pageToken string,
) ([]BridgeTransactionPublic, string, *types.Error) {
	filter := model.BridgeTransactionFilter{Address: address, Status: status, Chain: chain}
	resultMap, err := s.DbClient.FindBridgeTransactions(ctx, filter, pageToken)
	if err != nil {
		if db.IsInvalidPaginationTokenError(err) {
			log.Ctx(ctx).Warn().Err(err).Msg("Invalid pagination token when fetching bridge transactions")
			return nil, "", types.NewError(http.StatusBadRequest, types.BadRequest, err)
		}
		log.Ctx(ctx).Error().Err(err).Msg("Failed to find bridge transactions")
		return nil, "", types.NewInternalServiceError(err)
	}
	txs := make([]BridgeTransactionPublic, 0, len(resultMap.Data))
	for i := range resultMap.Data {
		txs = append(txs, fromBridgeTransactionDocument(&resultMap.Data[i]))
	}
	return txs, resultMap.PaginationToken, nil
}

func (s *Services) GetTransaction(ctx context.Context, id string) (*BridgeTransactionPublic, *types.Error) {
	doc, err := s.findTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	tx := fromBridgeTransactionDocument(doc)
	return &tx, nil
}

// GetReceipt projects the stored record with explorer links for both legs.
func (s *Services) GetReceipt(ctx context.Context, id string) (*ReceiptPublic, *types.Error) {
	doc, err := s.findTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	receipt := &ReceiptPublic{BridgeTransactionPublic: fromBridgeTransactionDocument(doc)}
	if doc.InboundTxHash != "" {
		if adapter, adapterErr := s.chains.Get(doc.SourceChain); adapterErr == nil {
			receipt.InboundExplorerUrl = adapter.ExplorerURLFor(doc.InboundTxHash)
		}
	}
	if doc.OutboundTxHash != "" {
		if adapter, adapterErr := s.chains.Get(doc.DestinationChain); adapterErr == nil {
			receipt.OutboundExplorerUrl = adapter.ExplorerURLFor(doc.OutboundTxHash)
		}
	}
	return receipt, nil
}

// ExplorerLink returns the block explorer url of one leg of a transaction.
func (s *Services) ExplorerLink(ctx context.Context, id string, side types.ProofSide) (string, *types.Error) {
	doc, err := s.findTransaction(ctx, id)
	if err != nil {
		return "", err
	}
	chain, hash := doc.SourceChain, doc.InboundTxHash
	if side == types.Outbound {
		chain, hash = doc.DestinationChain, doc.OutboundTxHash
	}
	if hash == "" {
		return "", types.NewBridgeError(types.NotFound, "the "+string(side)+" transaction is not known yet")
	}
	adapter, err := s.adapterFor(ctx, chain)
	if err != nil {
		return "", err
	}
	return adapter.ExplorerURLFor(hash), nil
}

func (s *Services) findTransaction(ctx context.Context, id string) (*model.BridgeTransactionDocument, *types.Error) {
	doc, err := s.DbClient.FindBridgeTransactionByID(ctx, id)
	if err != nil {
		if db.IsNotFoundError(err) {
			log.Ctx(ctx).Warn().Err(err).Str("transactionId", id).Msg("bridge transaction not found")
			return nil, types.NewError(http.StatusNotFound, types.NotFound, err)
		}
		log.Ctx(ctx).Error().Err(err).Str("transactionId", id).Msg("failed to find bridge transaction")
		return nil, types.NewInternalServiceError(err)
	}
	return doc, nil
}
