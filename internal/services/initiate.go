package services

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xrpbridge/bridge-api-service/internal/db"
	"github.com/xrpbridge/bridge-api-service/internal/db/model"
	"github.com/xrpbridge/bridge-api-service/internal/observability/metrics"
	"github.com/xrpbridge/bridge-api-service/internal/types"
	"github.com/xrpbridge/bridge-api-service/internal/utils"
)

// maxMemoAttempts bounds the retries on a deposit memo collision.
const maxMemoAttempts = 5

type CreateBridgeRequest struct {
	FromToken   string
	ToToken     string
	Amount      string
	FromAddress string
	ToAddress   string
}

type BridgeInitiationPublic struct {
	TransactionID     string `json:"transactionId"`
	BankWalletAddress string `json:"bankWalletAddress"`
	Amount            string `json:"amount"`
	EstimatedOutput   string `json:"estimatedOutput"`
	BridgeFee         string `json:"bridgeFee"`
	ExpectedMemo      string `json:"expectedMemo,omitempty"`
	Instructions      string `json:"instructions"`
}

// CreateBridge quotes the route and persists a pending transaction the user
// then pays into. No chain is contacted.
func (s *Services) CreateBridge(ctx context.Context, req CreateBridgeRequest) (*BridgeInitiationPublic, *types.Error) {
	route, err := s.findRoute(req.FromToken, req.ToToken)
	if err != nil {
		return nil, err
	}
	amountIn, err := parseAmount(route, req.Amount)
	if err != nil {
		return nil, err
	}

	sourceAdapter, err := s.adapterFor(ctx, route.Source.Chain)
	if err != nil {
		return nil, err
	}
	destinationAdapter, err := s.adapterFor(ctx, route.Destination.Chain)
	if err != nil {
		return nil, err
	}
	if req.ToAddress == "" {
		return nil, types.NewBridgeError(types.ValidationError, "toAddress is required")
	}
	if addrErr := destinationAdapter.ValidateAddress(req.ToAddress); addrErr != nil {
		return nil, types.NewBridgeError(types.ValidationError, fmt.Sprintf(
			"invalid %s destination address: %v", route.Destination.Chain, addrErr,
		))
	}
	if req.FromAddress != "" {
		if addrErr := sourceAdapter.ValidateAddress(req.FromAddress); addrErr != nil {
			return nil, types.NewBridgeError(types.ValidationError, fmt.Sprintf(
				"invalid %s source address: %v", route.Source.Chain, addrErr,
			))
		}
	}

	q, err := s.quote(ctx, route, amountIn)
	if err != nil {
		return nil, err
	}
	if !q.amountOut.IsPositive() {
		return nil, types.NewBridgeError(types.ValidationError, "amount is too small to produce any output")
	}

	now := utils.NowMilli()
	doc := &model.BridgeTransactionDocument{
		SourceChain:          route.Source.Chain,
		SourceToken:          route.Source.Symbol,
		DestinationChain:     route.Destination.Chain,
		DestinationToken:     route.Destination.Symbol,
		SourceAddress:        req.FromAddress,
		DestinationAddress:   req.ToAddress,
		AmountIn:             q.amountIn.String(),
		FeeAmount:            q.feeAmount.String(),
		ExchangeRate:         q.exchangeRate.String(),
		AmountOut:            q.amountOut.String(),
		UsdValueAtCreation:   q.usdValue.StringFixed(usdPrecision),
		BankDepositAddress:   sourceAdapter.BankAddress(),
		Status:               types.Pending,
		DistributionAttempts: []model.DistributionAttempt{},
		StatusHistory:        []model.StatusChange{{Status: types.Pending, At: now}},
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	var saveErr error
	for attempt := 0; attempt < maxMemoAttempts; attempt++ {
		doc.ID = uuid.NewString()
		if sourceAdapter.SupportsMemo() {
			memo, memoErr := newDepositMemo()
			if memoErr != nil {
				log.Ctx(ctx).Error().Err(memoErr).Msg("failed to generate deposit memo")
				return nil, types.NewInternalServiceError(memoErr)
			}
			doc.ExpectedMemo = memo
		}
		saveErr = s.DbClient.SaveBridgeTransaction(ctx, doc)
		if saveErr == nil || !db.IsDuplicateKeyError(saveErr) {
			break
		}
		log.Ctx(ctx).Warn().Err(saveErr).Int("attempt", attempt+1).Msg("deposit memo collision, retrying")
	}
	if saveErr != nil {
		log.Ctx(ctx).Error().Err(saveErr).Msg("failed to save bridge transaction")
		return nil, types.NewInternalServiceError(saveErr)
	}
	metrics.RecordBridgeTransition(doc.SourceChain.ToString(), doc.DestinationChain.ToString(), types.Pending.ToString())
	log.Ctx(ctx).Info().Str("transactionId", doc.ID).
		Str("route", fmt.Sprintf("%s->%s", doc.SourceToken, doc.DestinationToken)).
		Msg("bridge transaction created")

	return &BridgeInitiationPublic{
		TransactionID:     doc.ID,
		BankWalletAddress: doc.BankDepositAddress,
		Amount:            doc.AmountIn,
		EstimatedOutput:   doc.AmountOut,
		BridgeFee:         doc.FeeAmount,
		ExpectedMemo:      doc.ExpectedMemo,
		Instructions:      depositInstructions(doc),
	}, nil
}

// newDepositMemo returns a random non-zero 32 bit tag, the XRPL destination tag range.
func newDepositMemo() (string, error) {
	var buf [4]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return "", err
		}
		if tag := binary.BigEndian.Uint32(buf[:]); tag != 0 {
			return strconv.FormatUint(uint64(tag), 10), nil
		}
	}
}

func depositInstructions(doc *model.BridgeTransactionDocument) string {
	msg := fmt.Sprintf("Send exactly %s %s to %s", doc.AmountIn, doc.SourceToken, doc.BankDepositAddress)
	if doc.ExpectedMemo != "" {
		msg += fmt.Sprintf(" with destination tag %s", doc.ExpectedMemo)
	}
	return msg + ", then submit the transaction hash for verification."
}
