package handlers

import (
	"net/http"

	"github.com/xrpbridge/bridge-api-service/internal/services"
	"github.com/xrpbridge/bridge-api-service/internal/types"
)

type Step1RequestPayload struct {
	FromToken   string `json:"fromToken"`
	ToToken     string `json:"toToken"`
	Amount      string `json:"amount"`
	FromAddress string `json:"fromAddress"`
	ToAddress   string `json:"toAddress"`
}

type Step1Response struct {
	Success bool `json:"success"`
	services.BridgeInitiationPublic
}

type VerifyRequestPayload struct {
	TransactionID string `json:"transactionId"`
	TxHash        string `json:"txHash"`
	FromToken     string `json:"fromToken"`
	ToToken       string `json:"toToken"`
}

type VerifyResponse struct {
	Success bool `json:"success"`
	services.VerificationPublic
}

type Step3RequestPayload struct {
	TransactionID      string `json:"transactionId"`
	FromToken          string `json:"fromToken"`
	ToToken            string `json:"toToken"`
	DestinationAddress string `json:"destinationAddress"`
	Step1Hash          string `json:"step1Hash"`
}

type DistributionResponse struct {
	Success bool `json:"success"`
	services.DistributionPublic
}

func parseStep1RequestPayload(request *http.Request) (*Step1RequestPayload, *types.Error) {
	payload := &Step1RequestPayload{}
	if err := decodeBody(request, payload); err != nil {
		return nil, err
	}
	if payload.FromToken == "" || payload.ToToken == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "fromToken and toToken are required")
	}
	if payload.Amount == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "amount is required")
	}
	return payload, nil
}

// CreateBridge godoc
// @Summary Start a bridge transaction
// @Description Quotes the route and creates a pending bridge transaction. The response tells
// @Description the user where to send the source tokens and which memo to attach.
// @Accept json
// @Produce json
// @Param payload body Step1RequestPayload true "Bridge request"
// @Success 200 {object} Step1Response "Deposit instructions"
// @Failure 400 {object} types.Error "Invalid route, amount or address"
// @Failure 503 {object} types.Error "Price reference unavailable"
// @Router /api/bridge/step1 [post]
func (h *Handler) CreateBridge(request *http.Request) (*Result, *types.Error) {
	payload, err := parseStep1RequestPayload(request)
	if err != nil {
		return nil, err
	}
	res, err := h.services.CreateBridge(request.Context(), services.CreateBridgeRequest{
		FromToken:   payload.FromToken,
		ToToken:     payload.ToToken,
		Amount:      payload.Amount,
		FromAddress: payload.FromAddress,
		ToAddress:   payload.ToAddress,
	})
	if err != nil {
		return nil, err
	}
	return NewRawResult(&Step1Response{Success: true, BridgeInitiationPublic: *res}), nil
}

// VerifyTransaction godoc
// @Summary Verify the inbound payment
// @Description Checks the submitted transaction on the source chain and marks the bridge
// @Description transaction verified. Blocks until the payment is final or the poll budget runs out.
// @Accept json
// @Produce json
// @Param payload body VerifyRequestPayload true "Inbound payment proof"
// @Success 200 {object} VerifyResponse "Payment verified"
// @Failure 400 {object} types.Error "Invalid request"
// @Failure 404 {object} types.Error "Unknown transaction"
// @Failure 408 {object} types.Error "Payment not confirmed in time"
// @Failure 409 {object} types.Error "Transaction is not awaiting verification"
// @Failure 422 {object} types.Error "Payment does not match the transaction"
// @Router /api/bridge/verify-transaction [post]
func (h *Handler) VerifyTransaction(request *http.Request) (*Result, *types.Error) {
	payload := &VerifyRequestPayload{}
	if err := decodeBody(request, payload); err != nil {
		return nil, err
	}
	if err := validateTransactionID(payload.TransactionID); err != nil {
		return nil, err
	}
	if payload.TxHash == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "txHash is required")
	}
	res, err := h.services.VerifyTransaction(request.Context(), services.VerifyRequest{
		TransactionID: payload.TransactionID,
		TxHash:        payload.TxHash,
		FromToken:     payload.FromToken,
		ToToken:       payload.ToToken,
	})
	if err != nil {
		return nil, err
	}
	return NewRawResult(&VerifyResponse{Success: true, VerificationPublic: *res}), nil
}

// ExecuteDistribution godoc
// @Summary Pay out a verified transaction
// @Description Sends the destination tokens from the bank wallet. A transaction is paid out at most once.
// @Accept json
// @Produce json
// @Param payload body Step3RequestPayload true "Distribution request"
// @Success 200 {object} DistributionResponse "Payout sent"
// @Failure 400 {object} types.Error "Request does not match the transaction"
// @Failure 404 {object} types.Error "Unknown transaction"
// @Failure 409 {object} types.Error "Already distributed or not verified"
// @Failure 424 {object} types.Error "Payout failed, the transaction can be restarted"
// @Router /api/bridge/step3 [post]
func (h *Handler) ExecuteDistribution(request *http.Request) (*Result, *types.Error) {
	payload := &Step3RequestPayload{}
	if err := decodeBody(request, payload); err != nil {
		return nil, err
	}
	if err := validateTransactionID(payload.TransactionID); err != nil {
		return nil, err
	}
	res, err := h.services.ExecuteDistribution(request.Context(), services.DistributionRequest{
		TransactionID:      payload.TransactionID,
		FromToken:          payload.FromToken,
		ToToken:            payload.ToToken,
		DestinationAddress: payload.DestinationAddress,
		Step1Hash:          payload.Step1Hash,
	})
	if err != nil {
		return nil, err
	}
	return NewRawResult(&DistributionResponse{Success: true, DistributionPublic: *res}), nil
}

// RestartDistribution godoc
// @Summary Restart a failed payout
// @Description Re-drives the payout of a transaction that failed during distribution.
// @Produce json
// @Param transactionId path string true "Bridge transaction id"
// @Success 200 {object} DistributionResponse "Payout sent"
// @Failure 404 {object} types.Error "Unknown transaction"
// @Failure 409 {object} types.Error "Not restartable, already distributed or restart limit reached"
// @Failure 424 {object} types.Error "Payout failed again"
// @Router /api/bridge/restart/{transactionId} [post]
func (h *Handler) RestartDistribution(request *http.Request) (*Result, *types.Error) {
	id, err := parseTransactionIDParam(request)
	if err != nil {
		return nil, err
	}
	res, err := h.services.RestartDistribution(request.Context(), id)
	if err != nil {
		return nil, err
	}
	return NewRawResult(&DistributionResponse{Success: true, DistributionPublic: *res}), nil
}

// GetQuote godoc
// @Summary Preview a bridge quote
// @Produce json
// @Param fromToken query string true "Source token symbol"
// @Param toToken query string true "Destination token symbol"
// @Param amount query string true "Amount of source tokens"
// @Success 200 {object} PublicResponse[services.QuotePublic] "Quote"
// @Failure 400 {object} types.Error "Invalid route or amount"
// @Failure 503 {object} types.Error "Price reference unavailable"
// @Router /api/bridge/quote [get]
func (h *Handler) GetQuote(request *http.Request) (*Result, *types.Error) {
	query := request.URL.Query()
	fromToken, toToken, amount := query.Get("fromToken"), query.Get("toToken"), query.Get("amount")
	if fromToken == "" || toToken == "" || amount == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "fromToken, toToken and amount are required")
	}
	quote, err := h.services.Quote(request.Context(), fromToken, toToken, amount)
	if err != nil {
		return nil, err
	}
	return NewResult(quote), nil
}
