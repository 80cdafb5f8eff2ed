package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	"github.com/xrpbridge/bridge-api-service/internal/config"
	"github.com/xrpbridge/bridge-api-service/internal/services"
	"github.com/xrpbridge/bridge-api-service/internal/types"
)

// BridgeService is the part of the service layer the handlers call.
type BridgeService interface {
	DoHealthCheck(ctx context.Context) error
	Quote(ctx context.Context, fromToken, toToken, amount string) (*services.QuotePublic, *types.Error)
	CreateBridge(ctx context.Context, req services.CreateBridgeRequest) (*services.BridgeInitiationPublic, *types.Error)
	VerifyTransaction(ctx context.Context, req services.VerifyRequest) (*services.VerificationPublic, *types.Error)
	ExecuteDistribution(ctx context.Context, req services.DistributionRequest) (*services.DistributionPublic, *types.Error)
	RestartDistribution(ctx context.Context, id string) (*services.DistributionPublic, *types.Error)
	ListTransactions(
		ctx context.Context, address string, status types.BridgeStatus, chain types.Chain, pageToken string,
	) ([]services.BridgeTransactionPublic, string, *types.Error)
	GetTransaction(ctx context.Context, id string) (*services.BridgeTransactionPublic, *types.Error)
	GetReceipt(ctx context.Context, id string) (*services.ReceiptPublic, *types.Error)
	ExplorerLink(ctx context.Context, id string, side types.ProofSide) (string, *types.Error)
}

type Handler struct {
	config   *config.Config
	services BridgeService
}

type paginationResponse struct {
	NextKey string `json:"next_key"`
}

type PublicResponse[T any] struct {
	Data       T                   `json:"data"`
	Pagination *paginationResponse `json:"pagination,omitempty"`
}

type Result struct {
	Data   interface{}
	Status int
	// Headers are set on the response before the body is written
	Headers map[string]string
}

// NewResult returns a successful result, with default status code 200
func NewResultWithPagination[T any](data T, pageToken string) *Result {
	res := &PublicResponse[T]{Data: data, Pagination: &paginationResponse{NextKey: pageToken}}
	return &Result{Data: res, Status: http.StatusOK}
}

func NewResult[T any](data T) *Result {
	res := &PublicResponse[T]{Data: data}
	return &Result{Data: res, Status: http.StatusOK}
}

// NewRawResult returns data as the whole response body, without the data envelope.
func NewRawResult(data interface{}) *Result {
	return &Result{Data: data, Status: http.StatusOK}
}

func New(
	ctx context.Context, cfg *config.Config, services BridgeService,
) (*Handler, error) {
	return &Handler{
		config:   cfg,
		services: services,
	}, nil
}

// decodeBody decodes a JSON body into payload, rejecting unknown fields and trailing data.
func decodeBody(request *http.Request, payload interface{}) *types.Error {
	decoder := json.NewDecoder(request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return types.NewErrorWithMsg(http.StatusRequestEntityTooLarge, types.BadRequest, "request body is too large")
		}
		return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid request payload: "+err.Error())
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid request payload: unexpected trailing data")
	}
	return nil
}

func validateTransactionID(id string) *types.Error {
	if id == "" {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "transactionId is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid transactionId")
	}
	return nil
}

func parseTransactionIDParam(request *http.Request) (string, *types.Error) {
	id := chi.URLParam(request, "transactionId")
	if err := validateTransactionID(id); err != nil {
		return "", err
	}
	return id, nil
}
