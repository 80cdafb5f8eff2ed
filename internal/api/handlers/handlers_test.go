package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xrpbridge/bridge-api-service/internal/config"
	"github.com/xrpbridge/bridge-api-service/internal/services"
	"github.com/xrpbridge/bridge-api-service/internal/types"
)

const txID = "3f2b8c1e-6a55-4d0e-9c7a-1d2e3f4a5b6c"

type mockBridgeService struct {
	mock.Mock
}

func (m *mockBridgeService) DoHealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockBridgeService) Quote(ctx context.Context, fromToken, toToken, amount string) (*services.QuotePublic, *types.Error) {
	args := m.Called(ctx, fromToken, toToken, amount)
	return args.Get(0).(*services.QuotePublic), typedErr(args.Get(1))
}

func (m *mockBridgeService) CreateBridge(
	ctx context.Context, req services.CreateBridgeRequest,
) (*services.BridgeInitiationPublic, *types.Error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*services.BridgeInitiationPublic), typedErr(args.Get(1))
}

func (m *mockBridgeService) VerifyTransaction(
	ctx context.Context, req services.VerifyRequest,
) (*services.VerificationPublic, *types.Error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*services.VerificationPublic), typedErr(args.Get(1))
}

func (m *mockBridgeService) ExecuteDistribution(
	ctx context.Context, req services.DistributionRequest,
) (*services.DistributionPublic, *types.Error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*services.DistributionPublic), typedErr(args.Get(1))
}

func (m *mockBridgeService) RestartDistribution(ctx context.Context, id string) (*services.DistributionPublic, *types.Error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*services.DistributionPublic), typedErr(args.Get(1))
}

func (m *mockBridgeService) ListTransactions(
	ctx context.Context, address string, status types.BridgeStatus, chain types.Chain, pageToken string,
) ([]services.BridgeTransactionPublic, string, *types.Error) {
	args := m.Called(ctx, address, status, chain, pageToken)
	return args.Get(0).([]services.BridgeTransactionPublic), args.String(1), typedErr(args.Get(2))
}

func (m *mockBridgeService) GetTransaction(ctx context.Context, id string) (*services.BridgeTransactionPublic, *types.Error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*services.BridgeTransactionPublic), typedErr(args.Get(1))
}

func (m *mockBridgeService) GetReceipt(ctx context.Context, id string) (*services.ReceiptPublic, *types.Error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*services.ReceiptPublic), typedErr(args.Get(1))
}

func (m *mockBridgeService) ExplorerLink(ctx context.Context, id string, side types.ProofSide) (string, *types.Error) {
	args := m.Called(ctx, id, side)
	return args.String(0), typedErr(args.Get(1))
}

func typedErr(v interface{}) *types.Error {
	if v == nil {
		return nil
	}
	return v.(*types.Error)
}

func newTestHandler(svc BridgeService) *Handler {
	h, _ := New(context.Background(), &config.Config{}, svc)
	return h
}

func withTransactionID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("transactionId", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateBridge(t *testing.T) {
	svc := &mockBridgeService{}
	svc.On("CreateBridge", mock.Anything, services.CreateBridgeRequest{
		FromToken: "XRP", ToToken: "RDL", Amount: "100", ToAddress: "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe",
	}).Return(&services.BridgeInitiationPublic{
		TransactionID:     txID,
		BankWalletAddress: "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
		Amount:            "100",
		EstimatedOutput:   "198",
		BridgeFee:         "1",
		ExpectedMemo:      "12345",
	}, nil)
	h := newTestHandler(svc)

	body := `{"fromToken":"XRP","toToken":"RDL","amount":"100","toAddress":"rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe"}`
	res, err := h.CreateBridge(httptest.NewRequest(http.MethodPost, "/api/bridge/step1", strings.NewReader(body)))
	require.Nil(t, err)
	assert.Equal(t, http.StatusOK, res.Status)

	encoded, marshalErr := json.Marshal(res.Data)
	require.NoError(t, marshalErr)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, true, decoded["success"])
	assert.Equal(t, txID, decoded["transactionId"])
	assert.Equal(t, "12345", decoded["expectedMemo"])
	assert.Equal(t, "198", decoded["estimatedOutput"])
	svc.AssertExpectations(t)
}

func TestCreateBridgeRejectsBadBodies(t *testing.T) {
	h := newTestHandler(&mockBridgeService{})
	bodies := map[string]string{
		"unknown field":  `{"fromToken":"XRP","toToken":"RDL","amount":"1","admin":true}`,
		"missing amount": `{"fromToken":"XRP","toToken":"RDL"}`,
		"not json":       `fromToken=XRP`,
		"trailing data":  `{"fromToken":"XRP","toToken":"RDL","amount":"1"}{}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			_, err := h.CreateBridge(httptest.NewRequest(http.MethodPost, "/api/bridge/step1", strings.NewReader(body)))
			require.NotNil(t, err)
			assert.Equal(t, http.StatusBadRequest, err.StatusCode)
			assert.Equal(t, types.BadRequest, err.ErrorCode)
		})
	}
}

func TestVerifyTransaction(t *testing.T) {
	svc := &mockBridgeService{}
	h := newTestHandler(svc)

	t.Run("invalid transaction id", func(t *testing.T) {
		body := `{"transactionId":"abc","txHash":"AA"}`
		_, err := h.VerifyTransaction(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
		require.NotNil(t, err)
		assert.Equal(t, types.BadRequest, err.ErrorCode)
	})

	t.Run("service error is passed through", func(t *testing.T) {
		svc.On("VerifyTransaction", mock.Anything, services.VerifyRequest{TransactionID: txID, TxHash: "AA"}).
			Return((*services.VerificationPublic)(nil), types.NewBridgeError(types.VerificationMismatch, "amount too low")).Once()
		body := `{"transactionId":"` + txID + `","txHash":"AA"}`
		_, err := h.VerifyTransaction(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
		require.NotNil(t, err)
		assert.Equal(t, types.VerificationMismatch, err.ErrorCode)
		assert.Equal(t, http.StatusUnprocessableEntity, err.StatusCode)
	})
}

func TestExecuteDistribution(t *testing.T) {
	svc := &mockBridgeService{}
	svc.On("ExecuteDistribution", mock.Anything, services.DistributionRequest{
		TransactionID: txID, FromToken: "XRP", ToToken: "RDL", Step1Hash: "AB",
	}).Return(&services.DistributionPublic{
		TransactionID: txID, TxHash: "CD", Amount: "198", Token: "RDL", ExplorerUrl: "https://livenet.xrpl.org/transactions/CD",
	}, nil)
	h := newTestHandler(svc)

	body := `{"transactionId":"` + txID + `","fromToken":"XRP","toToken":"RDL","step1Hash":"AB"}`
	res, err := h.ExecuteDistribution(httptest.NewRequest(http.MethodPost, "/api/bridge/step3", strings.NewReader(body)))
	require.Nil(t, err)
	out := res.Data.(*DistributionResponse)
	assert.True(t, out.Success)
	assert.Equal(t, "CD", out.TxHash)
}

func TestRestartDistribution(t *testing.T) {
	svc := &mockBridgeService{}
	svc.On("RestartDistribution", mock.Anything, txID).
		Return((*services.DistributionPublic)(nil), types.NewBridgeError(types.AlreadyDistributed, "already distributed"))
	h := newTestHandler(svc)

	req := withTransactionID(httptest.NewRequest(http.MethodPost, "/api/bridge/restart/"+txID, nil), txID)
	_, err := h.RestartDistribution(req)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusConflict, err.StatusCode)
}

func TestGetTransactions(t *testing.T) {
	svc := &mockBridgeService{}
	svc.On("ListTransactions", mock.Anything, "rPT1", types.Completed, types.ChainXRPL, "next").
		Return([]services.BridgeTransactionPublic{{TransactionID: txID}}, "more", nil)
	h := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/bridge/transactions?address=rPT1&status=completed&chain=XRPL&pagination_key=next", nil)
	res, err := h.GetTransactions(req)
	require.Nil(t, err)
	page := res.Data.(*PublicResponse[[]services.BridgeTransactionPublic])
	assert.Len(t, page.Data, 1)
	assert.Equal(t, "more", page.Pagination.NextKey)

	for _, query := range []string{"", "?address=rPT1&status=done", "?address=rPT1&chain=solana"} {
		_, err := h.GetTransactions(httptest.NewRequest(http.MethodGet, "/api/bridge/transactions"+query, nil))
		require.NotNil(t, err, query)
		assert.Equal(t, types.BadRequest, err.ErrorCode)
	}
}

func TestGetReceiptIsAnAttachment(t *testing.T) {
	svc := &mockBridgeService{}
	svc.On("GetReceipt", mock.Anything, txID).Return(&services.ReceiptPublic{
		BridgeTransactionPublic: services.BridgeTransactionPublic{TransactionID: txID, Status: "completed"},
	}, nil)
	h := newTestHandler(svc)

	res, err := h.GetReceipt(withTransactionID(httptest.NewRequest(http.MethodGet, "/", nil), txID))
	require.Nil(t, err)
	assert.Equal(t, `attachment; filename="bridge-receipt-`+txID+`.json"`, res.Headers["Content-Disposition"])
	assert.IsType(t, &services.ReceiptPublic{}, res.Data)
}

func TestGetExplorerLink(t *testing.T) {
	svc := &mockBridgeService{}
	svc.On("ExplorerLink", mock.Anything, txID, types.Inbound).Return("https://etherscan.io/tx/0xab", nil)
	h := newTestHandler(svc)

	req := withTransactionID(httptest.NewRequest(http.MethodGet, "/?which=inbound", nil), txID)
	res, err := h.GetExplorerLink(req)
	require.Nil(t, err)
	link := res.Data.(*PublicResponse[ExplorerLinkPublic]).Data
	assert.Equal(t, "https://etherscan.io/tx/0xab", link.ExplorerUrl)

	req = withTransactionID(httptest.NewRequest(http.MethodGet, "/?which=sideways", nil), txID)
	_, err = h.GetExplorerLink(req)
	require.NotNil(t, err)
	assert.Equal(t, types.BadRequest, err.ErrorCode)
}

func TestGetQuoteRequiresParams(t *testing.T) {
	h := newTestHandler(&mockBridgeService{})
	_, err := h.GetQuote(httptest.NewRequest(http.MethodGet, "/api/bridge/quote?fromToken=XRP", nil))
	require.NotNil(t, err)
	assert.Equal(t, types.BadRequest, err.ErrorCode)
}
