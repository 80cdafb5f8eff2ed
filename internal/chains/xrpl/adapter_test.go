package xrpl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrpbridge/bridge-api-service/internal/chains"
	"github.com/xrpbridge/bridge-api-service/internal/config"
	"github.com/xrpbridge/bridge-api-service/internal/types"
)

const (
	bankAddress   = "rf1BiGeXwwQoi8Z2ueFYTEXSwuJYfV2Jpn"
	userAddress   = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	rdlIssuer     = "rMH4UxPrbuMa1spCBR98hLLyNJp4d8p4tM"
	inboundTxHash = "E08D6E9754025BA2534A78707605E0601F03ACE063687A0CA1BDDACFCD1698C7"
)

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// fakeRippled answers JSON-RPC calls with whatever the handler returns as "result".
type fakeRippled struct {
	mu      sync.Mutex
	calls   []rpcRequest
	handler func(method string, params json.RawMessage) interface{}
}

func (f *fakeRippled) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	var params json.RawMessage
	if len(req.Params) > 0 {
		params = req.Params[0]
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"result": f.handler(req.Method, params),
	})
}

func newTestAdapter(t *testing.T, fake *fakeRippled) *Adapter {
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	a := New(&config.XrplConfig{
		RpcUrl:      server.URL,
		BankAddress: bankAddress,
		ExplorerUrl: "https://livenet.xrpl.org",
		Timeout:     time.Second,
		IssuedTokens: map[string]config.IssuedTokenConfig{
			"RDL": {Currency: "RDL", Issuer: rdlIssuer},
		},
	}, "snTestSecret")
	a.validationPollInterval = time.Millisecond
	return a
}

func validatedPayment(delivered interface{}, tag uint32) map[string]interface{} {
	return map[string]interface{}{
		"Account":         userAddress,
		"Destination":     bankAddress,
		"DestinationTag":  tag,
		"Amount":          delivered,
		"TransactionType": "Payment",
		"hash":            inboundTxHash,
		"validated":       true,
		"status":          "success",
		"meta": map[string]interface{}{
			"TransactionResult": "tesSUCCESS",
			"delivered_amount":  delivered,
		},
	}
}

func xrpQuery(minAmount string) chains.PaymentQuery {
	return chains.PaymentQuery{
		TxHash:         inboundTxHash,
		DepositAddress: bankAddress,
		Memo:           "12345",
		Token:          types.MustLookupToken(types.TokenXRP),
		MinAmount:      decimal.RequireFromString(minAmount),
	}
}

func TestFindIncomingPaymentXRP(t *testing.T) {
	fake := &fakeRippled{handler: func(method string, params json.RawMessage) interface{} {
		assert.Equal(t, "tx", method)
		var req txRequest
		assert.NoError(t, json.Unmarshal(params, &req))
		assert.Equal(t, inboundTxHash, req.Transaction)
		return validatedPayment("100000000", 12345)
	}}
	a := newTestAdapter(t, fake)

	payment, err := a.FindIncomingPayment(context.Background(), xrpQuery("100"))
	require.NoError(t, err)
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, userAddress, payment.From)
	assert.Equal(t, "12345", payment.Memo)
}

func TestFindIncomingPaymentUnderpaid(t *testing.T) {
	fake := &fakeRippled{handler: func(method string, params json.RawMessage) interface{} {
		return validatedPayment("50000000", 12345)
	}}
	a := newTestAdapter(t, fake)

	_, err := a.FindIncomingPayment(context.Background(), xrpQuery("100"))
	require.Error(t, err)
	assert.True(t, chains.IsPaymentMismatch(err))
}

func TestFindIncomingPaymentUsesDeliveredAmount(t *testing.T) {
	fake := &fakeRippled{handler: func(method string, params json.RawMessage) interface{} {
		tx := validatedPayment("100000000", 12345)
		// partial payment: the Amount field claims more than was delivered
		tx["meta"] = map[string]interface{}{
			"TransactionResult": "tesSUCCESS",
			"delivered_amount":  "1000000",
		}
		return tx
	}}
	a := newTestAdapter(t, fake)

	_, err := a.FindIncomingPayment(context.Background(), xrpQuery("100"))
	assert.True(t, chains.IsPaymentMismatch(err))
}

func TestFindIncomingPaymentWrongDestinationTag(t *testing.T) {
	fake := &fakeRippled{handler: func(method string, params json.RawMessage) interface{} {
		return validatedPayment("100000000", 999)
	}}
	a := newTestAdapter(t, fake)

	_, err := a.FindIncomingPayment(context.Background(), xrpQuery("100"))
	assert.True(t, chains.IsPaymentMismatch(err))
}

func TestFindIncomingPaymentPendingStates(t *testing.T) {
	notFound := &fakeRippled{handler: func(method string, params json.RawMessage) interface{} {
		return map[string]interface{}{"error": "txnNotFound", "status": "error"}
	}}
	_, err := newTestAdapter(t, notFound).FindIncomingPayment(context.Background(), xrpQuery("1"))
	assert.ErrorIs(t, err, chains.ErrPaymentNotFound)

	unvalidated := &fakeRippled{handler: func(method string, params json.RawMessage) interface{} {
		tx := validatedPayment("100000000", 12345)
		tx["validated"] = false
		return tx
	}}
	_, err = newTestAdapter(t, unvalidated).FindIncomingPayment(context.Background(), xrpQuery("1"))
	assert.ErrorIs(t, err, chains.ErrNotFinal)
}

func TestFindIncomingPaymentIssuedToken(t *testing.T) {
	issued := map[string]interface{}{"currency": "RDL", "issuer": rdlIssuer, "value": "25.5"}
	fake := &fakeRippled{handler: func(method string, params json.RawMessage) interface{} {
		return validatedPayment(issued, 7)
	}}
	a := newTestAdapter(t, fake)

	q := chains.PaymentQuery{
		TxHash:         inboundTxHash,
		DepositAddress: bankAddress,
		Memo:           "7",
		Token:          types.MustLookupToken(types.TokenRDL),
		MinAmount:      decimal.RequireFromString("25"),
	}
	payment, err := a.FindIncomingPayment(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "25.5", payment.Amount.String())

	// XRP sent where RDL was expected
	q.Token = types.MustLookupToken(types.TokenRDL)
	xrpFake := &fakeRippled{handler: func(method string, params json.RawMessage) interface{} {
		return validatedPayment("30000000", 7)
	}}
	_, err = newTestAdapter(t, xrpFake).FindIncomingPayment(context.Background(), q)
	assert.True(t, chains.IsPaymentMismatch(err))
}

// ledgerAnswer serves ledger_current and validated ledger lookups with the
// validated ledger at validated and the open ledger one past it.
func ledgerAnswer(method string, validated uint32) (interface{}, bool) {
	switch method {
	case "ledger_current":
		return map[string]interface{}{"ledger_current_index": validated + 1, "status": "success"}, true
	case "ledger":
		return map[string]interface{}{"ledger_index": validated, "validated": true, "status": "success"}, true
	}
	return nil, false
}

func submitAnswer(engine string) map[string]interface{} {
	return map[string]interface{}{
		"engine_result":         engine,
		"engine_result_message": engine,
		"tx_json":               map[string]interface{}{"hash": "OUTHASH"},
		"status":                "success",
	}
}

func TestSendPaymentWaitsForValidation(t *testing.T) {
	lookups := 0
	fake := &fakeRippled{}
	fake.handler = func(method string, params json.RawMessage) interface{} {
		if answer, ok := ledgerAnswer(method, 1000); ok {
			return answer
		}
		switch method {
		case "submit":
			var req submitRequest
			assert.NoError(t, json.Unmarshal(params, &req))
			assert.Equal(t, "snTestSecret", req.Secret)
			assert.Equal(t, bankAddress, req.TxJSON.Account)
			assert.Equal(t, "12345678", req.TxJSON.Amount.Drops)
			assert.Equal(t, uint32(1001+lastLedgerWindow), req.TxJSON.LastLedgerSequence)
			return map[string]interface{}{
				"engine_result":         "tesSUCCESS",
				"engine_result_message": "The transaction was applied.",
				"tx_json":               map[string]interface{}{"hash": "OUTHASH"},
				"status":                "success",
			}
		default:
			lookups++
			if lookups < 3 {
				return map[string]interface{}{"error": "txnNotFound", "status": "error"}
			}
			tx := validatedPayment("12345678", 0)
			tx["hash"] = "OUTHASH"
			return tx
		}
	}
	a := newTestAdapter(t, fake)

	hash, err := a.SendPayment(context.Background(), chains.PaymentRequest{
		Reference:   "tx-1",
		Destination: userAddress,
		Amount:      decimal.RequireFromString("12.3456789"),
		Token:       types.MustLookupToken(types.TokenXRP),
	})
	require.NoError(t, err)
	assert.Equal(t, "OUTHASH", hash)
}

func TestSendPaymentRejected(t *testing.T) {
	for _, engine := range []string{"temBAD_AMOUNT", "telINSUF_FEE_P"} {
		t.Run(engine, func(t *testing.T) {
			fake := &fakeRippled{handler: func(method string, params json.RawMessage) interface{} {
				if answer, ok := ledgerAnswer(method, 1000); ok {
					return answer
				}
				return submitAnswer(engine)
			}}
			a := newTestAdapter(t, fake)

			_, err := a.SendPayment(context.Background(), chains.PaymentRequest{
				Destination: userAddress,
				Amount:      decimal.NewFromInt(1),
				Token:       types.MustLookupToken(types.TokenXRP),
			})
			require.Error(t, err)
			assert.False(t, chains.IsAmbiguous(err))
		})
	}
}

func TestSendPaymentPreliminaryFailureWaitsForValidatedResult(t *testing.T) {
	t.Run("validated as success", func(t *testing.T) {
		fake := &fakeRippled{handler: func(method string, params json.RawMessage) interface{} {
			if answer, ok := ledgerAnswer(method, 1000); ok {
				return answer
			}
			if method == "submit" {
				return submitAnswer("tecPATH_DRY")
			}
			tx := validatedPayment("1000000", 0)
			tx["hash"] = "OUTHASH"
			return tx
		}}
		a := newTestAdapter(t, fake)

		hash, err := a.SendPayment(context.Background(), chains.PaymentRequest{
			Destination: userAddress,
			Amount:      decimal.NewFromInt(1),
			Token:       types.MustLookupToken(types.TokenXRP),
		})
		require.NoError(t, err)
		assert.Equal(t, "OUTHASH", hash)
	})

	t.Run("not yet validated", func(t *testing.T) {
		fake := &fakeRippled{handler: func(method string, params json.RawMessage) interface{} {
			if answer, ok := ledgerAnswer(method, 1000); ok {
				return answer
			}
			if method == "submit" {
				return submitAnswer("tecPATH_DRY")
			}
			return map[string]interface{}{"error": "txnNotFound", "status": "error"}
		}}
		a := newTestAdapter(t, fake)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := a.SendPayment(ctx, chains.PaymentRequest{
			Destination: userAddress,
			Amount:      decimal.NewFromInt(1),
			Token:       types.MustLookupToken(types.TokenXRP),
		})
		require.Error(t, err)
		assert.True(t, chains.IsAmbiguous(err))
		var sendErr *chains.SendError
		require.ErrorAs(t, err, &sendErr)
		assert.Equal(t, "OUTHASH", sendErr.TxHash)
	})
}

func TestSendPaymentExpiredPastLastLedgerIsRejected(t *testing.T) {
	var mu sync.Mutex
	validated := uint32(1000)
	fake := &fakeRippled{handler: func(method string, params json.RawMessage) interface{} {
		mu.Lock()
		defer mu.Unlock()
		if answer, ok := ledgerAnswer(method, validated); ok {
			if method == "ledger" {
				// the network keeps closing ledgers while the payout is missing
				validated += 10
			}
			return answer
		}
		if method == "submit" {
			return submitAnswer("tefPAST_SEQ")
		}
		return map[string]interface{}{"error": "txnNotFound", "status": "error"}
	}}
	a := newTestAdapter(t, fake)

	_, err := a.SendPayment(context.Background(), chains.PaymentRequest{
		Destination: userAddress,
		Amount:      decimal.NewFromInt(1),
		Token:       types.MustLookupToken(types.TokenXRP),
	})
	require.Error(t, err)
	assert.False(t, chains.IsAmbiguous(err))
}

func TestSendPaymentValidationTimeoutIsAmbiguous(t *testing.T) {
	fake := &fakeRippled{handler: func(method string, params json.RawMessage) interface{} {
		if answer, ok := ledgerAnswer(method, 1000); ok {
			return answer
		}
		if method == "submit" {
			return map[string]interface{}{
				"engine_result": "tesSUCCESS",
				"tx_json":       map[string]interface{}{"hash": "OUTHASH"},
				"status":        "success",
			}
		}
		return map[string]interface{}{"error": "txnNotFound", "status": "error"}
	}}
	a := newTestAdapter(t, fake)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := a.SendPayment(ctx, chains.PaymentRequest{
		Destination: userAddress,
		Amount:      decimal.NewFromInt(1),
		Token:       types.MustLookupToken(types.TokenXRP),
	})
	require.Error(t, err)
	assert.True(t, chains.IsAmbiguous(err))
	var sendErr *chains.SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, "OUTHASH", sendErr.TxHash)
}

func TestExplorerURL(t *testing.T) {
	a := newTestAdapter(t, &fakeRippled{handler: func(string, json.RawMessage) interface{} { return nil }})
	assert.Equal(t, "https://livenet.xrpl.org/transactions/ABC", a.ExplorerURLFor("ABC"))
}
