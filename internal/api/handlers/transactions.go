package handlers

import (
	"fmt"
	"net/http"

	"github.com/xrpbridge/bridge-api-service/internal/types"
)

type ExplorerLinkPublic struct {
	TransactionID string `json:"transactionId"`
	Which         string `json:"which"`
	ExplorerUrl   string `json:"explorerUrl"`
}

// GetTransactions godoc
// @Summary List bridge transactions of an address
// @Description Returns the transactions the address sent from or received to, newest first
// @Produce json
// @Param address query string true "Source or destination address"
// @Param status query string false "Filter by status" Enums(pending, verifying, verified, executing, completed, failed)
// @Param chain query string false "Filter by source or destination chain" Enums(xrpl, ethereum, bsc, bitcoin)
// @Param pagination_key query string false "Pagination key to fetch the next page"
// @Success 200 {object} PublicResponse[[]services.BridgeTransactionPublic]{array} "Transactions and pagination token"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /api/bridge/transactions [get]
func (h *Handler) GetTransactions(request *http.Request) (*Result, *types.Error) {
	query := request.URL.Query()
	address := query.Get("address")
	if address == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "address is required")
	}

	var status types.BridgeStatus
	if raw := query.Get("status"); raw != "" {
		parsed, err := types.FromStringToBridgeStatus(raw)
		if err != nil {
			return nil, types.NewError(http.StatusBadRequest, types.BadRequest, err)
		}
		status = parsed
	}
	var chain types.Chain
	if raw := query.Get("chain"); raw != "" {
		parsed, err := types.FromStringToChain(raw)
		if err != nil {
			return nil, types.NewError(http.StatusBadRequest, types.BadRequest, err)
		}
		chain = parsed
	}

	txs, nextKey, err := h.services.ListTransactions(
		request.Context(), address, status, chain, query.Get("pagination_key"),
	)
	if err != nil {
		return nil, err
	}
	return NewResultWithPagination(txs, nextKey), nil
}

// GetTransaction godoc
// @Summary Get a bridge transaction
// @Produce json
// @Param transactionId path string true "Bridge transaction id"
// @Success 200 {object} PublicResponse[services.BridgeTransactionPublic] "Transaction"
// @Failure 404 {object} types.Error "Unknown transaction"
// @Router /api/bridge/transactions/{transactionId} [get]
func (h *Handler) GetTransaction(request *http.Request) (*Result, *types.Error) {
	id, err := parseTransactionIDParam(request)
	if err != nil {
		return nil, err
	}
	tx, err := h.services.GetTransaction(request.Context(), id)
	if err != nil {
		return nil, err
	}
	return NewResult(tx), nil
}

// GetReceipt godoc
// @Summary Download a transaction receipt
// @Description Returns the stored transaction with explorer links as a JSON attachment
// @Produce json
// @Param transactionId path string true "Bridge transaction id"
// @Success 200 {object} services.ReceiptPublic "Receipt"
// @Failure 404 {object} types.Error "Unknown transaction"
// @Router /api/bridge/receipt/{transactionId} [get]
func (h *Handler) GetReceipt(request *http.Request) (*Result, *types.Error) {
	id, err := parseTransactionIDParam(request)
	if err != nil {
		return nil, err
	}
	receipt, err := h.services.GetReceipt(request.Context(), id)
	if err != nil {
		return nil, err
	}
	result := NewRawResult(receipt)
	result.Headers = map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="bridge-receipt-%s.json"`, id),
	}
	return result, nil
}

// GetExplorerLink godoc
// @Summary Get the block explorer link of a transaction leg
// @Produce json
// @Param transactionId path string true "Bridge transaction id"
// @Param which query string false "Which leg, defaults to outbound" Enums(inbound, outbound)
// @Success 200 {object} PublicResponse[ExplorerLinkPublic] "Explorer link"
// @Failure 404 {object} types.Error "Unknown transaction or leg not known yet"
// @Router /api/bridge/explorer/{transactionId} [get]
func (h *Handler) GetExplorerLink(request *http.Request) (*Result, *types.Error) {
	id, err := parseTransactionIDParam(request)
	if err != nil {
		return nil, err
	}
	side := types.Outbound
	if raw := request.URL.Query().Get("which"); raw != "" {
		parsed, parseErr := types.FromStringToProofSide(raw)
		if parseErr != nil {
			return nil, types.NewError(http.StatusBadRequest, types.BadRequest, parseErr)
		}
		side = parsed
	}
	url, err := h.services.ExplorerLink(request.Context(), id, side)
	if err != nil {
		return nil, err
	}
	return NewResult(ExplorerLinkPublic{TransactionID: id, Which: string(side), ExplorerUrl: url}), nil
}
