package xrpl

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	resultSuccess    = "tesSUCCESS"
	resultQueued     = "terQUEUED"
	errTxnNotFound   = "txnNotFound"
	dropsPerXRP      = 6
	paymentTxType    = "Payment"
	defaultFeeMaxMul = 1000
	// ledgers a payout may wait for inclusion before it expires
	lastLedgerWindow = 20
)

// amount is either a string of XRP drops or an issued currency object.
type amount struct {
	Drops    string
	Currency string
	Issuer   string
	Value    string
}

func (a *amount) UnmarshalJSON(data []byte) error {
	var drops string
	if err := json.Unmarshal(data, &drops); err == nil {
		a.Drops = drops
		return nil
	}
	var issued struct {
		Currency string `json:"currency"`
		Issuer   string `json:"issuer"`
		Value    string `json:"value"`
	}
	if err := json.Unmarshal(data, &issued); err != nil {
		return fmt.Errorf("unsupported xrpl amount: %s", string(data))
	}
	a.Currency, a.Issuer, a.Value = issued.Currency, issued.Issuer, issued.Value
	return nil
}

func (a amount) MarshalJSON() ([]byte, error) {
	if a.Currency == "" {
		return json.Marshal(a.Drops)
	}
	return json.Marshal(map[string]string{
		"currency": a.Currency,
		"issuer":   a.Issuer,
		"value":    a.Value,
	})
}

func (a amount) isXRP() bool {
	return a.Currency == ""
}

// decimalValue returns the amount in whole units (XRP or issued token units).
func (a amount) decimalValue() (decimal.Decimal, error) {
	if a.isXRP() {
		drops, err := decimal.NewFromString(a.Drops)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid drops amount %q: %w", a.Drops, err)
		}
		return drops.Shift(-dropsPerXRP), nil
	}
	return decimal.NewFromString(a.Value)
}

type txRequest struct {
	Transaction string `json:"transaction"`
	Binary      bool   `json:"binary"`
}

type txMeta struct {
	TransactionResult string  `json:"TransactionResult"`
	DeliveredAmount   *amount `json:"delivered_amount,omitempty"`
}

type txResult struct {
	Account         string  `json:"Account"`
	Destination     string  `json:"Destination"`
	DestinationTag  *uint32 `json:"DestinationTag,omitempty"`
	Amount          amount  `json:"Amount"`
	TransactionType string  `json:"TransactionType"`
	Hash            string  `json:"hash"`
	Validated       bool    `json:"validated"`
	Meta            *txMeta `json:"meta,omitempty"`
	Status          string  `json:"status"`
	Error           string  `json:"error,omitempty"`
	ErrorMessage    string  `json:"error_message,omitempty"`
}

type paymentTxJSON struct {
	TransactionType string `json:"TransactionType"`
	Account         string `json:"Account"`
	Destination     string `json:"Destination"`
	Amount          amount `json:"Amount"`
	// LastLedgerSequence bounds how long a submitted payout can still be applied.
	LastLedgerSequence uint32 `json:"LastLedgerSequence,omitempty"`
}

type ledgerRequest struct {
	LedgerIndex string `json:"ledger_index"`
}

type ledgerResult struct {
	LedgerCurrentIndex uint32 `json:"ledger_current_index"`
	LedgerIndex        uint32 `json:"ledger_index"`
	Validated          bool   `json:"validated"`
	Status             string `json:"status"`
	Error              string `json:"error,omitempty"`
	ErrorMessage       string `json:"error_message,omitempty"`
}

type submitRequest struct {
	Secret     string        `json:"secret"`
	TxJSON     paymentTxJSON `json:"tx_json"`
	FeeMultMax int           `json:"fee_mult_max"`
}

type submitResult struct {
	EngineResult        string `json:"engine_result"`
	EngineResultMessage string `json:"engine_result_message"`
	TxJSON              struct {
		Hash string `json:"hash"`
	} `json:"tx_json"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func formatMemo(tag uint32) string {
	return strconv.FormatUint(uint64(tag), 10)
}

func parseMemo(memo string) (uint32, error) {
	tag, err := strconv.ParseUint(memo, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid destination tag %q: %w", memo, err)
	}
	return uint32(tag), nil
}
