package model

import (
	"github.com/xrpbridge/bridge-api-service/internal/types"
)

const BridgeTransactionCollection = "bridge_transactions"

type AttemptOutcome string

const (
	AttemptSucceeded AttemptOutcome = "succeeded"
	AttemptFailed    AttemptOutcome = "failed"
	// The send may or may not have reached the chain
	AttemptAmbiguous AttemptOutcome = "ambiguous"
)

type DistributionAttempt struct {
	StartedAt  int64          `bson:"started_at"`
	FinishedAt int64          `bson:"finished_at"`
	Outcome    AttemptOutcome `bson:"outcome"`
	TxHash     string         `bson:"tx_hash,omitempty"`
	Error      string         `bson:"error,omitempty"`
	Ambiguous  bool           `bson:"ambiguous"`
}

type StatusChange struct {
	Status types.BridgeStatus `bson:"status"`
	At     int64              `bson:"at"`
	Note   string             `bson:"note,omitempty"`
}

// BridgeTransactionDocument is the persisted state of one bridge request.
// Amounts are decimal strings, timestamps are unix milliseconds.
type BridgeTransactionDocument struct {
	ID                 string            `bson:"_id"`
	SourceChain        types.Chain       `bson:"source_chain"`
	SourceToken        types.TokenSymbol `bson:"source_token"`
	DestinationChain   types.Chain       `bson:"destination_chain"`
	DestinationToken   types.TokenSymbol `bson:"destination_token"`
	SourceAddress      string            `bson:"source_address,omitempty"`
	DestinationAddress string            `bson:"destination_address"`

	AmountIn           string `bson:"amount_in"`
	FeeAmount          string `bson:"fee_amount"`
	ExchangeRate       string `bson:"exchange_rate"`
	AmountOut          string `bson:"amount_out"`
	UsdValueAtCreation string `bson:"usd_value_at_creation"`

	BankDepositAddress string `bson:"bank_deposit_address"`
	ExpectedMemo       string `bson:"expected_memo,omitempty"`

	// Both hashes are left unset until they are known, the unique sparse
	// index on the inbound hash relies on the field being absent.
	InboundTxHash  string `bson:"inbound_tx_hash,omitempty"`
	OutboundTxHash string `bson:"outbound_tx_hash,omitempty"`

	Status       types.BridgeStatus `bson:"status"`
	FailureStage types.FailureStage `bson:"failure_stage,omitempty"`
	ErrorCode    string             `bson:"error_code,omitempty"`
	ErrorMessage string             `bson:"error_message,omitempty"`

	RetryCount            int                   `bson:"retry_count"`
	DistributionStartedAt int64                 `bson:"distribution_started_at,omitempty"`
	DistributionAttempts  []DistributionAttempt `bson:"distribution_attempts"`
	StatusHistory         []StatusChange        `bson:"status_history"`

	CreatedAt int64 `bson:"created_at"`
	UpdatedAt int64 `bson:"updated_at"`
}

// HasAmbiguousAttempt reports whether any send may have landed on-chain without a recorded hash.
func (d *BridgeTransactionDocument) HasAmbiguousAttempt() bool {
	for _, a := range d.DistributionAttempts {
		if a.Ambiguous {
			return true
		}
	}
	return false
}

// BridgeTransactionFilter narrows a history listing. Address matches either side.
type BridgeTransactionFilter struct {
	Address string
	Status  types.BridgeStatus
	Chain   types.Chain
}

type BridgeTransactionPagination struct {
	CreatedAt int64  `json:"created_at"`
	ID        string `json:"id"`
}

func BuildBridgeTransactionPaginationToken(d BridgeTransactionDocument) (string, error) {
	return GetPaginationToken(BridgeTransactionPagination{
		CreatedAt: d.CreatedAt,
		ID:        d.ID,
	})
}
