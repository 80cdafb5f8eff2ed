package chains

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xrpbridge/bridge-api-service/internal/types"
)

// PaymentQuery describes the inbound payment a bridge transaction expects.
type PaymentQuery struct {
	TxHash         string
	DepositAddress string
	// Memo is empty on chains that do not carry one
	Memo      string
	Token     types.TokenInfo
	MinAmount decimal.Decimal
}

// IncomingPayment is a finalized payment that satisfied a PaymentQuery.
type IncomingPayment struct {
	TxHash string
	From   string
	To     string
	Amount decimal.Decimal
	Memo   string
}

type PaymentRequest struct {
	// Reference is the bridge transaction id, for logging on the adapter side
	Reference   string
	Destination string
	Amount      decimal.Decimal
	Token       types.TokenInfo
}

// Adapter is the narrow per-chain surface the pipeline drives. Implementations must
// honour ctx deadlines and report through the error types of this package.
type Adapter interface {
	Chain() types.Chain
	SupportsMemo() bool
	BankAddress() string
	ValidateAddress(address string) error
	// FindIncomingPayment returns ErrPaymentNotFound or ErrNotFinal while the payment
	// may still show up, and a *PaymentMismatchError once it can never satisfy the query.
	FindIncomingPayment(ctx context.Context, query PaymentQuery) (*IncomingPayment, error)
	// SendPayment pays out from the bank wallet. Failures are *SendError.
	SendPayment(ctx context.Context, req PaymentRequest) (string, error)
	ExplorerURLFor(txHash string) string
}
