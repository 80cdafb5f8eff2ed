package chains

import (
	"errors"
	"fmt"
)

var (
	ErrPaymentNotFound = errors.New("payment not found on chain")
	ErrNotFinal        = errors.New("payment is not final yet")
	// ErrPollBudgetExhausted means the payment never became final within the poll budget
	ErrPollBudgetExhausted = errors.New("payment not confirmed within the poll budget")
	ErrChainNotConfigured  = errors.New("chain is not configured")
)

// PaymentMismatchError means the referenced transaction exists but can never prove the payment.
type PaymentMismatchError struct {
	Reason string
}

func (e *PaymentMismatchError) Error() string {
	return "payment does not match: " + e.Reason
}

func NewPaymentMismatch(format string, args ...interface{}) *PaymentMismatchError {
	return &PaymentMismatchError{Reason: fmt.Sprintf(format, args...)}
}

func IsPaymentMismatch(err error) bool {
	var target *PaymentMismatchError
	return errors.As(err, &target)
}

// SendError is returned by SendPayment. Ambiguous is set when the payment may
// have reached the chain, e.g. a timeout after submission.
type SendError struct {
	Err       error
	Ambiguous bool
	// TxHash is known when the chain accepted the submission
	TxHash string
}

func (e *SendError) Error() string {
	if e.Ambiguous {
		return fmt.Sprintf("ambiguous send: %v", e.Err)
	}
	return fmt.Sprintf("send failed: %v", e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

func NewRejectedSend(err error) *SendError {
	return &SendError{Err: err}
}

func NewAmbiguousSend(err error, txHash string) *SendError {
	return &SendError{Err: err, Ambiguous: true, TxHash: txHash}
}

// IsAmbiguous reports whether err leaves the outcome of a send unknown. Errors that
// are not a *SendError are treated as ambiguous.
func IsAmbiguous(err error) bool {
	var target *SendError
	if errors.As(err, &target) {
		return target.Ambiguous
	}
	return err != nil
}
