package chains

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PollForPayment calls find until it succeeds, the payment is found to mismatch or the
// budget runs out. Every other error, ErrPaymentNotFound and ErrNotFinal included, is
// retried each interval. When the caller's ctx is cancelled its error is returned,
// budget exhaustion yields an error wrapping ErrPollBudgetExhausted.
func PollForPayment(
	ctx context.Context, budget, interval time.Duration,
	find func(ctx context.Context) (*IncomingPayment, error),
) (*IncomingPayment, error) {
	budgetCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		payment, err := find(budgetCtx)
		if err == nil {
			return payment, nil
		}
		if IsPaymentMismatch(err) {
			return nil, err
		}
		lastErr = err

		select {
		case <-budgetCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %v", ErrPollBudgetExhausted, lastErr)
		case <-ticker.C:
		}
	}
}

// IsStillPending reports whether err only says the payment is not there yet.
func IsStillPending(err error) bool {
	return errors.Is(err, ErrPaymentNotFound) || errors.Is(err, ErrNotFinal)
}
