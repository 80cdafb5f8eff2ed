package chains

import (
	"context"
	"fmt"

	"github.com/xrpbridge/bridge-api-service/internal/observability/metrics"
	"github.com/xrpbridge/bridge-api-service/internal/observability/tracing"
	"github.com/xrpbridge/bridge-api-service/internal/types"
)

// Registry resolves the adapter serving a chain.
type Registry struct {
	adapters map[types.Chain]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[types.Chain]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Chain()] = Instrument(a)
	}
	return r
}

func (r *Registry) Get(chain types.Chain) (Adapter, error) {
	a, ok := r.adapters[chain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChainNotConfigured, chain)
	}
	return a, nil
}

// Require fails when any of the chains has no adapter.
func (r *Registry) Require(chains []types.Chain) error {
	for _, c := range chains {
		if _, err := r.Get(c); err != nil {
			return err
		}
	}
	return nil
}

type instrumented struct {
	Adapter
}

// Instrument wraps an adapter so that its network calls are timed and traced.
func Instrument(a Adapter) Adapter {
	if _, ok := a.(*instrumented); ok {
		return a
	}
	return &instrumented{Adapter: a}
}

func (i *instrumented) FindIncomingPayment(ctx context.Context, q PaymentQuery) (*IncomingPayment, error) {
	done := metrics.StartChainCallTimer(i.Chain().ToString(), "find_incoming_payment")
	payment, err := tracing.WrapWithSpan(ctx, i.Chain().ToString()+"_find_incoming_payment", func() (*IncomingPayment, error) {
		return i.Adapter.FindIncomingPayment(ctx, q)
	})
	done(outcomeOf(err))
	return payment, err
}

func (i *instrumented) SendPayment(ctx context.Context, req PaymentRequest) (string, error) {
	done := metrics.StartChainCallTimer(i.Chain().ToString(), "send_payment")
	hash, err := tracing.WrapWithSpan(ctx, i.Chain().ToString()+"_send_payment", func() (string, error) {
		return i.Adapter.SendPayment(ctx, req)
	})
	done(outcomeOf(err))
	return hash, err
}

func outcomeOf(err error) metrics.Outcome {
	if err != nil {
		return metrics.Error
	}
	return metrics.Success
}
