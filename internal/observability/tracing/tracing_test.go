package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachTracingIntoContext(t *testing.T) {
	ctx := AttachTracingIntoContext(context.Background())

	traceId, ok := ctx.Value(TraceIdKey).(string)
	require.True(t, ok)
	_, err := uuid.Parse(traceId)
	assert.NoError(t, err)

	info, ok := ctx.Value(TracingInfoKey).(*TracingInfo)
	require.True(t, ok)
	assert.Empty(t, info.SpanDetails)

	other := AttachTracingIntoContext(context.Background())
	assert.NotEqual(t, traceId, other.Value(TraceIdKey))
}

func TestWrapWithSpanRecordsSpans(t *testing.T) {
	ctx := AttachTracingIntoContext(context.Background())

	res, err := WrapWithSpan(ctx, "xrpl.FindIncomingPayment", func() (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", res)

	_, err = WrapWithSpan(ctx, "xrpl.SendPayment", func() (int, error) {
		return 0, errors.New("boom")
	})
	assert.EqualError(t, err, "boom")

	info := ctx.Value(TracingInfoKey).(*TracingInfo)
	require.Len(t, info.SpanDetails, 2)
	assert.Equal(t, "xrpl.FindIncomingPayment", info.SpanDetails[0].Name)
	assert.Equal(t, "xrpl.SendPayment", info.SpanDetails[1].Name)
}

func TestWrapWithSpanWithoutTracing(t *testing.T) {
	res, err := WrapWithSpan(context.Background(), "untraced", func() (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, res)
}
