package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrpbridge/bridge-api-service/internal/queue/client"
	"github.com/xrpbridge/bridge-api-service/internal/queue/handlers"
)

type fakeQueueClient struct {
	mu       sync.Mutex
	sent     []string
	deleted  []string
	requeued []client.QueueMessage
	pingErr  error
}

func (f *fakeQueueClient) SendMessage(ctx context.Context, messageBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, messageBody)
	return nil
}

func (f *fakeQueueClient) ReceiveMessages() (<-chan client.QueueMessage, error) {
	return make(chan client.QueueMessage), nil
}

func (f *fakeQueueClient) DeleteMessage(receipt string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, receipt)
	return nil
}

func (f *fakeQueueClient) ReQueueMessage(ctx context.Context, message client.QueueMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requeued = append(f.requeued, message)
	return nil
}

func (f *fakeQueueClient) Stop() error          { return nil }
func (f *fakeQueueClient) GetQueueName() string { return "bridge_restart_queue" }
func (f *fakeQueueClient) Ping() error          { return f.pingErr }

type fakeRestartService struct {
	processed     []string
	processErr    error
	unprocessable []string
}

func (f *fakeRestartService) ProcessRestartEvent(ctx context.Context, transactionID string) error {
	f.processed = append(f.processed, transactionID)
	return f.processErr
}

func (f *fakeRestartService) SaveUnprocessableMessages(ctx context.Context, messageBody, receipt, queueName, reason string) error {
	f.unprocessable = append(f.unprocessable, messageBody)
	return nil
}

func newTestQueues(service *fakeRestartService) (*Queues, *fakeQueueClient) {
	qc := &fakeQueueClient{}
	return NewWithClient(qc, handlers.NewQueueHandler(service), time.Second), qc
}

func restartMessage(t *testing.T, id string, retries int32) client.QueueMessage {
	body, err := json.Marshal(client.NewRestartEvent(id, 1700000000000))
	require.NoError(t, err)
	return client.QueueMessage{Body: string(body), Receipt: "7", RetryAttempts: retries}
}

func TestPublishRestartEvent(t *testing.T) {
	q, qc := newTestQueues(&fakeRestartService{})

	require.NoError(t, q.PublishRestartEvent(context.Background(), "tx-1"))
	require.Len(t, qc.sent, 1)

	var event client.RestartEvent
	require.NoError(t, json.Unmarshal([]byte(qc.sent[0]), &event))
	assert.Equal(t, client.RestartEventType, event.EventType)
	assert.Equal(t, "tx-1", event.TransactionID)
	assert.Positive(t, event.RequestedAt)
}

func TestProcessMessageAcksOnSuccess(t *testing.T) {
	service := &fakeRestartService{}
	q, qc := newTestQueues(service)

	processMessage(qc, restartMessage(t, "tx-1", 0), q.Handlers.RestartHandler,
		q.Handlers.HandleUnprocessedMessage, zerolog.Nop(), time.Second)

	assert.Equal(t, []string{"tx-1"}, service.processed)
	assert.Equal(t, []string{"7"}, qc.deleted)
	assert.Empty(t, qc.requeued)
}

func TestProcessMessageRequeuesOnFailure(t *testing.T) {
	service := &fakeRestartService{processErr: errors.New("chain unavailable")}
	q, qc := newTestQueues(service)

	processMessage(qc, restartMessage(t, "tx-1", 1), q.Handlers.RestartHandler,
		q.Handlers.HandleUnprocessedMessage, zerolog.Nop(), time.Second)

	require.Len(t, qc.requeued, 1)
	assert.Equal(t, int32(1), qc.requeued[0].RetryAttempts)
	assert.Empty(t, qc.deleted)
	assert.Empty(t, service.unprocessable)
}

func TestProcessMessageParksAfterMaxRetries(t *testing.T) {
	service := &fakeRestartService{processErr: errors.New("chain unavailable")}
	q, qc := newTestQueues(service)
	msg := restartMessage(t, "tx-1", maxRetryAttempts)

	processMessage(qc, msg, q.Handlers.RestartHandler,
		q.Handlers.HandleUnprocessedMessage, zerolog.Nop(), time.Second)

	assert.Empty(t, qc.requeued)
	assert.Equal(t, []string{msg.Body}, service.unprocessable)
	assert.Equal(t, []string{"7"}, qc.deleted)
}

func TestRestartHandlerRejectsForeignEvents(t *testing.T) {
	service := &fakeRestartService{}
	h := handlers.NewQueueHandler(service)

	err := h.RestartHandler(context.Background(), `{"event_type":2,"transaction_id":"tx-1"}`)
	assert.Error(t, err)
	err = h.RestartHandler(context.Background(), `not json`)
	assert.Error(t, err)
	assert.Empty(t, service.processed)
}

func TestIsConnectionHealthy(t *testing.T) {
	q, qc := newTestQueues(&fakeRestartService{})
	assert.NoError(t, q.IsConnectionHealthy())

	qc.pingErr = errors.New("rabbitmq connection is closed")
	assert.Error(t, q.IsConnectionHealthy())
}
