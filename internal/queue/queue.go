package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xrpbridge/bridge-api-service/internal/config"
	"github.com/xrpbridge/bridge-api-service/internal/observability/metrics"
	"github.com/xrpbridge/bridge-api-service/internal/queue/client"
	"github.com/xrpbridge/bridge-api-service/internal/queue/handlers"
	"github.com/xrpbridge/bridge-api-service/internal/utils"
)

// maxRetryAttempts is how often a failing message is requeued before it is
// stored as unprocessable.
const maxRetryAttempts = 3

type Queues struct {
	RestartQueueClient client.QueueClient
	Handlers           *handlers.QueueHandler
	processingTimeout  time.Duration
}

func New(cfg *config.QueueConfig, service handlers.RestartService) *Queues {
	restartQueueClient, err := client.NewQueueClient(cfg, cfg.RestartQueueName)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating RestartQueueClient")
	}
	return NewWithClient(restartQueueClient, handlers.NewQueueHandler(service), cfg.ProcessingTimeout)
}

func NewWithClient(restartQueueClient client.QueueClient, h *handlers.QueueHandler, timeout time.Duration) *Queues {
	return &Queues{
		RestartQueueClient: restartQueueClient,
		Handlers:           h,
		processingTimeout:  timeout,
	}
}

// Start all message processing
func (q *Queues) StartReceivingMessages() {
	startQueueMessageProcessing(
		q.RestartQueueClient, q.Handlers.RestartHandler, q.Handlers.HandleUnprocessedMessage,
		log.Logger, q.processingTimeout,
	)
}

// Turn off all message processing
func (q *Queues) StopReceivingMessages() {
	if err := q.RestartQueueClient.Stop(); err != nil {
		log.Error().Err(err).Str("queueName", q.RestartQueueClient.GetQueueName()).Msg("error while stopping queue")
	}
}

func (q *Queues) IsConnectionHealthy() error {
	if err := q.RestartQueueClient.Ping(); err != nil {
		return errors.Join(errors.New("restart queue is not healthy"), err)
	}
	return nil
}

// PublishRestartEvent queues a restart of the transaction's payout.
func (q *Queues) PublishRestartEvent(ctx context.Context, transactionID string) error {
	body, err := json.Marshal(client.NewRestartEvent(transactionID, utils.NowMilli()))
	if err != nil {
		return err
	}
	return q.RestartQueueClient.SendMessage(ctx, string(body))
}

func startQueueMessageProcessing(
	queueClient client.QueueClient,
	handler handlers.MessageHandler, unprocessableHandler handlers.UnprocessableMessageHandler,
	logger zerolog.Logger, timeout time.Duration,
) {
	messagesChan, err := queueClient.ReceiveMessages()
	if err != nil {
		logger.Fatal().Err(err).Str("queueName", queueClient.GetQueueName()).Msg("error setting up message channel from queue")
	}

	go func() {
		for message := range messagesChan {
			processMessage(queueClient, message, handler, unprocessableHandler, logger, timeout)
		}
	}()
}

func processMessage(
	queueClient client.QueueClient, message client.QueueMessage,
	handler handlers.MessageHandler, unprocessableHandler handlers.UnprocessableMessageHandler,
	logger zerolog.Logger, timeout time.Duration,
) {
	queueName := queueClient.GetQueueName()
	msgLogger := logger.With().Str("queueName", queueName).Str("receipt", message.Receipt).Logger()
	// For each message, create a new context with a deadline or timeout
	ctx, cancel := context.WithTimeout(msgLogger.WithContext(context.Background()), timeout)
	defer cancel()

	err := handler(ctx, message.Body)
	if err == nil {
		metrics.RecordQueueMessage(queueName, metrics.Success)
		if delErr := queueClient.DeleteMessage(message.Receipt); delErr != nil {
			msgLogger.Error().Err(delErr).Msg("error while deleting message from queue")
		}
		return
	}
	metrics.RecordQueueMessage(queueName, metrics.Error)
	msgLogger.Error().Err(err).Int32("retryAttempts", message.RetryAttempts).
		Msg("error while processing message from queue")

	if message.RetryAttempts < maxRetryAttempts {
		if reQueueErr := queueClient.ReQueueMessage(ctx, message); reQueueErr != nil {
			msgLogger.Error().Err(reQueueErr).Msg("error while requeuing message")
		}
		return
	}

	// Out of retries, park the message for a manual replay
	saveErr := unprocessableHandler(ctx, message.Body, message.Receipt, queueName, err.Error())
	if saveErr != nil {
		msgLogger.Error().Err(saveErr).Msg("error while saving unprocessable message")
		return
	}
	if delErr := queueClient.DeleteMessage(message.Receipt); delErr != nil {
		msgLogger.Error().Err(delErr).Msg("error while deleting message from queue")
	}
}
