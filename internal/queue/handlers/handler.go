package handlers

import (
	"context"
)

// RestartService is the part of the service layer the queue handlers drive.
type RestartService interface {
	ProcessRestartEvent(ctx context.Context, transactionID string) error
	SaveUnprocessableMessages(ctx context.Context, messageBody, receipt, queueName, reason string) error
}

type QueueHandler struct {
	Services RestartService
}

type MessageHandler func(ctx context.Context, messageBody string) error

// UnprocessableMessageHandler stores a message that exhausted its retries.
type UnprocessableMessageHandler func(ctx context.Context, messageBody, receipt, queueName, reason string) error

func NewQueueHandler(services RestartService) *QueueHandler {
	return &QueueHandler{
		Services: services,
	}
}

func (h *QueueHandler) HandleUnprocessedMessage(ctx context.Context, messageBody, receipt, queueName, reason string) error {
	return h.Services.SaveUnprocessableMessages(ctx, messageBody, receipt, queueName, reason)
}
