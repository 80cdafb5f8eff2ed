package client

import "context"

type QueueMessage struct {
	Body    string
	Receipt string
	// RetryAttempts counts how many times the message was requeued after a failure
	RetryAttempts int32
}

// A common interface for queue clients regardless if it's a SQS, RabbitMQ, etc.
type QueueClient interface {
	SendMessage(ctx context.Context, messageBody string) error
	ReceiveMessages() (<-chan QueueMessage, error)
	DeleteMessage(receipt string) error
	// ReQueueMessage publishes the message again with one more retry attempt and
	// acknowledges the original delivery.
	ReQueueMessage(ctx context.Context, message QueueMessage) error
	Stop() error
	GetQueueName() string
	Ping() error
}
