package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xrpbridge/bridge-api-service/internal/config"
)

const retryAttemptsHeader = "x-retry-attempts"

type RabbitMqClient struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	queueName  string
}

func NewQueueClient(cfg *config.QueueConfig, queueName string) (*RabbitMqClient, error) {
	conn, err := amqp.Dial(cfg.AmqpURI())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	if cfg.Prefetch > 0 {
		if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
			conn.Close()
			return nil, err
		}
	}
	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		amqp.Table{"x-queue-type": "quorum"},
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	return &RabbitMqClient{
		connection: conn,
		channel:    ch,
		queueName:  queueName,
	}, nil
}

func (c *RabbitMqClient) ReceiveMessages() (<-chan QueueMessage, error) {
	deliveries, err := c.channel.Consume(
		c.queueName,
		"",    // consumer
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return nil, err
	}

	output := make(chan QueueMessage)
	go func() {
		defer close(output)
		for d := range deliveries {
			output <- QueueMessage{
				Body:          string(d.Body),
				Receipt:       strconv.FormatUint(d.DeliveryTag, 10),
				RetryAttempts: retryAttempts(d.Headers),
			}
		}
	}()
	return output, nil
}

func (c *RabbitMqClient) DeleteMessage(receipt string) error {
	tag, err := strconv.ParseUint(receipt, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid receipt %q: %w", receipt, err)
	}
	return c.channel.Ack(tag, false)
}

func (c *RabbitMqClient) ReQueueMessage(ctx context.Context, message QueueMessage) error {
	err := c.publish(ctx, message.Body, amqp.Table{retryAttemptsHeader: message.RetryAttempts + 1})
	if err != nil {
		return err
	}
	return c.DeleteMessage(message.Receipt)
}

func (c *RabbitMqClient) SendMessage(ctx context.Context, messageBody string) error {
	return c.publish(ctx, messageBody, nil)
}

func (c *RabbitMqClient) publish(ctx context.Context, body string, headers amqp.Table) error {
	return c.channel.PublishWithContext(ctx,
		"",          // default exchange
		c.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Headers:      headers,
			Body:         []byte(body),
		},
	)
}

func (c *RabbitMqClient) Stop() error {
	if err := c.channel.Close(); err != nil {
		return err
	}
	return c.connection.Close()
}

func (c *RabbitMqClient) GetQueueName() string {
	return c.queueName
}

func (c *RabbitMqClient) Ping() error {
	if c.connection.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	if c.channel.IsClosed() {
		return errors.New("rabbitmq channel is closed")
	}
	return nil
}

func retryAttempts(headers amqp.Table) int32 {
	switch v := headers[retryAttemptsHeader].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case int:
		return int32(v)
	default:
		return 0
	}
}
