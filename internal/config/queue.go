package config

import (
	"errors"
	"fmt"
	"time"
)

const defaultRestartQueueName = "bridge_restart_queue"

type QueueConfig struct {
	Url               string        `mapstructure:"url"`
	QueueUser         string        `mapstructure:"user"`
	QueuePassword     string        `mapstructure:"password"`
	RestartQueueName  string        `mapstructure:"restart-queue-name"`
	ProcessingTimeout time.Duration `mapstructure:"processing-timeout"`
	Prefetch          int           `mapstructure:"prefetch"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.Url == "" {
		return fmt.Errorf("missing queue url")
	}

	if cfg.QueueUser == "" || cfg.QueuePassword == "" {
		return errors.New("missing queue credentials")
	}

	if cfg.RestartQueueName == "" {
		cfg.RestartQueueName = defaultRestartQueueName
	}

	if cfg.ProcessingTimeout <= 0 {
		return errors.New("queue processing timeout must be positive")
	}

	if cfg.Prefetch < 0 {
		return errors.New("queue prefetch cannot be negative")
	}

	return nil
}

func (cfg *QueueConfig) AmqpURI() string {
	return fmt.Sprintf("amqp://%s:%s@%s", cfg.QueueUser, cfg.QueuePassword, cfg.Url)
}
