package config

import (
	"errors"
	"time"
)

type BridgeConfig struct {
	MaxRestartAttempts       int               `mapstructure:"max-restart-attempts"`
	VerificationPollBudget   time.Duration     `mapstructure:"verification-poll-budget"`
	VerificationPollInterval time.Duration     `mapstructure:"verification-poll-interval"`
	DistributionTimeout      time.Duration     `mapstructure:"distribution-timeout"`
	StaleExecutingAfter      time.Duration     `mapstructure:"stale-executing-after"`
	AutoRestart              AutoRestartConfig `mapstructure:"auto-restart"`
}

type AutoRestartConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int64         `mapstructure:"batch-size"`
}

func (cfg *BridgeConfig) Validate() error {
	if cfg.MaxRestartAttempts <= 0 {
		return errors.New("max-restart-attempts must be positive")
	}

	if cfg.VerificationPollBudget <= 0 {
		return errors.New("verification-poll-budget must be positive")
	}

	if cfg.VerificationPollInterval <= 0 || cfg.VerificationPollInterval > cfg.VerificationPollBudget {
		return errors.New("verification-poll-interval must be positive and within the poll budget")
	}

	if cfg.DistributionTimeout <= 0 {
		return errors.New("distribution-timeout must be positive")
	}

	// A record must not be declared stale while its send may still be in flight
	if cfg.StaleExecutingAfter <= cfg.DistributionTimeout {
		return errors.New("stale-executing-after must be greater than distribution-timeout")
	}

	if cfg.AutoRestart.Enabled {
		if cfg.AutoRestart.Interval < time.Second {
			return errors.New("auto-restart interval must be at least one second")
		}
		if cfg.AutoRestart.BatchSize <= 0 {
			return errors.New("auto-restart batch-size must be positive")
		}
	}

	return nil
}
