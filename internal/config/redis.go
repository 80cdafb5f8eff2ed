package config

import (
	"errors"
	"fmt"
	"time"
)

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	PriceTTL time.Duration `mapstructure:"price-ttl"`
}

func (cfg *RedisConfig) Validate() error {
	if cfg.Host == "" {
		return errors.New("redis host cannot be empty")
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return errors.New("invalid redis port")
	}

	if cfg.PriceTTL <= 0 {
		return errors.New("redis price-ttl must be positive")
	}

	return nil
}

func (cfg *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}
