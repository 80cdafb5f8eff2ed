package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Db      DbConfig      `mapstructure:"db"`
	Queue   QueueConfig   `mapstructure:"queue"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Redis   *RedisConfig  `mapstructure:"redis"`
	Price   PriceConfig   `mapstructure:"price"`
	Bridge  BridgeConfig  `mapstructure:"bridge"`
	Chains  ChainsConfig  `mapstructure:"chains"`

	// Secrets never live in the yaml file, they are loaded from the environment.
	Secrets Secrets `mapstructure:"-"`
}

func (cfg *Config) Validate() error {
	if err := cfg.Server.Validate(); err != nil {
		return err
	}

	if err := cfg.Db.Validate(); err != nil {
		return err
	}

	if err := cfg.Metrics.Validate(); err != nil {
		return err
	}

	if err := cfg.Queue.Validate(); err != nil {
		return err
	}

	// Redis is optional, without it prices are fetched on every quote
	if cfg.Redis != nil {
		if err := cfg.Redis.Validate(); err != nil {
			return err
		}
	}

	if err := cfg.Price.Validate(); err != nil {
		return err
	}

	if err := cfg.Bridge.Validate(); err != nil {
		return err
	}

	if err := cfg.Chains.Validate(); err != nil {
		return err
	}

	return cfg.Secrets.Validate(&cfg.Chains)
}

// New returns a fully parsed Config object from a given file directory
func New(cfgFile string) (*Config, error) {
	_, err := os.Stat(cfgFile)
	if err != nil {
		return nil, err
	}

	viper.SetConfigFile(cfgFile)

	viper.AutomaticEnv()
	/*
		Nested fields are joined with `_` and any `-` is turned into `__` when overriding via env variable:
		1. `some.config.a` can be overriden by `SOME_CONFIG_A`
		2. `some.config-a` can be overriden by `SOME_CONFIG__A`
	*/
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "__"))

	err = viper.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err = viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	secrets, err := LoadSecrets()
	if err != nil {
		return nil, err
	}
	cfg.Secrets = *secrets

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
