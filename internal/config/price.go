package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

type PriceConfig struct {
	Host string `mapstructure:"host"`
	// Timeout in milliseconds
	Timeout int `mapstructure:"timeout"`
	// Optional api key sent as a header
	ApiKey string `mapstructure:"api-key"`
	// AssetIDs maps a token symbol to the price service asset id, e.g. XRP: ripple
	AssetIDs map[string]string `mapstructure:"asset-ids"`
}

func (cfg *PriceConfig) Validate() error {
	if cfg.Host == "" {
		return errors.New("price host cannot be empty")
	}

	if cfg.Timeout <= 0 {
		return errors.New("price timeout cannot be smaller or equal to 0")
	}

	parsedURL, err := url.ParseRequestURI(cfg.Host)
	if err != nil {
		return errors.New("invalid price service host")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("price host must start with http or https")
	}

	if len(cfg.AssetIDs) == 0 {
		return errors.New("price asset-ids cannot be empty")
	}
	normalized := make(map[string]string, len(cfg.AssetIDs))
	for symbol, id := range cfg.AssetIDs {
		if id == "" {
			return fmt.Errorf("price asset id for %s cannot be empty", symbol)
		}
		normalized[strings.ToUpper(symbol)] = id
	}
	cfg.AssetIDs = normalized

	return nil
}
