package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type ServerConfig struct {
	Host                string        `mapstructure:"host"`
	Port                int           `mapstructure:"port"`
	WriteTimeout        time.Duration `mapstructure:"write-timeout"`
	ReadTimeout         time.Duration `mapstructure:"read-timeout"`
	IdleTimeout         time.Duration `mapstructure:"idle-timeout"`
	AllowedOrigins      []string      `mapstructure:"allowed-origins"`
	LogLevel            string        `mapstructure:"log-level"`
	MaxContentLength    int64         `mapstructure:"max-content-length"`
	HealthCheckInterval int           `mapstructure:"health-check-interval"`
	// Requests per second allowed per client on mutating endpoints, 0 disables the limiter
	RateLimitRPS   float64 `mapstructure:"rate-limit-rps"`
	RateLimitBurst int     `mapstructure:"rate-limit-burst"`
	// Reverse proxies (IPs or CIDRs) whose X-Forwarded-For header is believed
	TrustedProxies []string `mapstructure:"trusted-proxies"`
}

func (cfg *ServerConfig) Validate() error {
	ip := net.ParseIP(cfg.Host)
	if ip == nil {
		return fmt.Errorf("invalid host: %v", cfg.Host)
	}

	if cfg.Port < 0 || cfg.Port > 65535 {
		return errors.New("invalid port")
	}

	if cfg.WriteTimeout < 0 {
		return errors.New("write timeout cannot be negative")
	}

	if cfg.ReadTimeout < 0 {
		return errors.New("read timeout cannot be negative")
	}

	if cfg.IdleTimeout < 0 {
		return errors.New("idle timeout cannot be negative")
	}

	if cfg.MaxContentLength <= 0 {
		return fmt.Errorf("MaxContentLength must be a positive integer")
	}

	if cfg.HealthCheckInterval <= 0 {
		return fmt.Errorf("HealthCheckInterval must be a positive integer")
	}

	if cfg.RateLimitRPS < 0 {
		return errors.New("rate limit rps cannot be negative")
	}

	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst <= 0 {
		return errors.New("rate limit burst must be positive when the rate limit is enabled")
	}

	if _, err := cfg.TrustedProxyNets(); err != nil {
		return err
	}

	return cfg.ValidateServerLogLevel()
}

// TrustedProxyNets parses trusted-proxies, a bare IP is a single host network.
func (cfg *ServerConfig) TrustedProxyNets() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(cfg.TrustedProxies))
	for _, entry := range cfg.TrustedProxies {
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy: %v", entry)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy: %v", entry)
		}
		nets = append(nets, ipNet)
	}
	return nets, nil
}

func (cfg *ServerConfig) ValidateServerLogLevel() error {
	// If log level is not set, we don't need to validate it, a default value will be used in service
	if cfg.LogLevel == "" {
		return nil
	}

	if parsedLevel, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	} else if parsedLevel < zerolog.DebugLevel || parsedLevel > zerolog.FatalLevel {
		return fmt.Errorf("only log levels from debug to fatal are supported")
	}
	return nil
}
