package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
)

// Permission modes select where the send-permission answer comes from.
const (
	PermissionModeGateway = "gateway"
	PermissionModeGranted = "granted"
	PermissionModeDenied  = "denied"
)

type Config struct {
	GatewayURL         string        `env:"SMS_GATEWAY_URL,required=true"`
	GatewayTimeout     time.Duration `env:"SMS_GATEWAY_TIMEOUT,default=10s"`
	PermissionMode     string        `env:"SMS_PERMISSION_MODE,default=gateway"`
	DefaultCallingCode string        `env:"DEFAULT_CALLING_CODE,default=91"`
	RedisURL           string        `env:"REDIS_URL"`
	RateLimitPerSec    int           `env:"RATE_LIMIT_PER_SEC,default=100"`
	APIPort            int           `env:"API_PORT,default=8080"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	LogLevel           string        `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.GatewayURL) == "" {
		return fmt.Errorf("SMS_GATEWAY_URL is required")
	}

	c.PermissionMode = strings.ToLower(strings.TrimSpace(c.PermissionMode))
	switch c.PermissionMode {
	case PermissionModeGateway, PermissionModeGranted, PermissionModeDenied:
	default:
		return fmt.Errorf("invalid SMS_PERMISSION_MODE %q", c.PermissionMode)
	}

	code := strings.TrimPrefix(strings.TrimSpace(c.DefaultCallingCode), "+")
	if code == "" {
		return fmt.Errorf("DEFAULT_CALLING_CODE is required")
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return fmt.Errorf("invalid DEFAULT_CALLING_CODE %q", c.DefaultCallingCode)
		}
	}
	c.DefaultCallingCode = code

	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("invalid API_PORT %d", c.APIPort)
	}
	return nil
}

// RateLimitEnabled reports whether sends should be throttled through Redis.
func (c *Config) RateLimitEnabled() bool {
	return strings.TrimSpace(c.RedisURL) != "" && c.RateLimitPerSec > 0
}
