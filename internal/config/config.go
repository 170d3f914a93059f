package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port              int    `env:"PORT" envDefault:"8080"`
	DatabaseURL       string `env:"DATABASE_URL,required"`
	RedisURL          string `env:"REDIS_URL,required"`
	BetaAdminPassword string `env:"BETA_ADMIN_PASSWORD"`
	AdminAPIKey       string `env:"ADMIN_API_KEY"`
	ResendAPIKey      string `env:"RESEND_API_KEY"`
	FromEmail         string `env:"FROM_EMAIL" envDefault:"FACILITAIR <team@facilitair.ai>"`
	BaseURL           string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	CloudflareAPIKey  string `env:"CLOUDFLARE_API_KEY"`
	CloudflareEmail   string `env:"CLOUDFLARE_EMAIL"`
	CloudflareZoneID  string `env:"CLOUDFLARE_ZONE_ID"`
	StaticDir         string `env:"STATIC_DIR" envDefault:"static"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) EmailEnabled() bool {
	return c.ResendAPIKey != ""
}

func (c *Config) CloudflareEnabled() bool {
	return c.CloudflareAPIKey != "" && c.CloudflareEmail != "" && c.CloudflareZoneID != ""
}

func (c *Config) Validate(isProduction bool) error {
	if isProduction {
		if err := validateSecret("BETA_ADMIN_PASSWORD", c.BetaAdminPassword); err != nil {
			return err
		}
		if err := validateSecret("ADMIN_API_KEY", c.AdminAPIKey); err != nil {
			return err
		}

		if !c.EmailEnabled() {
			log.Warn().Msg("RESEND_API_KEY is empty in production: confirmation and survey emails disabled")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 16 {
		return fmt.Errorf("%s must be at least 16 characters in production (generate with: openssl rand -base64 24)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
