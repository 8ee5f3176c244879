package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the process configuration. JWTSecretKey is not required at
// boot: production runs fail with a configuration error when it is missing,
// every other operation works without it.
type Config struct {
	DatabaseURL    string `envconfig:"DATABASE_URL" required:"true"`
	ServerPort     string `envconfig:"SERVER_PORT" default:"8080"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS"`
	JWTSecretKey   string `envconfig:"JWT_SECRET_KEY"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the configuration from the environment, with .env fallback.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &cfg, nil
}
