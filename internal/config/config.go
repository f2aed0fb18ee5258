// Package config loads process configuration once at startup into an
// immutable struct that gets passed to components explicitly. Nothing in the
// rest of the codebase reads environment variables directly.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ErrMissingJWTSecret makes a missing signing secret a fatal startup
// condition rather than a per-request failure.
var ErrMissingJWTSecret = errors.New("config: JWT_SECRET is not set")

// Config holds all runtime settings for the API server.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	MongoURI    string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB     string `env:"MONGO_DB" envDefault:"farm_rakshaa"`
	JWTSecret   string `env:"JWT_SECRET"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`

	// VetAutoApprove controls whether vet accounts are usable immediately
	// after registration or held until reviewed.
	VetAutoApprove bool `env:"VET_AUTO_APPROVE" envDefault:"true"`

	Minio Minio `envPrefix:"MINIO_"`
}

// Minio holds object-storage settings for vet document uploads.
type Minio struct {
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey string `env:"SECRET_KEY" envDefault:"minioadmin"`
	Bucket    string `env:"BUCKET" envDefault:"farm-documents"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// Load parses the environment into a Config and validates the settings that
// cannot have safe defaults.
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	return &cfg, nil
}

// IsProduction reports whether the server should apply production hardening
// such as the Secure cookie attribute.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
