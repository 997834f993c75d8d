package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct using `env` tags.
//
// Example:
//
//	type Config struct {
//	    Port       int    `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`
//	    BackendURL string `env:"BACKEND_BASE_URL"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
