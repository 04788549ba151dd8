package app

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/hotelbot/core/config"
	coredatabase "github.com/m3rciful/hotelbot/core/database"
	"github.com/m3rciful/hotelbot/internal/hotels"
)

// Config aggregates core settings with the bot's own sections.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Hotels   hotels.Config       `yaml:"hotels"`
	Currency string              `yaml:"currency" envconfig:"CURRENCY"`
}

// LoadConfig reads the YAML file at path and applies environment
// overrides on top.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if cfg.Hotels.Token == "" {
		return nil, fmt.Errorf("hotels token is required")
	}
	if cfg.Currency == "" {
		cfg.Currency = "RUB"
	}
	return &cfg, nil
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}
