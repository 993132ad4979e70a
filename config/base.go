package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App  `yaml:"app"`
	Pow  `yaml:"pow"`
	Keys `yaml:"keys"`
}

// Load reads configuration from the YAML file at path, if any, then applies
// environment overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("invalid app configuration: %w", err)
	}
	if err := c.Pow.Validate(); err != nil {
		return fmt.Errorf("invalid pow configuration: %w", err)
	}
	if err := c.Keys.Validate(); err != nil {
		return fmt.Errorf("invalid keys configuration: %w", err)
	}
	return nil
}
