package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadYAML reads and parses a YAML config file, applying defaults to any
// unset field.
func LoadYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return sanitize(&cfg), nil
}

// LoadTOML reads and parses a TOML config file, used by the CLI's
// --config-format toml flag. Most deployments use YAML; TOML is offered for
// operators who prefer it for local tool configuration.
func LoadTOML(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return sanitize(&cfg), nil
}
