package handlers

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/nosmoke/coachbot/bot/sos"
	coreconfig "github.com/nosmoke/coachbot/core/config"
	coredatabase "github.com/nosmoke/coachbot/core/database"
)

// Config aggregates the full application configuration: the reusable
// core sections plus database and LLM credentials.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	LLM      sos.Config          `yaml:"llm"`
}

// CoreConfig exposes the embedded core configuration to the cmd runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// LoadConfig reads the YAML file, applies environment overrides, and
// validates. A missing bot token or LLM key is fatal here, before any
// network work starts.
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
	if err := sos.Normalize(&cfg.LLM); err != nil {
		return nil, err
	}
	return &cfg, nil
}
