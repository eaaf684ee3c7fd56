package sos

import (
	"fmt"
	"strings"
)

const (
	defaultModel          = "openchat/openchat-3.5"
	defaultBaseURL        = "https://openrouter.ai/api/v1"
	defaultTimeoutSeconds = 30
)

// Config holds settings for the support-request gateway.
type Config struct {
	APIKey         string `yaml:"api_key" envconfig:"LLM_API_KEY"`
	Model          string `yaml:"model" envconfig:"LLM_MODEL"`
	BaseURL        string `yaml:"base_url" envconfig:"LLM_BASE_URL"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"LLM_TIMEOUT_SECONDS"`
}

// Normalize validates required fields and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil llm config")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.TimeoutSeconds < 0 {
		return fmt.Errorf("llm.timeout_seconds must be >= 0")
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = defaultTimeoutSeconds
	}
	return nil
}
