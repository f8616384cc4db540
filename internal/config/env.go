package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envOverrides holds raw TSCRIBE_* values. Empty or zero fields leave the
// file/default value in place.
type envOverrides struct {
	BaseURL               string `env:"TSCRIBE_API_URL"`
	TimeoutSeconds        int    `env:"TSCRIBE_API_TIMEOUT_SECONDS"`
	ProcessTimeoutSeconds int    `env:"TSCRIBE_API_PROCESS_TIMEOUT_SECONDS"`
	LogLevel              string `env:"TSCRIBE_LOG_LEVEL"`
	LogFormat             string `env:"TSCRIBE_LOG_FORMAT"`
	NtfyTopic             string `env:"TSCRIBE_NTFY_TOPIC"`
	OTelEndpoint          string `env:"TSCRIBE_OTEL_ENDPOINT"`
	DraftsPath            string `env:"TSCRIBE_DRAFTS_PATH"`
}

func (c *Config) applyEnv() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if v := strings.TrimSpace(overrides.BaseURL); v != "" {
		c.API.BaseURL = v
	}
	if overrides.TimeoutSeconds > 0 {
		c.API.TimeoutSeconds = overrides.TimeoutSeconds
	}
	if overrides.ProcessTimeoutSeconds > 0 {
		c.API.ProcessTimeoutSeconds = overrides.ProcessTimeoutSeconds
	}
	if v := strings.TrimSpace(overrides.LogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(overrides.LogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := strings.TrimSpace(overrides.NtfyTopic); v != "" {
		c.Notifications.NtfyTopic = v
	}
	if v := strings.TrimSpace(overrides.OTelEndpoint); v != "" {
		c.Telemetry.Endpoint = v
		c.Telemetry.Enabled = true
	}
	if v := strings.TrimSpace(overrides.DraftsPath); v != "" {
		c.Drafts.Path = v
	}
	return nil
}
