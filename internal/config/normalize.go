package config

import (
	"fmt"
	"net/http"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeAPI()
	c.normalizeCache()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	c.normalizeTelemetry()
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultBaseURL
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.API.ProcessTimeoutSeconds <= 0 {
		c.API.ProcessTimeoutSeconds = defaultProcessTimeout
	}
	if c.API.ProcessTimeoutSeconds < c.API.TimeoutSeconds {
		c.API.ProcessTimeoutSeconds = c.API.TimeoutSeconds
	}
	c.API.UserAgent = strings.TrimSpace(c.API.UserAgent)
	if c.API.UserAgent == "" {
		c.API.UserAgent = defaultUserAgent
	}
	if len(c.API.Headers) > 0 {
		headers := make(map[string]string, len(c.API.Headers))
		for name, value := range c.API.Headers {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			headers[http.CanonicalHeaderKey(name)] = strings.TrimSpace(value)
		}
		c.API.Headers = headers
	}
}

func (c *Config) normalizeCache() {
	if c.Cache.GCSeconds <= 0 {
		c.Cache.GCSeconds = defaultCacheGCSeconds
	}
	if c.Cache.JanitorSeconds <= 0 {
		c.Cache.JanitorSeconds = defaultCacheJanitorSeconds
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Drafts.Path) == "" {
		c.Drafts.Path = defaultDraftsPath
	}
	if c.Drafts.Path, err = expandPath(c.Drafts.Path); err != nil {
		return fmt.Errorf("drafts.path: %w", err)
	}
	if strings.TrimSpace(c.Downloads.Dir) == "" {
		c.Downloads.Dir = defaultDownloadsDir
	}
	if c.Downloads.Dir, err = expandPath(c.Downloads.Dir); err != nil {
		return fmt.Errorf("downloads.dir: %w", err)
	}
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeTelemetry() {
	c.Telemetry.Endpoint = strings.TrimSpace(c.Telemetry.Endpoint)
	c.Telemetry.ServiceName = strings.TrimSpace(c.Telemetry.ServiceName)
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = defaultServiceName
	}
}
