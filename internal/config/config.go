package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// API contains the backend connection settings shared by every request.
type API struct {
	BaseURL               string            `toml:"base_url"`
	TimeoutSeconds        int               `toml:"timeout_seconds"`
	ProcessTimeoutSeconds int               `toml:"process_timeout_seconds"`
	UserAgent             string            `toml:"user_agent"`
	Headers               map[string]string `toml:"headers"`
}

// Cache contains lifecycle tuning for server-derived cache entries.
type Cache struct {
	GCSeconds      int `toml:"gc_seconds"`
	JanitorSeconds int `toml:"janitor_seconds"`
}

// Drafts contains configuration for locally persisted form drafts.
type Drafts struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Downloads contains configuration for transcript and audio file downloads.
type Downloads struct {
	Dir string `toml:"dir"`
}

// Notifications contains configuration for user-facing notification sinks.
type Notifications struct {
	Console        bool   `toml:"console"`
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Telemetry contains OpenTelemetry tracing settings. Tracing is opt-in.
type Telemetry struct {
	Enabled     bool   `toml:"enabled"`
	Endpoint    string `toml:"endpoint"`
	ServiceName string `toml:"service_name"`
}

// Config encapsulates all configuration values for tscribe.
//
// Configuration sections by subsystem:
//   - API: backend base URL, timeout, default headers
//   - Cache: garbage collection of unobserved server entries
//   - Drafts: SQLite file holding unsaved form input
//   - Downloads: target directory for transcript/audio files
//   - Notifications: console output and optional ntfy push
//   - Logging: log format, level, and directory
//   - Telemetry: OTLP trace export
type Config struct {
	API           API           `toml:"api"`
	Cache         Cache         `toml:"cache"`
	Drafts        Drafts        `toml:"drafts"`
	Downloads     Downloads     `toml:"downloads"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
	Telemetry     Telemetry     `toml:"telemetry"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and environment overrides applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tscribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the CLI writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Logging.Dir, c.Downloads.Dir}
	if c.Drafts.Enabled && c.Drafts.Path != "" {
		dirs = append(dirs, filepath.Dir(c.Drafts.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RequestTimeout returns the per-request transport timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// ProcessTimeout bounds calls that wait for the backend's processing pipeline.
func (c *Config) ProcessTimeout() time.Duration {
	return time.Duration(c.API.ProcessTimeoutSeconds) * time.Second
}

// GCInterval returns how long an unobserved server entry survives.
func (c *Config) GCInterval() time.Duration {
	return time.Duration(c.Cache.GCSeconds) * time.Second
}

// JanitorInterval returns how often the cache janitor sweeps entries.
func (c *Config) JanitorInterval() time.Duration {
	return time.Duration(c.Cache.JanitorSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
