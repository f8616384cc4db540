package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"tscribe/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TSCRIBE_API_URL",
		"TSCRIBE_API_TIMEOUT_SECONDS",
		"TSCRIBE_API_PROCESS_TIMEOUT_SECONDS",
		"TSCRIBE_LOG_LEVEL",
		"TSCRIBE_LOG_FORMAT",
		"TSCRIBE_NTFY_TOPIC",
		"TSCRIBE_OTEL_ENDPOINT",
		"TSCRIBE_DRAFTS_PATH",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.API.BaseURL != "http://localhost:5001/api" {
		t.Fatalf("unexpected base url: %q", cfg.API.BaseURL)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.RequestTimeout())
	}
	if cfg.ProcessTimeout() != 15*time.Minute {
		t.Fatalf("unexpected process timeout: %v", cfg.ProcessTimeout())
	}
	wantDrafts := filepath.Join(tempHome, ".local", "share", "tscribe", "drafts.db")
	if cfg.Drafts.Path != wantDrafts {
		t.Fatalf("unexpected drafts path: got %q want %q", cfg.Drafts.Path, wantDrafts)
	}
	if cfg.Downloads.Dir != filepath.Join(tempHome, "Downloads", "tscribe") {
		t.Fatalf("unexpected downloads dir: %q", cfg.Downloads.Dir)
	}
	if cfg.Telemetry.Enabled {
		t.Fatal("expected telemetry disabled by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Logging.Dir, cfg.Downloads.Dir, filepath.Dir(cfg.Drafts.Path)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadReadsFileAndNormalizes(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg := config.Default()
	cfg.API.BaseURL = "https://transcripts.example.com/api/ "
	cfg.API.TimeoutSeconds = 0
	cfg.API.Headers = map[string]string{"x-team": " research "}
	cfg.Logging.Format = "JSON"
	cfg.Logging.Level = "Debug"

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected file to be found at %q, got %q (exists=%v)", path, resolved, exists)
	}
	if loaded.API.BaseURL != "https://transcripts.example.com/api" {
		t.Fatalf("expected trimmed base url, got %q", loaded.API.BaseURL)
	}
	if loaded.API.TimeoutSeconds != 30 {
		t.Fatalf("expected default timeout, got %d", loaded.API.TimeoutSeconds)
	}
	if got := loaded.API.Headers["X-Team"]; got != "research" {
		t.Fatalf("expected canonical header, got %v", loaded.API.Headers)
	}
	if loaded.Logging.Format != "json" || loaded.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", loaded.Logging)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TSCRIBE_API_URL", "http://backend.internal:9000/api")
	t.Setenv("TSCRIBE_API_TIMEOUT_SECONDS", "5")
	t.Setenv("TSCRIBE_API_PROCESS_TIMEOUT_SECONDS", "120")
	t.Setenv("TSCRIBE_OTEL_ENDPOINT", "http://collector:4318/v1/traces")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "http://backend.internal:9000/api" {
		t.Fatalf("expected env base url, got %q", cfg.API.BaseURL)
	}
	if cfg.RequestTimeout() != 5*time.Second {
		t.Fatalf("expected env timeout, got %v", cfg.RequestTimeout())
	}
	if cfg.ProcessTimeout() != 2*time.Minute {
		t.Fatalf("expected env process timeout, got %v", cfg.ProcessTimeout())
	}
	if !cfg.Telemetry.Enabled || cfg.Telemetry.Endpoint == "" {
		t.Fatalf("expected telemetry enabled by endpoint env, got %+v", cfg.Telemetry)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"scheme", func(c *config.Config) { c.API.BaseURL = "ftp://host/api" }, "http or https"},
		{"host", func(c *config.Config) { c.API.BaseURL = "http:///api" }, "host"},
		{"ntfy", func(c *config.Config) { c.Notifications.NtfyTopic = "my-topic" }, "ntfy_topic"},
		{"level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"telemetry", func(c *config.Config) { c.Telemetry.Enabled = true }, "telemetry.endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample config to load, exists=%v err=%v", exists, err)
	}
}
