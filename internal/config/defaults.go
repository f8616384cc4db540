package config

const (
	defaultConfigPath          = "~/.config/tscribe/config.toml"
	defaultBaseURL             = "http://localhost:5001/api"
	defaultTimeoutSeconds      = 30
	defaultProcessTimeout      = 900
	defaultUserAgent           = "tscribe/0.1.0"
	defaultCacheGCSeconds      = 300
	defaultCacheJanitorSeconds = 60
	defaultDraftsPath          = "~/.local/share/tscribe/drafts.db"
	defaultDownloadsDir        = "~/Downloads/tscribe"
	defaultNtfyRequestTimeout  = 10
	defaultLogDir              = "~/.local/share/tscribe/logs"
	defaultLogFormat           = "console"
	defaultLogLevel            = "warn"
	defaultServiceName         = "tscribe"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			BaseURL:        defaultBaseURL,
			TimeoutSeconds:        defaultTimeoutSeconds,
			ProcessTimeoutSeconds: defaultProcessTimeout,
			UserAgent:             defaultUserAgent,
		},
		Cache: Cache{
			GCSeconds:      defaultCacheGCSeconds,
			JanitorSeconds: defaultCacheJanitorSeconds,
		},
		Drafts: Drafts{
			Enabled: true,
			Path:    defaultDraftsPath,
		},
		Downloads: Downloads{
			Dir: defaultDownloadsDir,
		},
		Notifications: Notifications{
			Console:        true,
			RequestTimeout: defaultNtfyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Dir:    defaultLogDir,
		},
		Telemetry: Telemetry{
			ServiceName: defaultServiceName,
		},
	}
}
