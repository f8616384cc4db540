package preflight

import (
	"context"

	"tscribe/internal/config"
	"tscribe/internal/transport"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, client *transport.Client) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckBackend(ctx, client)}

	if cfg.Downloads.Dir != "" {
		results = append(results, CheckDirectoryAccess("Download directory", cfg.Downloads.Dir))
	}
	if cfg.Logging.Dir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Logging.Dir))
	}

	// Drafts (only when persisted)
	if cfg.Drafts.Enabled && cfg.Drafts.Path != "" {
		results = append(results, CheckDrafts(cfg.Drafts.Path))
	}

	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
