package preflight

import (
	"context"

	"coursecaptions/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// RunAll executes the preflight checks for cfg. The provider health check
// only runs once credentials are present.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckTargetLanguage(cfg.Translation.TargetLanguage),
	}

	credentials := CheckCredentials(cfg)
	results = append(results, credentials)
	if !credentials.Passed {
		return results
	}

	switch cfg.Translation.Provider {
	case config.ProviderGoogle:
		results = append(results, CheckGoogle(ctx, cfg))
	case config.ProviderLLM:
		results = append(results, CheckLLM(ctx, "LLM provider", cfg.GetLLM()))
	}
	return results
}
