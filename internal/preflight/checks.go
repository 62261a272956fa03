package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"coursecaptions/internal/config"
	"coursecaptions/internal/language"
	"coursecaptions/internal/services/googletranslate"
	"coursecaptions/internal/services/httpretry"
	"coursecaptions/internal/services/llm"
)

const healthTimeout = 30 * time.Second

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	client := llm.NewClient(llm.Config(cfg), llm.WithRetryMaxAttempts(1))
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("API reachable (%s)", cfg.Model)}
}

// CheckGoogle translates a single word with the configured key, or with
// Application Default Credentials when no key is set.
func CheckGoogle(ctx context.Context, cfg *config.Config) Result {
	const name = "Google Translate"
	if cfg.Google.APIKey == "" && !cfg.Google.UsesDefaultCredentials() {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	client := googletranslate.NewClient(googletranslate.Config{
		APIKey:         cfg.Google.APIKey,
		BaseURL:        cfg.Google.BaseURL,
		Model:          cfg.Translation.Model,
		TimeoutSeconds: cfg.Google.TimeoutSeconds,
	}, googletranslate.WithRetryPolicy(httpretry.Policy{MaxAttempts: 1}))
	defer func() { _ = client.Close() }()
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckCredentials reports whether the selected provider has an API key.
func CheckCredentials(cfg *config.Config) Result {
	name := "Provider credentials"
	if err := cfg.ProviderCredentialsError(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Translation.Provider}
}

// CheckTargetLanguage verifies the target language resolves to a provider code.
func CheckTargetLanguage(code string) Result {
	const name = "Target language"
	canonical, err := language.Canonical(code)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", canonical, language.DisplayName(canonical))}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// summarizeError produces a human-readable summary for health check failures.
func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	return err.Error()
}
