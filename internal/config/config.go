// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported model providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGollm     = "gollm"
)

const defaultOpenAIModel = "gpt-5-mini"

// Config holds everything the entry point needs to build a runner.
type Config struct {
	Provider     string `env:"AGT_PROVIDER" envDefault:"openai"`
	Model        string `env:"AGT_MODEL"`
	BaseURL      string `env:"AGT_BASE_URL"`
	GollmBackend string `env:"AGT_GOLLM_BACKEND" envDefault:"openai"`

	// APIKey is read from the provider's credential variable, see credentialVar.
	APIKey string `env:"-"`

	MaxTurns    int `env:"AGT_MAX_TURNS" envDefault:"8"`
	MaxTokens   int `env:"AGT_MAX_TOKENS" envDefault:"1024"`
	TokenBudget int `env:"AGT_TOKEN_BUDGET" envDefault:"0"`

	SandboxRoot    string `env:"AGT_SANDBOX_ROOT"`
	TranscriptPath string `env:"AGT_TRANSCRIPT_PATH"`

	ObserveJSON  bool   `env:"AGT_OBSERVE_JSON" envDefault:"false"`
	ArtifactsDir string `env:"AGT_ARTIFACTS_DIR"`

	LogLevel slog.Level `env:"AGT_LOG_LEVEL" envDefault:"warn"`
}

// ErrMissingCredential is returned when the selected provider has no API key.
var ErrMissingCredential = errors.New("missing model-service credential")

// Load reads a .env file from the working directory when present, then the
// process environment. Values already set in the environment win over .env.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(nil)
}

// FromEnv builds a Config from the variables in environ. A nil environ means
// the process environment.
func FromEnv(environ map[string]string) (Config, error) {
	if environ == nil {
		environ = make(map[string]string)
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok {
				environ[k] = v
			}
		}
	}
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.GollmBackend = strings.ToLower(strings.TrimSpace(cfg.GollmBackend))

	if cfg.MaxTurns <= 0 {
		return Config{}, fmt.Errorf("invalid AGT_MAX_TURNS %d: must be > 0", cfg.MaxTurns)
	}
	if cfg.MaxTokens <= 0 {
		return Config{}, fmt.Errorf("invalid AGT_MAX_TOKENS %d: must be > 0", cfg.MaxTokens)
	}
	if cfg.TokenBudget < 0 {
		return Config{}, fmt.Errorf("invalid AGT_TOKEN_BUDGET %d: must be a non-negative integer", cfg.TokenBudget)
	}

	keyVar, err := credentialVar(cfg.Provider, cfg.GollmBackend)
	if err != nil {
		return Config{}, err
	}
	cfg.APIKey = strings.TrimSpace(environ[keyVar])
	if cfg.APIKey == "" {
		return Config{}, fmt.Errorf("%w: export %s before running", ErrMissingCredential, keyVar)
	}

	if cfg.Model == "" {
		cfg.Model = defaultModel(cfg.Provider)
	}
	return cfg, nil
}

// credentialVar names the environment variable holding the API key for provider.
func credentialVar(provider, gollmBackend string) (string, error) {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY", nil
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY", nil
	case ProviderGollm:
		return strings.ToUpper(gollmBackend) + "_API_KEY", nil
	default:
		return "", fmt.Errorf("unknown AGT_PROVIDER %q (want openai, anthropic or gollm)", provider)
	}
}

// defaultModel returns "" for providers whose adapter picks its own default.
func defaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return defaultOpenAIModel
	}
	return ""
}
