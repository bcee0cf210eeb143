// Package provider adapts hosted model services to runner.Model.
package provider

import (
	"fmt"

	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/fsagent/internal/config"
	"github.com/petasbytes/fsagent/internal/runner"
)

// New returns the model adapter selected by cfg.Provider.
func New(cfg config.Config) (runner.Model, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAI(NewOpenAIClient(cfg.APIKey, cfg.BaseURL), cfg.Model), nil
	case config.ProviderAnthropic:
		opts := []anthropicopt.RequestOption{anthropicopt.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropicopt.WithBaseURL(cfg.BaseURL))
		}
		return NewAnthropic(NewAnthropicClient(opts...), cfg.Model, cfg.MaxTokens), nil
	case config.ProviderGollm:
		g, err := NewGollm(cfg.GollmBackend, cfg.APIKey, cfg.Model, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("provider: unknown provider %q", cfg.Provider)
	}
}
