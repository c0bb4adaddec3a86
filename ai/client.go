// Package ai selects and wraps LLM providers behind a single Client interface.
package ai

import (
	"context"

	"go.uber.org/zap"

	"github.com/seekwell/seekwell/ai/local"
	"github.com/seekwell/seekwell/ai/openrouter"
	"github.com/seekwell/seekwell/config"
)

// Provider represents an LLM provider type
type Provider string

const (
	// ProviderLocal uses local inference (Ollama, LocalAI)
	ProviderLocal Provider = "local"
	// ProviderOpenRouter uses OpenRouter.ai API
	ProviderOpenRouter Provider = "openrouter"
	// ProviderAuto automatically selects based on configuration
	ProviderAuto Provider = "auto"
)

// Client interface for all LLM providers.
// Ensures compatibility between different providers.
type Client interface {
	Chat(ctx context.Context, req openrouter.ChatRequest) (*openrouter.ChatResponse, error)
}

// NewClient creates an AI client based on configuration (auto-selection).
// Priority: OpenRouter (if API key set) → local inference.
func NewClient(cfg *config.Config, logger *zap.SugaredLogger) Client {
	return NewClientWithProvider(cfg, Provider(cfg.Inference.Provider), logger)
}

// NewClientWithProvider creates an AI client for a specific provider.
// Use ProviderAuto to let the factory decide based on configuration.
func NewClientWithProvider(cfg *config.Config, provider Provider, logger *zap.SugaredLogger) Client {
	switch provider {
	case ProviderLocal:
		return newLocalClient(cfg, logger)
	case ProviderOpenRouter:
		return newOpenRouterClient(cfg, logger)
	default:
		if cfg.Inference.OpenRouter.APIKey != "" {
			return newOpenRouterClient(cfg, logger)
		}
		return newLocalClient(cfg, logger)
	}
}

func newLocalClient(cfg *config.Config, logger *zap.SugaredLogger) Client {
	return local.NewClient(local.Config{
		BaseURL:        cfg.Inference.Local.BaseURL,
		Model:          cfg.Inference.Local.Model,
		TimeoutSeconds: cfg.Inference.Local.TimeoutSeconds,
		Logger:         logger,
	})
}

func newOpenRouterClient(cfg *config.Config, logger *zap.SugaredLogger) Client {
	return openrouter.NewClient(openrouter.Config{
		APIKey:      cfg.Inference.OpenRouter.APIKey,
		Model:       cfg.Inference.OpenRouter.Model,
		Temperature: cfg.Inference.OpenRouter.Temperature,
		MaxTokens:   cfg.Inference.OpenRouter.MaxTokens,
		Logger:      logger,
	})
}
