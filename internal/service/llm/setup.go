package llm

import (
	"fmt"
	"log/slog"

	"contentpilot/internal/config"
	"contentpilot/internal/domain/repositories"
)

// SetupProviders builds the provider registry and the per-owner resolver.
func SetupProviders(cfg *config.Config, settings repositories.UserSettingsRepository, logger *slog.Logger) (*Resolver, error) {
	registry := NewProviderRegistry(NewProviderFactory(cfg), cfg.OpenAIBaseURL, cfg.OpenAIAPIKey)

	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("provider registry validation failed: %w", err)
	}

	if cfg.OpenAIAPIKey != "" {
		logger.Info("provider available", "name", ProviderOpenAI, "models", "gpt-*, o1-*, o3-*")
	} else {
		logger.Warn("OPENAI_API_KEY not set - OpenAI models need a per-user key")
	}
	if cfg.OpenRouterAPIKey != "" {
		logger.Info("provider available", "name", ProviderOpenRouter, "models", "openrouter/*")
	}
	if cfg.AnthropicAPIKey != "" {
		logger.Info("provider available", "name", ProviderAnthropic, "models", "claude-*")
	}
	logger.Info("provider available", "name", ProviderLorem, "models", "lorem-*")

	return NewResolver(registry, settings, logger), nil
}
