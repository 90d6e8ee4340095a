package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"contentpilot/internal/domain"
	"contentpilot/internal/domain/repositories"
	"contentpilot/internal/domain/services"
)

// Resolver picks a generator for an owner and a model string.
// OpenAI models use the owner's own key when their settings carry one.
type Resolver struct {
	registry *ProviderRegistry
	settings repositories.UserSettingsRepository
	logger   *slog.Logger
}

var _ services.GeneratorResolver = (*Resolver)(nil)

// NewResolver creates a resolver. settings may be nil, in which case only server keys are used.
func NewResolver(registry *ProviderRegistry, settings repositories.UserSettingsRepository, logger *slog.Logger) *Resolver {
	return &Resolver{
		registry: registry,
		settings: settings,
		logger:   logger,
	}
}

// Resolve returns the generator and the provider-local model id.
func (r *Resolver) Resolve(ctx context.Context, ownerID, model string) (services.TextGenerator, string, error) {
	info, err := ParseModel(model)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if info.Provider == ProviderOpenAI && r.settings != nil && ownerID != "" {
		userSettings, err := r.settings.GetByUserID(ctx, ownerID)
		if err != nil {
			return nil, "", fmt.Errorf("load settings: %w", err)
		}
		if userSettings != nil && userSettings.AIAPIKey != nil && strings.TrimSpace(*userSettings.AIAPIKey) != "" {
			r.logger.Debug("using owner api key", "user_id", ownerID, "model", info.Model)
			return r.registry.OpenAIWithKey(strings.TrimSpace(*userSettings.AIAPIKey)), info.Model, nil
		}
	}

	generator, err := r.registry.GetGenerator(info.Provider)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	return generator, info.Model, nil
}
