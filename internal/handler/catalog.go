package handler

import (
	"log/slog"
	"net/http"

	"contentpilot/internal/catalog"
	"contentpilot/internal/config"
	"contentpilot/internal/httputil"
	"contentpilot/internal/service/prompt"
)

// CatalogHandler serves the read-only model and content type lists
type CatalogHandler struct {
	config   *config.Config
	logger   *slog.Logger
	registry *catalog.Registry
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(cfg *config.Config, logger *slog.Logger, registry *catalog.Registry) *CatalogHandler {
	return &CatalogHandler{
		config:   cfg,
		logger:   logger,
		registry: registry,
	}
}

// ProviderResponse represents a provider with its models
type ProviderResponse struct {
	ID         string          `json:"id"`
	Configured bool            `json:"configured"`
	Models     []catalog.Model `json:"models"`
}

// GetModels lists selectable models grouped by provider, with the server defaults
// GET /api/models?stage=
func (h *CatalogHandler) GetModels(w http.ResponseWriter, r *http.Request) {
	models := h.registry.List()
	if stage := httputil.QueryParam(r, "stage"); stage != "" {
		models = h.registry.ForStage(catalog.Stage(stage))
	}

	byProvider := make(map[string][]catalog.Model)
	for _, m := range models {
		byProvider[m.Provider] = append(byProvider[m.Provider], m)
	}

	providers := make([]ProviderResponse, 0, len(byProvider))
	for _, id := range h.registry.Providers() {
		if len(byProvider[id]) == 0 {
			continue
		}
		providers = append(providers, ProviderResponse{
			ID:         id,
			Configured: h.providerConfigured(id),
			Models:     byProvider[id],
		})
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"default_model":  h.config.DefaultModel,
		"humanize_model": h.config.HumanizeModel,
		"persona_model":  h.config.PersonaModel,
		"providers":      providers,
	})
}

// providerConfigured reports whether the server holds a key for the provider.
// OpenAI can still be used without one through a per-user key.
func (h *CatalogHandler) providerConfigured(id string) bool {
	switch id {
	case "openai":
		return h.config.OpenAIAPIKey != ""
	case "openrouter":
		return h.config.OpenRouterAPIKey != ""
	case "anthropic":
		return h.config.AnthropicAPIKey != ""
	default:
		return true
	}
}

// GetContentTypes lists the supported content types
// GET /api/content-types
func (h *CatalogHandler) GetContentTypes(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, prompt.ContentTypes())
}
