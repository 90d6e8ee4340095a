// Package catalog lists the models a user can pick, per provider, from
// embedded YAML files.
package catalog

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// providerOrder is the order providers are listed in.
var providerOrder = []string{"openai", "openrouter", "anthropic", "lorem"}

// Registry holds the catalog. It is read-only after NewRegistry.
type Registry struct {
	providers map[string]*ProviderModels
}

// NewRegistry loads every embedded provider file.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		providers: make(map[string]*ProviderModels, len(providerOrder)),
	}
	for _, provider := range providerOrder {
		if err := r.loadProviderFile(provider); err != nil {
			return nil, fmt.Errorf("failed to load %s models: %w", provider, err)
		}
	}
	return r, nil
}

func (r *Registry) loadProviderFile(provider string) error {
	filename := fmt.Sprintf("config/%s.yaml", provider)
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var models ProviderModels
	if err := yaml.Unmarshal(data, &models); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}
	if models.Provider != provider {
		return fmt.Errorf("%s declares provider %q", filename, models.Provider)
	}

	for i := range models.Models {
		m := &models.Models[i]
		m.Provider = provider
		m.Ref = reference(provider, m.ID)
		if m.Stage == "" {
			m.Stage = StageAny
		}
	}

	r.providers[provider] = &models
	return nil
}

// reference builds the model string understood by the provider resolver.
// Lorem models are addressed by bare id.
func reference(provider, id string) string {
	if provider == "lorem" {
		return id
	}
	return provider + "/" + id
}

// List returns every model, providers in fixed order, models in file order.
func (r *Registry) List() []Model {
	var out []Model
	for _, provider := range providerOrder {
		if p, ok := r.providers[provider]; ok {
			out = append(out, p.Models...)
		}
	}
	return out
}

// ForStage returns the models usable for stage.
func (r *Registry) ForStage(stage Stage) []Model {
	var out []Model
	for _, m := range r.List() {
		if m.Stage == stage || m.Stage == StageAny {
			out = append(out, m)
		}
	}
	return out
}

// Lookup finds a model by its reference ("openai/gpt-4o", "lorem-fast").
func (r *Registry) Lookup(ref string) (*Model, error) {
	ref = strings.TrimSpace(ref)
	for _, m := range r.List() {
		if m.Ref == ref {
			model := m
			return &model, nil
		}
	}
	return nil, fmt.Errorf("unknown model %s", ref)
}

// Providers returns the registered provider names in listing order.
func (r *Registry) Providers() []string {
	out := make([]string, 0, len(r.providers))
	for _, provider := range providerOrder {
		if _, ok := r.providers[provider]; ok {
			out = append(out, provider)
		}
	}
	return out
}
