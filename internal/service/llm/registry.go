package llm

import (
	"fmt"
	"sync"

	"contentpilot/internal/domain/services"
	"contentpilot/internal/service/llm/adapters"
)

// ProviderRegistry routes provider names to text generators.
// Library providers are created through the factory once and cached.
type ProviderRegistry struct {
	factory       *ProviderFactory
	openAIBaseURL string
	openAIKey     string
	cache         map[string]services.TextGenerator
	mu            sync.RWMutex
}

// NewProviderRegistry creates a new provider registry.
func NewProviderRegistry(factory *ProviderFactory, openAIBaseURL, openAIKey string) *ProviderRegistry {
	return &ProviderRegistry{
		factory:       factory,
		openAIBaseURL: openAIBaseURL,
		openAIKey:     openAIKey,
		cache:         make(map[string]services.TextGenerator),
	}
}

// GetGenerator returns the generator for the given provider name.
//
// Examples:
//   - "openai" → OpenAIClient with the server key
//   - "openrouter" → OpenRouter provider wrapped in a LibraryAdapter
//   - "lorem" → Lorem provider wrapped in a LibraryAdapter
func (r *ProviderRegistry) GetGenerator(provider string) (services.TextGenerator, error) {
	if provider == "" {
		return nil, fmt.Errorf("provider cannot be empty")
	}

	// Fast path: cache hit under read lock
	r.mu.RLock()
	if cached, exists := r.cache[provider]; exists {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have created it while we waited for the lock
	if cached, exists := r.cache[provider]; exists {
		return cached, nil
	}

	var generator services.TextGenerator
	if provider == ProviderOpenAI {
		if r.openAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		generator = NewOpenAIClient(r.openAIBaseURL, r.openAIKey)
	} else {
		libraryProvider, err := r.factory.GetProvider(provider)
		if err != nil {
			return nil, fmt.Errorf("failed to create provider '%s': %w", provider, err)
		}
		generator = adapters.NewLibraryAdapter(libraryProvider)
	}

	r.cache[provider] = generator
	return generator, nil
}

// OpenAIWithKey returns an uncached OpenAI client using a caller-supplied key.
func (r *ProviderRegistry) OpenAIWithKey(apiKey string) services.TextGenerator {
	return NewOpenAIClient(r.openAIBaseURL, apiKey)
}

// Validate checks if the factory is properly configured.
// Should be called at startup to fail fast if misconfigured.
func (r *ProviderRegistry) Validate() error {
	if r.factory == nil {
		return fmt.Errorf("provider factory is not configured")
	}
	return nil
}
