package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/config"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
)

// Factory builds an undecorated oracle from configuration.
type Factory func(ctx context.Context, cfg config.OracleConfig) (ports.Oracle, error)

// Registry keeps a mapping from provider names to oracle factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// DefaultRegistry knows every provider shipped with the module.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("openrouter", chatFactory(OpenRouterEndpoint))
	r.Register("openai", chatFactory(OpenAIEndpoint))
	r.Register("ollama", func(_ context.Context, cfg config.OracleConfig) (ports.Oracle, error) {
		return NewOllamaOracle(cfg.Endpoint, cfg.Model, cfg.Timeout), nil
	})
	r.Register("gemini", func(ctx context.Context, cfg config.OracleConfig) (ports.Oracle, error) {
		return NewGeminiOracle(ctx, cfg.APIKey, cfg.Model, cfg.Timeout)
	})
	r.Register("static", func(_ context.Context, cfg config.OracleConfig) (ports.Oracle, error) {
		return StaticOracle{Reply: cfg.StaticReply}, nil
	})
	return r
}

func chatFactory(defaultEndpoint string) Factory {
	return func(_ context.Context, cfg config.OracleConfig) (ports.Oracle, error) {
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = defaultEndpoint
		}
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("api key is required")
		}
		return NewChatOracle(ChatConfig{
			Endpoint:     endpoint,
			Model:        cfg.Model,
			APIKey:       cfg.APIKey,
			SystemPrompt: cfg.SystemPrompt,
			Timeout:      cfg.Timeout,
		}), nil
	}
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, f Factory) {
	if r.factories == nil {
		r.factories = map[string]Factory{}
	}
	r.factories[strings.ToLower(name)] = f
}

// Resolve returns a factory by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Factory, error) {
	if f, ok := r.factories[strings.ToLower(name)]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("oracle provider %q is not registered (known: %s)", name, strings.Join(r.Names(), ", "))
}

// Names lists registered providers, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build resolves cfg.Provider and wraps the oracle with retry and rate limiting.
// Retries sit outside the limiter so every attempt consumes a token.
func (r *Registry) Build(ctx context.Context, cfg config.OracleConfig) (ports.Oracle, error) {
	factory, err := r.Resolve(cfg.Provider)
	if err != nil {
		return nil, err
	}
	oracle, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build %s oracle: %w", cfg.Provider, err)
	}
	if cfg.RequestsPerSecond > 0 {
		oracle = RateLimited(oracle, cfg.RequestsPerSecond, cfg.Burst)
	}
	if cfg.Retries > 0 {
		oracle = Retrying(oracle, cfg.Retries+1, cfg.RetryBackoff)
	}
	return oracle, nil
}
