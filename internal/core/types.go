// Package core defines the models.json document and the partial config callers hand to the resolver.
package core

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid models config")

// Merge modes for an existing models.json
const (
	ModeMerge   = "merge"   // keep providers already on disk that the new resolution does not mention
	ModeReplace = "replace" // overwrite the document wholesale
)

// API identifiers written into the "api" field of a provider
const (
	APIOllama            = "ollama"
	APIAnthropicMessages = "anthropic-messages"
	APIOpenAICompletions = "openai-completions"
)

// ModelDefinition describes a single model offered by a provider
type ModelDefinition struct {
	ID            string   `json:"id" mapstructure:"id"`
	Name          string   `json:"name,omitempty" mapstructure:"name"`
	Reasoning     bool     `json:"reasoning,omitempty" mapstructure:"reasoning"`
	Input         []string `json:"input,omitempty" mapstructure:"input"`
	ContextWindow int      `json:"contextWindow,omitempty" mapstructure:"context_window"`
	MaxTokens     int      `json:"maxTokens,omitempty" mapstructure:"max_tokens"`
}

// ProviderConfig is one entry of the providers map.
// APIKey holds the NAME of the environment variable carrying the secret, never the secret itself.
type ProviderConfig struct {
	BaseURL string            `json:"baseUrl,omitempty" mapstructure:"base_url"`
	API     string            `json:"api,omitempty" mapstructure:"api"`
	APIKey  string            `json:"apiKey,omitempty" mapstructure:"api_key"`
	Headers map[string]string `json:"headers,omitempty" mapstructure:"headers"`
	Models  []ModelDefinition `json:"models,omitempty" mapstructure:"models"`
}

// ModelIDs returns the ids of the provider's models in declaration order
func (p ProviderConfig) ModelIDs() []string {
	ids := make([]string, 0, len(p.Models))
	for _, m := range p.Models {
		ids = append(ids, m.ID)
	}
	return ids
}

// Clone returns a deep copy so callers can mutate the result freely
func (p ProviderConfig) Clone() ProviderConfig {
	out := p
	if p.Headers != nil {
		out.Headers = make(map[string]string, len(p.Headers))
		for k, v := range p.Headers {
			out.Headers[k] = v
		}
	}
	if p.Models != nil {
		out.Models = make([]ModelDefinition, len(p.Models))
		for i, m := range p.Models {
			out.Models[i] = m
			if m.Input != nil {
				out.Models[i].Input = append([]string(nil), m.Input...)
			}
		}
	}
	return out
}

// ModelsConfig is the on-disk shape of models.json
type ModelsConfig struct {
	Providers map[string]ProviderConfig `json:"providers"`
}

// ProviderKeys returns the provider keys sorted
func (c ModelsConfig) ProviderKeys() []string {
	keys := make([]string, 0, len(c.Providers))
	for k := range c.Providers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ModelsSection is the "models" block of the caller's config
type ModelsSection struct {
	Mode      string                    `json:"mode,omitempty" mapstructure:"mode"`
	Providers map[string]ProviderConfig `json:"providers,omitempty" mapstructure:"providers"`
}

// OpenClawConfig is the partial application config the resolver consumes.
// Models may be nil, which is equivalent to an empty providers map.
type OpenClawConfig struct {
	Models *ModelsSection `json:"models,omitempty" mapstructure:"models"`
}

// ExplicitProviders returns the caller-supplied providers, never nil
func (c OpenClawConfig) ExplicitProviders() map[string]ProviderConfig {
	out := make(map[string]ProviderConfig)
	if c.Models == nil {
		return out
	}
	for k, p := range c.Models.Providers {
		out[k] = p.Clone()
	}
	return out
}

// Mode returns the effective merge mode
func (c OpenClawConfig) Mode() string {
	if c.Models == nil || c.Models.Mode == "" {
		return ModeMerge
	}
	return c.Models.Mode
}

// Validate checks the shape of the caller's config
func (c OpenClawConfig) Validate() error {
	if c.Models == nil {
		return nil
	}
	switch c.Models.Mode {
	case "", ModeMerge, ModeReplace:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Models.Mode)
	}
	for key, p := range c.Models.Providers {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("%w: provider key must not be blank", ErrInvalidConfig)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("provider %q: %w", key, err)
		}
	}
	return nil
}

// Validate checks a single provider entry
func (p ProviderConfig) Validate() error {
	if p.BaseURL != "" {
		u, err := url.Parse(p.BaseURL)
		if err != nil {
			return fmt.Errorf("%w: baseUrl: %v", ErrInvalidConfig, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: baseUrl %q must be an absolute http(s) URL", ErrInvalidConfig, p.BaseURL)
		}
	}
	seen := make(map[string]struct{}, len(p.Models))
	for i, m := range p.Models {
		id := strings.TrimSpace(m.ID)
		if id == "" {
			return fmt.Errorf("%w: models[%d] has no id", ErrInvalidConfig, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate model id %q", ErrInvalidConfig, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
