// Package providers holds the catalog of providers implied by environment variables,
// and the rules for merging them with providers the caller configured explicitly.
package providers

import (
	"context"
	"fmt"
	"sort"

	"github.com/jayy-77/openclaw/internal/core"
	"github.com/jayy-77/openclaw/internal/env"
)

// Definition describes a provider that appears when one of its environment variables is set
type Definition struct {
	Key     string   // provider key in models.json
	EnvVars []string // checked in order, the first non-blank one is recorded as apiKey
	BaseURL string
	API     string
	Models  []core.ModelDefinition

	// Discovered providers take their model list from a ModelDiscoverer when one is available
	Discovered bool
}

// ModelDiscoverer lists the models a running server offers
type ModelDiscoverer interface {
	DiscoverModels(ctx context.Context) ([]core.ModelDefinition, error)
}

// registry holds all registered provider definitions keyed by provider key
var registry = make(map[string]Definition)

// envOwners maps every environment variable to the provider that claims it
var envOwners = make(map[string]string)

// Register adds a definition to the catalog.
// This should be called from init() functions; it panics on a duplicate key or a shared env var.
func Register(def Definition) {
	if def.Key == "" || len(def.EnvVars) == 0 {
		panic("providers: definition needs a key and at least one env var")
	}
	if _, exists := registry[def.Key]; exists {
		panic(fmt.Sprintf("providers: duplicate provider key %q", def.Key))
	}
	for _, name := range def.EnvVars {
		if owner, taken := envOwners[name]; taken {
			panic(fmt.Sprintf("providers: env var %s already mapped to %q", name, owner))
		}
	}
	for _, name := range def.EnvVars {
		envOwners[name] = def.Key
	}
	registry[def.Key] = def
}

// Lookup returns the definition registered under key
func Lookup(key string) (Definition, bool) {
	def, ok := registry[key]
	return def, ok
}

// ProviderForEnv returns the provider key an environment variable maps to
func ProviderForEnv(name string) (string, bool) {
	key, ok := envOwners[name]
	return key, ok
}

// List returns all registered definitions sorted by key
func List() []Definition {
	defs := make([]Definition, 0, len(registry))
	for _, def := range registry {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Key < defs[j].Key })
	return defs
}

// ImplicitEnvVars returns every environment variable that changes what gets written,
// provider keys and agent directory overrides alike.
func ImplicitEnvVars() []string {
	names := []string{"OPENCLAW_AGENT_DIR", "PI_CODING_AGENT_DIR", "OPENCLAW_STATE_DIR"}
	for name := range envOwners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ActiveEnvVar returns the first of the definition's env vars that is set
func (d Definition) ActiveEnvVar(snap env.Snapshot) (string, bool) {
	for _, name := range d.EnvVars {
		if _, ok := snap.Lookup(name); ok {
			return name, true
		}
	}
	return "", false
}

// Build returns the provider entry for the given env var name.
// The variable's value is never read here; only its name is recorded.
func (d Definition) Build(ctx context.Context, envVar string, discoverer ModelDiscoverer) core.ProviderConfig {
	p := core.ProviderConfig{
		BaseURL: d.BaseURL,
		API:     d.API,
		APIKey:  envVar,
		Models:  cloneModels(d.Models),
	}
	if d.Discovered && discoverer != nil {
		if models := discover(ctx, discoverer); len(models) > 0 {
			p.Models = models
		}
	}
	return p
}

// ResolveImplicit returns a provider for every catalog entry whose env var is set in snap
func ResolveImplicit(ctx context.Context, snap env.Snapshot, discoverer ModelDiscoverer) map[string]core.ProviderConfig {
	out := make(map[string]core.ProviderConfig)
	for _, def := range List() {
		name, ok := def.ActiveEnvVar(snap)
		if !ok {
			continue
		}
		out[def.Key] = def.Build(ctx, name, discoverer)
	}
	return out
}

func cloneModels(models []core.ModelDefinition) []core.ModelDefinition {
	if models == nil {
		return nil
	}
	return core.ProviderConfig{Models: models}.Clone().Models
}
