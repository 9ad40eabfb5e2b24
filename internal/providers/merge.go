package providers

import (
	"encoding/json"
	"fmt"

	"dario.cat/mergo"

	"github.com/jayy-77/openclaw/internal/core"
)

// Merge combines explicitly configured providers with implicit ones.
// A key present only on one side is copied as is. For a key present on both sides the explicit
// provider wins field by field, empty fields are filled from the implicit provider and models
// are unioned by id with explicit entries first. Neither input is modified.
func Merge(explicit, implicit map[string]core.ProviderConfig) (map[string]core.ProviderConfig, error) {
	out := make(map[string]core.ProviderConfig, len(explicit)+len(implicit))
	for key, p := range implicit {
		out[key] = p.Clone()
	}
	for key, p := range explicit {
		fallback, ok := out[key]
		if !ok {
			out[key] = p.Clone()
			continue
		}
		merged, err := mergeProvider(p.Clone(), fallback)
		if err != nil {
			return nil, fmt.Errorf("merging provider %q: %w", key, err)
		}
		out[key] = merged
	}
	return out, nil
}

// Overlay puts every provider of top over the stored entries in base.
// Entries of base that top does not name are returned as stored, including fields
// ProviderConfig does not model. Entries named by top are replaced whole.
func Overlay(base map[string]json.RawMessage, top map[string]core.ProviderConfig) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(base)+len(top))
	for key, raw := range base {
		out[key] = raw
	}
	for key, p := range top {
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encoding provider %q: %w", key, err)
		}
		out[key] = raw
	}
	return out, nil
}

func mergeProvider(dst, src core.ProviderConfig) (core.ProviderConfig, error) {
	models := unionModels(dst.Models, src.Models)
	dst.Models, src.Models = nil, nil
	if err := mergo.Merge(&dst, src); err != nil {
		return core.ProviderConfig{}, err
	}
	dst.Models = models
	return dst, nil
}

func unionModels(primary, secondary []core.ModelDefinition) []core.ModelDefinition {
	if len(secondary) == 0 {
		return primary
	}
	seen := make(map[string]struct{}, len(primary))
	out := make([]core.ModelDefinition, 0, len(primary)+len(secondary))
	for _, m := range primary {
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	for _, m := range secondary {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		out = append(out, m)
	}
	return out
}
