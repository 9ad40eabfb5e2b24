package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayy-77/openclaw/internal/core"
	"github.com/jayy-77/openclaw/internal/env"
)

type stubDiscoverer struct {
	models []core.ModelDefinition
	err    error
	calls  int
}

func (s *stubDiscoverer) DiscoverModels(context.Context) ([]core.ModelDefinition, error) {
	s.calls++
	return s.models, s.err
}

func TestResolveImplicitNoEnv(t *testing.T) {
	got := ResolveImplicit(context.Background(), env.Snapshot{"HOME": "/home/me"}, nil)
	assert.Empty(t, got)
}

func TestResolveImplicitMinimax(t *testing.T) {
	snap := env.Snapshot{"MINIMAX_API_KEY": "sk-minimax-test"}

	got := ResolveImplicit(context.Background(), snap, nil)

	require.Contains(t, got, "minimax")
	p := got["minimax"]
	assert.Equal(t, "https://api.minimax.io/anthropic", p.BaseURL)
	assert.Equal(t, "MINIMAX_API_KEY", p.APIKey)
	assert.Equal(t, core.APIAnthropicMessages, p.API)
	assert.Contains(t, p.ModelIDs(), "MiniMax-M2.1")
	assert.Contains(t, p.ModelIDs(), "MiniMax-VL-01")
}

func TestResolveImplicitSynthetic(t *testing.T) {
	got := ResolveImplicit(context.Background(), env.Snapshot{"SYNTHETIC_API_KEY": "sk-synthetic-test"}, nil)

	require.Contains(t, got, "synthetic")
	p := got["synthetic"]
	assert.Equal(t, "https://api.synthetic.new/anthropic", p.BaseURL)
	assert.Equal(t, "SYNTHETIC_API_KEY", p.APIKey)
	assert.Contains(t, p.ModelIDs(), "hf:MiniMaxAI/MiniMax-M2.1")
}

func TestResolveImplicitNeverEmbedsValue(t *testing.T) {
	values := []string{"sk-a", "something else entirely", "https://not-a-url"}
	for _, v := range values {
		got := ResolveImplicit(context.Background(), env.Snapshot{"MINIMAX_API_KEY": v}, nil)
		p := got["minimax"]
		assert.Equal(t, "MINIMAX_API_KEY", p.APIKey)
		assert.Equal(t, "https://api.minimax.io/anthropic", p.BaseURL)
		assert.NotContains(t, p.APIKey, v)
	}
}

func TestResolveImplicitBlankValueIsUnset(t *testing.T) {
	got := ResolveImplicit(context.Background(), env.Snapshot{"MINIMAX_API_KEY": "   "}, nil)
	assert.NotContains(t, got, "minimax")
}

func TestResolveImplicitFirstEnvVarWins(t *testing.T) {
	got := ResolveImplicit(context.Background(), env.Snapshot{"HUGGINGFACE_HUB_TOKEN": "hf-2"}, nil)
	assert.Equal(t, "HUGGINGFACE_HUB_TOKEN", got["huggingface"].APIKey)

	got = ResolveImplicit(context.Background(), env.Snapshot{"HF_TOKEN": "hf-1", "HUGGINGFACE_HUB_TOKEN": "hf-2"}, nil)
	assert.Equal(t, "HF_TOKEN", got["huggingface"].APIKey)
}

func TestResolveImplicitOllamaUsesDiscovery(t *testing.T) {
	d := &stubDiscoverer{models: []core.ModelDefinition{{ID: "llama3:latest"}}}

	got := ResolveImplicit(context.Background(), env.Snapshot{"OLLAMA_API_KEY": "ollama-local"}, d)

	require.Contains(t, got, "ollama")
	assert.Equal(t, core.APIOllama, got["ollama"].API)
	assert.Equal(t, "OLLAMA_API_KEY", got["ollama"].APIKey)
	assert.Equal(t, []string{"llama3:latest"}, got["ollama"].ModelIDs())
	assert.Equal(t, 1, d.calls)
}

func TestResolveImplicitDoesNotDiscoverForStaticProviders(t *testing.T) {
	d := &stubDiscoverer{models: []core.ModelDefinition{{ID: "should-not-appear"}}}

	got := ResolveImplicit(context.Background(), env.Snapshot{"MINIMAX_API_KEY": "k"}, d)

	assert.NotContains(t, got["minimax"].ModelIDs(), "should-not-appear")
	assert.Zero(t, d.calls)
}

func TestResolveImplicitReturnsCopies(t *testing.T) {
	got := ResolveImplicit(context.Background(), env.Snapshot{"MINIMAX_API_KEY": "k"}, nil)
	got["minimax"].Models[0].ID = "mutated"

	def, ok := Lookup("minimax")
	require.True(t, ok)
	assert.Equal(t, "MiniMax-M2.1", def.Models[0].ID)
}

func TestCatalogInvariants(t *testing.T) {
	for _, def := range List() {
		t.Run(def.Key, func(t *testing.T) {
			assert.NotEmpty(t, def.BaseURL)
			assert.NotEmpty(t, def.API)
			require.NotEmpty(t, def.EnvVars)
			for _, name := range def.EnvVars {
				owner, ok := ProviderForEnv(name)
				assert.True(t, ok)
				assert.Equal(t, def.Key, owner)
			}
			if !def.Discovered {
				assert.NotEmpty(t, def.Models, "static providers need a model list")
			}
			assert.NoError(t, core.ProviderConfig{BaseURL: def.BaseURL, Models: def.Models}.Validate())
		})
	}
}

func TestImplicitEnvVars(t *testing.T) {
	names := ImplicitEnvVars()

	assert.IsIncreasing(t, names)
	for _, want := range []string{"MINIMAX_API_KEY", "SYNTHETIC_API_KEY", "OLLAMA_API_KEY", "OPENCLAW_AGENT_DIR", "PI_CODING_AGENT_DIR"} {
		assert.Contains(t, names, want)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	assert.Panics(t, func() {
		Register(Definition{Key: "minimax", EnvVars: []string{"SOME_OTHER_KEY"}})
	})
	assert.Panics(t, func() {
		Register(Definition{Key: "minimax-clone", EnvVars: []string{"MINIMAX_API_KEY"}})
	})
	assert.Panics(t, func() {
		Register(Definition{Key: "nothing"})
	})
	_, exists := Lookup("minimax-clone")
	assert.False(t, exists)
}
