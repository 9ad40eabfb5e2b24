package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jayy-77/openclaw/internal/core"
	"github.com/jayy-77/openclaw/internal/version"
)

// Defaults applied to models reported by Ollama, which does not expose limits in /api/tags
const (
	ollamaContextWindow = 128000
	ollamaMaxTokens     = 8192
)

// DiscoveryInfo describes the outcome of one discovery call
type DiscoveryInfo struct {
	Provider string
	Models   int
	Duration time.Duration
	Err      error
}

// DiscoveryHook is invoked after every discovery call
type DiscoveryHook func(DiscoveryInfo)

// OllamaDiscoverer lists the models pulled into a local Ollama server
type OllamaDiscoverer struct {
	BaseURL string
	Client  *http.Client
	OnDone  DiscoveryHook
}

// NewOllamaDiscoverer creates a discoverer for the server at baseURL (OllamaBaseURL when empty)
func NewOllamaDiscoverer(baseURL string, client *http.Client) *OllamaDiscoverer {
	if baseURL == "" {
		baseURL = OllamaBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OllamaDiscoverer{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
	}
}

type ollamaTagsResponse struct {
	Models []struct {
		Name    string `json:"name"`
		Model   string `json:"model"`
		Details struct {
			Family   string   `json:"family"`
			Families []string `json:"families"`
		} `json:"details"`
	} `json:"models"`
}

// DiscoverModels calls GET /api/tags and converts the result
func (d *OllamaDiscoverer) DiscoverModels(ctx context.Context) (models []core.ModelDefinition, err error) {
	start := time.Now()
	defer func() {
		if d.OnDone != nil {
			d.OnDone(DiscoveryInfo{Provider: "ollama", Models: len(models), Duration: time.Since(start), Err: err})
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode ollama tags: %w", err)
	}

	seen := make(map[string]struct{}, len(tags.Models))
	for _, m := range tags.Models {
		id := m.Name
		if id == "" {
			id = m.Model
		}
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		models = append(models, core.ModelDefinition{
			ID:            id,
			Name:          id,
			Reasoning:     looksLikeReasoning(id),
			Input:         []string{"text"},
			ContextWindow: ollamaContextWindow,
			MaxTokens:     ollamaMaxTokens,
		})
	}
	return models, nil
}

func looksLikeReasoning(id string) bool {
	id = strings.ToLower(id)
	return strings.Contains(id, "r1") || strings.Contains(id, "reasoning") || strings.Contains(id, "think")
}

// discover runs a discoverer, logging failures and returning no models in that case
func discover(ctx context.Context, d ModelDiscoverer) []core.ModelDefinition {
	models, err := d.DiscoverModels(ctx)
	if err != nil {
		slog.Warn("model discovery failed", "error", err)
		return nil
	}
	return models
}

// DefaultOllama returns the provider written when nothing else is configured
func DefaultOllama(ctx context.Context, discoverer ModelDiscoverer) core.ProviderConfig {
	p := core.ProviderConfig{
		BaseURL: OllamaBaseURL,
		API:     core.APIOllama,
	}
	if discoverer != nil {
		p.Models = discover(ctx, discoverer)
	}
	return p
}
