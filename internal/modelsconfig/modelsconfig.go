// Package modelsconfig resolves the provider map and keeps models.json in sync with it.
//
// Resolution order:
//  1. providers from the caller's config
//  2. providers implied by environment variables whose key is not already configured
//     (an explicit provider with the same key keeps its values; empty fields are filled in)
//  3. a local Ollama provider when the map is still empty
//  4. in merge mode, providers already stored that steps 1-3 did not produce
//
// The document is rewritten only when its serialized bytes change.
package modelsconfig

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jayy-77/openclaw/internal/agentdir"
	"github.com/jayy-77/openclaw/internal/core"
	"github.com/jayy-77/openclaw/internal/env"
	"github.com/jayy-77/openclaw/internal/providers"
	"github.com/jayy-77/openclaw/internal/store"
)

// Result reports what Ensure did
type Result struct {
	AgentDir  string   `json:"agentDir,omitempty"`
	Path      string   `json:"path"`
	Wrote     bool     `json:"wrote"`
	Providers []string `json:"providers"`
}

// EnsureInfo is passed to Hooks.OnEnsure after every call
type EnsureInfo struct {
	Result   Result
	Err      error
	Duration time.Duration
}

// Hooks lets callers observe the service without the service knowing about metrics
type Hooks struct {
	OnEnsure func(EnsureInfo)
}

// Service owns one models.json location
type Service struct {
	store      store.Store
	env        env.Snapshot
	discoverer providers.ModelDiscoverer
	agentDir   string
	hooks      Hooks

	// serializes read-compare-write cycles against the store
	mu sync.Mutex
}

// Option configures a Service
type Option func(*Service)

// WithDiscoverer enables model discovery for providers that support it
func WithDiscoverer(d providers.ModelDiscoverer) Option {
	return func(s *Service) { s.discoverer = d }
}

// WithHooks installs observability hooks
func WithHooks(h Hooks) Option {
	return func(s *Service) { s.hooks = h }
}

// WithAgentDir records the agent directory reported in results
func WithAgentDir(dir string) Option {
	return func(s *Service) { s.agentDir = dir }
}

// NewService creates a service writing to st and reading environment variables from snap
func NewService(st store.Store, snap env.Snapshot, opts ...Option) *Service {
	if snap == nil {
		snap = env.Snapshot{}
	}
	s := &Service{store: st, env: snap}
	for _, opt := range opts {
		opt(s)
	}
	if s.agentDir == "" {
		if fs, ok := st.(*store.FileStore); ok {
			s.agentDir = fs.Dir()
		}
	}
	return s
}

// Resolve computes the provider map for cfg without touching the store
func (s *Service) Resolve(ctx context.Context, cfg core.OpenClawConfig) (core.ModelsConfig, error) {
	if err := cfg.Validate(); err != nil {
		return core.ModelsConfig{}, err
	}

	implicit := providers.ResolveImplicit(ctx, s.env, s.discoverer)
	merged, err := providers.Merge(cfg.ExplicitProviders(), implicit)
	if err != nil {
		return core.ModelsConfig{}, err
	}
	if len(merged) == 0 {
		merged["ollama"] = providers.DefaultOllama(ctx, s.discoverer)
	}
	return core.ModelsConfig{Providers: merged}, nil
}

// Ensure resolves the provider map and writes it when the stored document differs
func (s *Service) Ensure(ctx context.Context, cfg core.OpenClawConfig) (res Result, err error) {
	start := time.Now()
	res = Result{AgentDir: s.agentDir, Path: s.store.Location()}
	defer func() {
		if s.hooks.OnEnsure != nil {
			s.hooks.OnEnsure(EnsureInfo{Result: res, Err: err, Duration: time.Since(start)})
		}
	}()

	doc, err := s.Resolve(ctx, cfg)
	if err != nil {
		return res, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		existing = nil
	case err != nil:
		return res, err
	}

	next, keys, err := s.render(doc, existing, cfg.Mode())
	res.Providers = keys
	if err != nil {
		return res, err
	}
	if existing != nil && bytes.Equal(existing, next) {
		slog.Debug("models.json unchanged", "path", res.Path)
		return res, nil
	}

	if err := s.store.Save(ctx, next); err != nil {
		return res, err
	}
	res.Wrote = true
	slog.Info("models.json written", "path", res.Path, "providers", res.Providers)
	return res, nil
}

// render encodes doc; in merge mode it is laid over the stored document
func (s *Service) render(doc core.ModelsConfig, existing []byte, mode string) ([]byte, []string, error) {
	if mode == core.ModeMerge && existing != nil {
		if stored, ok := parseStored(existing, s.store.Location()); ok {
			return stored.render(doc)
		}
	}
	data, err := Marshal(doc)
	return data, doc.ProviderKeys(), err
}

// Current returns the stored document, or store.ErrNotFound
func (s *Service) Current(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load(ctx)
}

// Location reports where the service writes
func (s *Service) Location() string {
	return s.store.Location()
}

// Marshal renders the document the way it is stored: two-space indent, sorted keys, trailing newline
func Marshal(doc core.ModelsConfig) ([]byte, error) {
	if doc.Providers == nil {
		doc.Providers = map[string]core.ProviderConfig{}
	}
	return encode(doc)
}

func encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode models config: %w", err)
	}
	return append(data, '\n'), nil
}

// storedDocument is a previously written models.json kept as raw JSON.
// Top-level fields and providers the resolver does not produce are written back as found.
type storedDocument struct {
	fields    map[string]json.RawMessage
	providers map[string]json.RawMessage
}

func parseStored(data []byte, location string) (storedDocument, bool) {
	var doc storedDocument
	err := json.Unmarshal(data, &doc.fields)
	if err == nil && doc.fields == nil {
		err = errors.New("document is not an object")
	}
	if raw, ok := doc.fields["providers"]; err == nil && ok {
		err = json.Unmarshal(raw, &doc.providers)
	}
	if err != nil {
		slog.Warn("existing models.json is not valid, replacing it", "path", location, "error", err)
		return storedDocument{}, false
	}
	return doc, true
}

// render overlays the resolved providers onto the stored document and returns the
// encoded bytes together with the resulting provider keys
func (d storedDocument) render(doc core.ModelsConfig) ([]byte, []string, error) {
	merged, err := providers.Overlay(d.providers, doc.Providers)
	if err != nil {
		return nil, nil, err
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rawProviders, err := json.Marshal(merged)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode providers: %w", err)
	}
	out := make(map[string]json.RawMessage, len(d.fields)+1)
	for k, v := range d.fields {
		out[k] = v
	}
	out["providers"] = rawProviders

	data, err := encode(out)
	if err != nil {
		return nil, nil, err
	}
	return data, keys, nil
}

// Options configure EnsureModelsJSON
type Options struct {
	// AgentDir overrides the directory; empty resolves it from Env
	AgentDir string

	// Env is the environment snapshot; nil means no variables are set
	Env env.Snapshot

	Discoverer providers.ModelDiscoverer
	Hooks      Hooks
}

// EnsureModelsJSON writes <agent dir>/models.json for cfg and reports whether it changed
func EnsureModelsJSON(ctx context.Context, cfg core.OpenClawConfig, opts Options) (Result, error) {
	dir := opts.AgentDir
	if dir == "" {
		resolved, err := agentdir.Resolve(opts.Env)
		if err != nil {
			return Result{}, err
		}
		dir = resolved
	}

	svc := NewService(store.NewFileStore(dir), opts.Env,
		WithDiscoverer(opts.Discoverer),
		WithHooks(opts.Hooks),
	)
	return svc.Ensure(ctx, cfg)
}
