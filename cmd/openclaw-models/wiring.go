package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jayy-77/openclaw/config"
	"github.com/jayy-77/openclaw/internal/agentdir"
	"github.com/jayy-77/openclaw/internal/env"
	"github.com/jayy-77/openclaw/internal/httpclient"
	"github.com/jayy-77/openclaw/internal/modelsconfig"
	"github.com/jayy-77/openclaw/internal/observability"
	"github.com/jayy-77/openclaw/internal/providers"
	"github.com/jayy-77/openclaw/internal/store"
)

// app bundles everything a command needs after configuration is loaded
type app struct {
	cfg     *config.Config
	env     env.Snapshot
	store   store.Store
	service *modelsconfig.Service
}

func (a *app) Close() error {
	return a.store.Close()
}

func loadApp(flags *globalFlags) (*app, error) {
	cfg, snap, err := config.Load(config.LoadOptions{
		ConfigFile: flags.configFile,
		EnvFile:    flags.envFile,
	})
	if err != nil {
		return nil, err
	}

	dir, err := resolveAgentDir(flags.agentDir, cfg, snap)
	if err != nil {
		return nil, err
	}

	st, err := initStore(cfg, dir)
	if err != nil {
		return nil, err
	}

	opts := []modelsconfig.Option{
		modelsconfig.WithAgentDir(dir),
		modelsconfig.WithHooks(observability.NewPrometheusHooks()),
	}
	if cfg.Discovery.Enabled {
		d := providers.NewOllamaDiscoverer(cfg.Discovery.OllamaURL, httpclient.NewLocalClient(cfg.Discovery.Timeout))
		d.OnDone = observability.NewDiscoveryHook()
		opts = append(opts, modelsconfig.WithDiscoverer(d))
		slog.Info("ollama discovery enabled", "url", d.BaseURL)
	}

	return &app{
		cfg:     cfg,
		env:     snap,
		store:   st,
		service: modelsconfig.NewService(st, snap, opts...),
	}, nil
}

// resolveAgentDir picks the flag, then OPENCLAW_AGENT_DIR or PI_CODING_AGENT_DIR,
// then agent_dir from the config file, then the state dir or HOME default
func resolveAgentDir(flag string, cfg *config.Config, snap env.Snapshot) (string, error) {
	settings, err := agentdir.Parse(snap)
	if err != nil {
		return "", err
	}

	var dir string
	switch override, ok, oerr := settings.Override(); {
	case flag != "":
		dir, err = settings.Expand(flag)
	case ok:
		dir, err = override, oerr
	case cfg.AgentDir != "":
		dir, err = settings.Expand(cfg.AgentDir)
	default:
		dir, err = settings.Resolve()
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve agent directory: %w", err)
	}
	return dir, nil
}

// initStore initializes the backend selected by configuration.
// Returns a file store in the agent directory by default, or Redis if configured.
func initStore(cfg *config.Config, dir string) (store.Store, error) {
	st, err := store.New(store.Config{
		Type: cfg.Store.Type,
		Dir:  dir,
		Redis: store.RedisConfig{
			URL: cfg.Store.Redis.URL,
			Key: cfg.Store.Redis.Key,
			TTL: time.Duration(cfg.Store.Redis.TTL) * time.Second,
		},
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("models store ready", "type", cfg.Store.Type, "location", st.Location())
	return st, nil
}
