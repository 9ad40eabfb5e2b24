// Package agentdir resolves the directory holding the agent's runtime configuration.
package agentdir

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	envsnap "github.com/jayy-77/openclaw/internal/env"
)

// ErrNoHome is returned when no override is set and HOME is unknown
var ErrNoHome = errors.New("cannot resolve agent directory: no override set and HOME is empty")

// DefaultAgentID is the agent whose directory is used when only a state dir or HOME is known
const DefaultAgentID = "main"

// Settings are the environment variables that influence the agent directory
type Settings struct {
	AgentDir         string `env:"OPENCLAW_AGENT_DIR"`
	PiCodingAgentDir string `env:"PI_CODING_AGENT_DIR"`
	StateDir         string `env:"OPENCLAW_STATE_DIR"`
	Home             string `env:"HOME"`
}

// Parse reads Settings from a snapshot
func Parse(snap envsnap.Snapshot) (Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, env.Options{Environment: snap.Map()}); err != nil {
		return Settings{}, fmt.Errorf("failed to parse agent dir settings: %w", err)
	}
	s.AgentDir = strings.TrimSpace(s.AgentDir)
	s.PiCodingAgentDir = strings.TrimSpace(s.PiCodingAgentDir)
	s.StateDir = strings.TrimSpace(s.StateDir)
	s.Home = strings.TrimSpace(s.Home)
	return s, nil
}

// Resolve returns the agent directory for the snapshot.
// Precedence: OPENCLAW_AGENT_DIR, PI_CODING_AGENT_DIR, $OPENCLAW_STATE_DIR/agents/main/agent,
// $HOME/.openclaw/agents/main/agent.
func Resolve(snap envsnap.Snapshot) (string, error) {
	s, err := Parse(snap)
	if err != nil {
		return "", err
	}
	return s.Resolve()
}

// Override returns the directory named by OPENCLAW_AGENT_DIR or PI_CODING_AGENT_DIR, expanded.
// The boolean is false when neither is set.
func (s Settings) Override() (string, bool, error) {
	for _, dir := range []string{s.AgentDir, s.PiCodingAgentDir} {
		if dir == "" {
			continue
		}
		expanded, err := s.Expand(dir)
		return expanded, true, err
	}
	return "", false, nil
}

// Resolve applies the precedence rules to already parsed settings
func (s Settings) Resolve() (string, error) {
	if dir, ok, err := s.Override(); ok {
		return dir, err
	}
	switch {
	case s.StateDir != "":
		dir, err := s.Expand(s.StateDir)
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "agents", DefaultAgentID, "agent"), nil
	case s.Home != "":
		return filepath.Join(s.Home, ".openclaw", "agents", DefaultAgentID, "agent"), nil
	}
	return "", ErrNoHome
}

// Expand resolves a leading ~ against HOME and makes p absolute
func (s Settings) Expand(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if s.Home == "" {
			return "", fmt.Errorf("cannot expand %q: %w", p, ErrNoHome)
		}
		p = filepath.Join(s.Home, strings.TrimPrefix(p, "~"))
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", p, err)
	}
	return abs, nil
}
