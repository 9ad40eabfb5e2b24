// Package env captures the process environment as a value so resolution code never reads ambient state.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// Snapshot is a point-in-time copy of environment variables.
// Treat it as immutable; With returns a modified copy.
type Snapshot map[string]string

// FromOS captures the current process environment
func FromOS() Snapshot {
	return FromPairs(os.Environ()...)
}

// FromPairs builds a snapshot from KEY=VALUE strings. Entries without '=' are ignored.
func FromPairs(pairs ...string) Snapshot {
	s := make(Snapshot, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		s[k] = v
	}
	return s
}

// FromMap copies m into a new snapshot
func FromMap(m map[string]string) Snapshot {
	s := make(Snapshot, len(m))
	for k, v := range m {
		s[k] = v
	}
	return s
}

// WithDotenv overlays variables from a .env file. Variables already in the snapshot win,
// matching godotenv.Load. A missing file leaves the snapshot unchanged.
func (s Snapshot) WithDotenv(path string) (Snapshot, error) {
	if path == "" {
		return s, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	out := FromMap(s)
	for k, v := range values {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out, nil
}

// Get returns the raw value, or "" when unset
func (s Snapshot) Get(name string) string {
	return s[name]
}

// Lookup returns the trimmed value and whether it is non-blank.
// A variable set to whitespace counts as unset.
func (s Snapshot) Lookup(name string) (string, bool) {
	v := strings.TrimSpace(s[name])
	return v, v != ""
}

// With returns a copy with name set to value
func (s Snapshot) With(name, value string) Snapshot {
	out := FromMap(s)
	out[name] = value
	return out
}

// Without returns a copy with the given names removed
func (s Snapshot) Without(names ...string) Snapshot {
	out := FromMap(s)
	for _, n := range names {
		delete(out, n)
	}
	return out
}

// Map returns a copy usable by libraries that take a plain map
func (s Snapshot) Map() map[string]string {
	return FromMap(s)
}

// Names returns the variable names sorted
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
