// Package store persists the generated models.json document.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Load when nothing has been written yet
var ErrNotFound = errors.New("models config not found")

// FileName is the name of the document inside the agent directory
const FileName = "models.json"

// Store reads and writes the raw models.json bytes
type Store interface {
	// Load returns the stored document or ErrNotFound
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the stored document. A failed Save leaves the previous content intact.
	Save(ctx context.Context, data []byte) error

	// Location describes where the document lives, for logs and API responses
	Location() string

	Close() error
}

// Backend types
const (
	TypeFile  = "file"
	TypeRedis = "redis"
)

// Config selects and configures a backend
type Config struct {
	// Type is "file" (default) or "redis"
	Type string

	// Dir is the agent directory used by the file backend
	Dir string

	Redis RedisConfig
}

// New builds the backend described by cfg
func New(cfg Config) (Store, error) {
	switch cfg.Type {
	case "", TypeFile:
		if cfg.Dir == "" {
			return nil, errors.New("file store requires a directory")
		}
		return NewFileStore(cfg.Dir), nil
	case TypeRedis:
		return NewRedisStore(cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
