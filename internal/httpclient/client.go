// Package httpclient builds the HTTP clients used to probe model servers.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// ClientConfig holds configuration options for creating HTTP clients
type ClientConfig struct {
	// MaxIdleConns caps idle keep-alive connections across all hosts
	MaxIdleConns int

	// IdleConnTimeout is how long an idle connection stays open
	IdleConnTimeout time.Duration

	// Timeout bounds a whole request, body included
	Timeout time.Duration

	// DialTimeout bounds connection establishment
	DialTimeout time.Duration

	// ResponseHeaderTimeout bounds the wait for response headers
	ResponseHeaderTimeout time.Duration

	// UseProxy routes requests through HTTP(S)_PROXY. Off for loopback servers.
	UseProxy bool
}

// DefaultConfig returns settings suited to short discovery calls
func DefaultConfig() ClientConfig {
	return ClientConfig{
		MaxIdleConns:          4,
		IdleConnTimeout:       30 * time.Second,
		Timeout:               5 * time.Second,
		DialTimeout:           2 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
		UseProxy:              true,
	}
}

// NewHTTPClient creates a new HTTP client with the provided configuration.
// If config is nil, DefaultConfig() is used.
func NewHTTPClient(config *ClientConfig) *http.Client {
	if config == nil {
		cfg := DefaultConfig()
		config = &cfg
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: config.DialTimeout,
		}).DialContext,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConns,
		IdleConnTimeout:       config.IdleConnTimeout,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
	}
	if config.UseProxy {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}
}

// NewLocalClient returns a client for servers on this machine (Ollama and friends).
// A zero timeout keeps the default.
func NewLocalClient(timeout time.Duration) *http.Client {
	cfg := DefaultConfig()
	cfg.UseProxy = false
	if timeout > 0 {
		cfg.Timeout = timeout
		cfg.ResponseHeaderTimeout = timeout
	}
	return NewHTTPClient(&cfg)
}
