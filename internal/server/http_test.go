package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayy-77/openclaw/internal/core"
	"github.com/jayy-77/openclaw/internal/env"
	"github.com/jayy-77/openclaw/internal/modelsconfig"
	"github.com/jayy-77/openclaw/internal/store"
)

// mockService records the config it was asked to ensure
type mockService struct {
	current  []byte
	err      error
	received *core.OpenClawConfig
}

func (m *mockService) Ensure(_ context.Context, cfg core.OpenClawConfig) (modelsconfig.Result, error) {
	m.received = &cfg
	if m.err != nil {
		return modelsconfig.Result{}, m.err
	}
	return modelsconfig.Result{Path: "/tmp/agent/models.json", Wrote: true, Providers: []string{"ollama"}}, nil
}

func (m *mockService) Current(context.Context) ([]byte, error) {
	if m.current == nil {
		return nil, store.ErrNotFound
	}
	return m.current, nil
}

func TestMetricsEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		config         *Config
		requestPath    string
		expectedStatus int
		expectBody     string
	}{
		{
			name:           "metrics enabled - default endpoint accessible",
			config:         &Config{MetricsEnabled: true, MetricsEndpoint: "/metrics"},
			requestPath:    "/metrics",
			expectedStatus: http.StatusOK,
			expectBody:     "go_goroutines",
		},
		{
			name:           "metrics enabled - empty endpoint defaults to /metrics",
			config:         &Config{MetricsEnabled: true},
			requestPath:    "/metrics",
			expectedStatus: http.StatusOK,
			expectBody:     "go_goroutines",
		},
		{
			name:           "metrics disabled - endpoint returns 404",
			config:         &Config{MetricsEnabled: false, MetricsEndpoint: "/metrics"},
			requestPath:    "/metrics",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "nil config - metrics disabled by default",
			config:         nil,
			requestPath:    "/metrics",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "custom metrics endpoint path",
			config:         &Config{MetricsEnabled: true, MetricsEndpoint: "/custom-metrics"},
			requestPath:    "/custom-metrics",
			expectedStatus: http.StatusOK,
			expectBody:     "go_goroutines",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(&mockService{}, tt.config)

			req := httptest.NewRequest(http.MethodGet, tt.requestPath, nil)
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectBody != "" && !strings.Contains(rec.Body.String(), tt.expectBody) {
				t.Errorf("expected body to contain %q, got: %s", tt.expectBody, rec.Body.String())
			}
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := New(&mockService{}, &Config{MasterKey: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestGetModelsConfig(t *testing.T) {
	t.Run("not written yet", func(t *testing.T) {
		srv := New(&mockService{}, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/models-config", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "not_found_error")
	})

	t.Run("returns stored document verbatim", func(t *testing.T) {
		doc := "{\n  \"providers\": {}\n}\n"
		srv := New(&mockService{current: []byte(doc)}, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/models-config", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, doc, rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	})
}

func TestEnsureModelsConfigHandler(t *testing.T) {
	defaults := core.OpenClawConfig{Models: &core.ModelsSection{Mode: core.ModeReplace}}

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedMode   string
	}{
		{
			name:           "empty body uses defaults",
			expectedStatus: http.StatusOK,
			expectedMode:   core.ModeReplace,
		},
		{
			name:           "body overrides defaults",
			body:           `{"models":{"mode":"merge","providers":{"custom-proxy":{"baseUrl":"http://localhost:4000/v1"}}}}`,
			expectedStatus: http.StatusOK,
			expectedMode:   core.ModeMerge,
		},
		{
			name:           "malformed json",
			body:           `{"models":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "full config with other sections",
			body:           `{"agents":{"defaults":{"model":"minimax/MiniMax-M2.1"}},"gateway":{"port":18789},"models":{"mode":"merge"}}`,
			expectedStatus: http.StatusOK,
			expectedMode:   core.ModeMerge,
		},
		{
			name:           "models section of the wrong type",
			body:           `{"models":["minimax"]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "validation error",
			body:           `{}`,
			serviceErr:     core.ErrInvalidConfig,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "storage error",
			body:           `{}`,
			serviceErr:     errors.New("disk full"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{err: tt.serviceErr}
			srv := New(svc, &Config{Defaults: defaults})

			req := httptest.NewRequest(http.MethodPost, "/v1/models-config/ensure", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			require.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.expectedMode != "" {
				require.NotNil(t, svc.received)
				assert.Equal(t, tt.expectedMode, svc.received.Mode())
			}
		})
	}
}

func TestListProviders(t *testing.T) {
	srv := New(&mockService{}, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/providers", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Providers []struct {
			Key     string   `json:"key"`
			EnvVars []string `json:"envVars"`
			BaseURL string   `json:"baseUrl"`
		} `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	byKey := make(map[string][]string)
	for _, p := range body.Providers {
		byKey[p.Key] = p.EnvVars
	}
	assert.Equal(t, []string{"MINIMAX_API_KEY"}, byKey["minimax"])
	assert.Equal(t, []string{"SYNTHETIC_API_KEY"}, byKey["synthetic"])
}

func TestEnsureEndToEnd(t *testing.T) {
	dir := t.TempDir()
	svc := modelsconfig.NewService(store.NewFileStore(dir), env.Snapshot{"MINIMAX_API_KEY": "sk-test"})
	srv := New(svc, &Config{MasterKey: "secret"})

	post := func() modelsconfig.Result {
		req := httptest.NewRequest(http.MethodPost, "/v1/models-config/ensure", nil)
		req.Header.Set("Authorization", "Bearer secret")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res modelsconfig.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		return res
	}

	first := post()
	assert.True(t, first.Wrote)
	assert.Equal(t, filepath.Join(dir, "models.json"), first.Path)
	assert.Equal(t, []string{"minimax"}, first.Providers)

	second := post()
	assert.False(t, second.Wrote)

	req := httptest.NewRequest(http.MethodGet, "/v1/models-config", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc core.ModelsConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "MINIMAX_API_KEY", doc.Providers["minimax"].APIKey)
	assert.NotContains(t, rec.Body.String(), "sk-test")
}
