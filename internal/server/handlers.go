package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jayy-77/openclaw/internal/core"
	"github.com/jayy-77/openclaw/internal/modelsconfig"
	"github.com/jayy-77/openclaw/internal/providers"
	"github.com/jayy-77/openclaw/internal/store"
)

// ModelsConfigService is the part of modelsconfig.Service the HTTP layer needs
type ModelsConfigService interface {
	Ensure(ctx context.Context, cfg core.OpenClawConfig) (modelsconfig.Result, error)
	Current(ctx context.Context) ([]byte, error)
}

// Handler serves the models-config API
type Handler struct {
	svc      ModelsConfigService
	defaults core.OpenClawConfig
}

// NewHandler creates a handler; defaults is used when an ensure request carries no body
func NewHandler(svc ModelsConfigService, defaults core.OpenClawConfig) *Handler {
	return &Handler{svc: svc, defaults: defaults}
}

// Health reports liveness
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GetModelsConfig returns the stored models.json as is
func (h *Handler) GetModelsConfig(c echo.Context) error {
	data, err := h.svc.Current(c.Request().Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errorResponse(c, http.StatusNotFound, "not_found_error", "models.json has not been written yet")
		}
		slog.Error("failed to load models config", "error", err)
		return errorResponse(c, http.StatusInternalServerError, "server_error", "failed to load models config")
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

// EnsureModelsConfig resolves providers and writes models.json when needed.
// The optional body is an OpenClaw config; only its "models" section is read.
func (h *Handler) EnsureModelsConfig(c echo.Context) error {
	cfg := h.defaults
	dec := json.NewDecoder(c.Request().Body)
	var body core.OpenClawConfig
	switch err := dec.Decode(&body); {
	case err == nil:
		cfg = body
	case errors.Is(err, io.EOF):
	default:
		return errorResponse(c, http.StatusBadRequest, "invalid_request_error", "invalid request body: "+err.Error())
	}

	res, err := h.svc.Ensure(c.Request().Context(), cfg)
	if err != nil {
		if errors.Is(err, core.ErrInvalidConfig) {
			return errorResponse(c, http.StatusBadRequest, "invalid_request_error", err.Error())
		}
		slog.Error("failed to ensure models config", "error", err)
		return errorResponse(c, http.StatusInternalServerError, "server_error", "failed to write models config")
	}
	return c.JSON(http.StatusOK, res)
}

type providerInfo struct {
	Key        string                 `json:"key"`
	EnvVars    []string               `json:"envVars"`
	BaseURL    string                 `json:"baseUrl"`
	API        string                 `json:"api"`
	Models     []core.ModelDefinition `json:"models,omitempty"`
	Discovered bool                   `json:"discovered,omitempty"`
}

// ListProviders returns the catalog of environment-driven providers
func (h *Handler) ListProviders(c echo.Context) error {
	defs := providers.List()
	out := make([]providerInfo, 0, len(defs))
	for _, d := range defs {
		out = append(out, providerInfo{
			Key:        d.Key,
			EnvVars:    d.EnvVars,
			BaseURL:    d.BaseURL,
			API:        d.API,
			Models:     d.Models,
			Discovered: d.Discovered,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"providers": out})
}

func errorResponse(c echo.Context, status int, errType, message string) error {
	return c.JSON(status, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    errType,
			"message": message,
		},
	})
}
