// Package observability provides Prometheus instrumentation for the models.json resolver.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jayy-77/openclaw/internal/modelsconfig"
	"github.com/jayy-77/openclaw/internal/providers"
)

// Result label values for EnsureTotal
const (
	ResultWrote     = "wrote"
	ResultUnchanged = "unchanged"
	ResultError     = "error"
)

var (
	// EnsureTotal counts Ensure calls by outcome
	EnsureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "openclaw_models_config_ensure_total",
			Help: "Total number of models.json ensure calls",
		},
		[]string{"result"},
	)

	// EnsureDuration measures how long resolution plus the optional write takes
	EnsureDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "openclaw_models_config_ensure_duration_seconds",
			Help:    "models.json ensure duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	// ProvidersConfigured is the number of providers in the last successfully ensured document
	ProvidersConfigured = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "openclaw_models_config_providers",
			Help: "Number of providers in models.json",
		},
	)

	// DiscoveryTotal counts model discovery calls by provider and status
	DiscoveryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "openclaw_provider_discovery_total",
			Help: "Total number of provider model discovery calls",
		},
		[]string{"provider", "status"},
	)
)

// NewPrometheusHooks returns hooks that record every Ensure call
func NewPrometheusHooks() modelsconfig.Hooks {
	return modelsconfig.Hooks{
		OnEnsure: func(info modelsconfig.EnsureInfo) {
			EnsureDuration.Observe(info.Duration.Seconds())

			switch {
			case info.Err != nil:
				EnsureTotal.WithLabelValues(ResultError).Inc()
				return
			case info.Result.Wrote:
				EnsureTotal.WithLabelValues(ResultWrote).Inc()
			default:
				EnsureTotal.WithLabelValues(ResultUnchanged).Inc()
			}
			ProvidersConfigured.Set(float64(len(info.Result.Providers)))
		},
	}
}

// NewDiscoveryHook returns a hook counting discovery outcomes
func NewDiscoveryHook() providers.DiscoveryHook {
	return func(info providers.DiscoveryInfo) {
		status := "success"
		if info.Err != nil {
			status = "error"
		} else if info.Models == 0 {
			status = "empty"
		}
		DiscoveryTotal.WithLabelValues(info.Provider, status).Inc()
	}
}

// Example query patterns for Prometheus:
//
// Rewrites per hour:
//   increase(openclaw_models_config_ensure_total{result="wrote"}[1h])
//
// Discovery failures:
//   rate(openclaw_provider_discovery_total{status="error"}[5m])

// ResetMetrics resets all vector metrics (useful for testing)
func ResetMetrics() {
	EnsureTotal.Reset()
	DiscoveryTotal.Reset()
	ProvidersConfigured.Set(0)
}

// HealthCheck verifies that metrics are being collected
func HealthCheck() error {
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	if len(mfs) == 0 {
		return fmt.Errorf("no metrics registered")
	}

	return nil
}
