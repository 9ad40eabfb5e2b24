package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jayy-77/openclaw/internal/modelsconfig"
	"github.com/jayy-77/openclaw/internal/providers"
)

func TestPrometheusHooks(t *testing.T) {
	ResetMetrics()

	hooks := NewPrometheusHooks()

	if hooks.OnEnsure == nil {
		t.Fatal("OnEnsure hook should not be nil")
	}
}

func TestEnsureMetrics(t *testing.T) {
	ResetMetrics()
	hooks := NewPrometheusHooks()

	hooks.OnEnsure(modelsconfig.EnsureInfo{
		Result:   modelsconfig.Result{Wrote: true, Providers: []string{"minimax", "synthetic"}},
		Duration: 5 * time.Millisecond,
	})
	hooks.OnEnsure(modelsconfig.EnsureInfo{
		Result:   modelsconfig.Result{Wrote: false, Providers: []string{"minimax", "synthetic"}},
		Duration: time.Millisecond,
	})
	hooks.OnEnsure(modelsconfig.EnsureInfo{
		Err:      errors.New("permission denied"),
		Duration: time.Millisecond,
	})

	tests := []struct {
		result   string
		expected float64
	}{
		{ResultWrote, 1},
		{ResultUnchanged, 1},
		{ResultError, 1},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(EnsureTotal.WithLabelValues(tt.result))
		if got != tt.expected {
			t.Errorf("Expected %s counter %f, got %f", tt.result, tt.expected, got)
		}
	}

	if got := testutil.ToFloat64(ProvidersConfigured); got != 2 {
		t.Errorf("Expected providers gauge 2, got %f", got)
	}
}

func TestEnsureErrorDoesNotTouchProviderGauge(t *testing.T) {
	ResetMetrics()
	hooks := NewPrometheusHooks()

	hooks.OnEnsure(modelsconfig.EnsureInfo{Result: modelsconfig.Result{Providers: []string{"ollama"}}})
	hooks.OnEnsure(modelsconfig.EnsureInfo{Err: errors.New("boom")})

	if got := testutil.ToFloat64(ProvidersConfigured); got != 1 {
		t.Errorf("Expected providers gauge to stay at 1, got %f", got)
	}
}

func TestDiscoveryHook(t *testing.T) {
	ResetMetrics()
	hook := NewDiscoveryHook()

	hook(providers.DiscoveryInfo{Provider: "ollama", Models: 3})
	hook(providers.DiscoveryInfo{Provider: "ollama", Models: 0})
	hook(providers.DiscoveryInfo{Provider: "ollama", Err: errors.New("connection refused")})
	hook(providers.DiscoveryInfo{Provider: "ollama", Err: errors.New("connection refused")})

	cases := map[string]float64{"success": 1, "empty": 1, "error": 2}
	for status, expected := range cases {
		got := testutil.ToFloat64(DiscoveryTotal.WithLabelValues("ollama", status))
		if got != expected {
			t.Errorf("Expected %s count %f, got %f", status, expected, got)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	EnsureTotal.WithLabelValues(ResultWrote).Inc()

	if err := HealthCheck(); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}
