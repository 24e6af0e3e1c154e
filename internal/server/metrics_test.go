package server

import (
	"context"
	"testing"

	"github.com/jacob-meacham/tempo-mcp/internal/instrumentation"
)

func TestNewMetricsServerRequiresProvider(t *testing.T) {
	_, err := NewMetricsServer(MetricsServerConfig{Addr: ":9090"})
	if err == nil {
		t.Error("expected error without instrumentation provider")
	}
}

func TestNewMetricsServerRequiresEnabledProvider(t *testing.T) {
	config := instrumentation.DefaultConfig()
	config.Enabled = false
	provider, err := instrumentation.NewProvider(context.Background(), config)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	_, err = NewMetricsServer(MetricsServerConfig{
		Addr:                    ":9090",
		InstrumentationProvider: provider,
	})
	if err == nil {
		t.Error("expected error with disabled provider")
	}
}

func TestNewMetricsServerDefaults(t *testing.T) {
	config := instrumentation.DefaultConfig()
	config.MetricsExporter = instrumentation.ExporterPrometheus
	provider, err := instrumentation.NewProvider(context.Background(), config)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()

	srv, err := NewMetricsServer(MetricsServerConfig{InstrumentationProvider: provider})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}
	if srv.Addr() != DefaultMetricsAddr {
		t.Errorf("expected default addr %s, got %s", DefaultMetricsAddr, srv.Addr())
	}
}
