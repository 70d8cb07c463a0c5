// Package observability provides OpenTelemetry-based metrics instrumentation
// with a Prometheus exporter for the energy settings library and its tools.
package observability

import (
	"context"
	"fmt"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Module holds the OTel MeterProvider and exposes a Meter for creating
// metric instruments. It is the central entry point for observability setup.
//
// Unlike a server, the library is embedded in an app, so the provider is not
// installed globally and metrics go to a private Prometheus registry.
type Module struct {
	provider *sdkmetric.MeterProvider
	meter    otelmetric.Meter
	registry *promclient.Registry
}

// New creates a new observability Module. It configures a Prometheus exporter
// on a dedicated registry as the metric reader and creates a MeterProvider.
// The serviceName is used as the meter scope name.
func New(serviceName string) (*Module, error) {
	registry := promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	return &Module{
		provider: provider,
		meter:    provider.Meter(serviceName),
		registry: registry,
	}, nil
}

// Shutdown gracefully shuts down the MeterProvider, flushing any remaining
// metric data.
func (m *Module) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}

// Meter returns the OTel Meter for creating metric instruments.
func (m *Module) Meter() otelmetric.Meter {
	return m.meter
}

// Gatherer returns the registry the exporter writes to.
func (m *Module) Gatherer() promclient.Gatherer {
	return m.registry
}

// WriteTextfile dumps the current metrics in the Prometheus text format to
// path, e.g. for the node_exporter textfile collector.
func (m *Module) WriteTextfile(path string) error {
	if err := promclient.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
