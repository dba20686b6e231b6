// Package metrics bridges OpenTelemetry instruments to a Prometheus exporter.
// Business operation metrics and HTTP request metrics share one private
// registry, served on the dedicated metrics port.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// meterName is the instrumentation scope for every instrument in this package.
const meterName = "github.com/keywarden/keywarden/internal/metrics"

// Provider owns the OpenTelemetry meter provider and the registry the scrape
// handler reads from. The Prometheus exporter sits between them as a reader.
type Provider struct {
	meterProvider *metric.MeterProvider
	promRegistry  *prometheus.Registry
}

// NewProvider builds a metrics provider backed by a private Prometheus
// registry. The namespace is applied once, at the exporter, so every exported
// series carries the same prefix and instrument names stay short at the call
// sites.
func NewProvider(namespace string) (*Provider, error) {
	registry := prometheus.NewRegistry()

	opts := []promexporter.Option{
		promexporter.WithRegisterer(registry),
	}
	if namespace != "" {
		opts = append(opts, promexporter.WithNamespace(namespace))
	}

	exporter, err := promexporter.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prometheus exporter: %w", err)
	}

	return &Provider{
		meterProvider: metric.NewMeterProvider(metric.WithReader(exporter)),
		promRegistry:  registry,
	}, nil
}

// Handler returns the scrape handler serving the exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.promRegistry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// MeterProvider exposes the provider instruments are created from.
func (p *Provider) MeterProvider() *metric.MeterProvider {
	return p.meterProvider
}

// Shutdown flushes pending metrics and releases the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}
