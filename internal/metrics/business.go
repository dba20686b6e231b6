package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Status label values recorded with every operation.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// OutcomeStatus maps an operation's returned error to its status label.
func OutcomeStatus(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

// BusinessMetrics records business operation counts and latencies.
// Domains in use: "auth", "secrets", "folders", "deks".
type BusinessMetrics interface {
	// RecordOperation counts one operation under the given status label.
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records how long an operation took, in seconds, as a
	// histogram so percentiles can be derived.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)
}

// businessRecorder implements BusinessMetrics on OpenTelemetry instruments.
type businessRecorder struct {
	operations metric.Int64Counter
	durations  metric.Float64Histogram
}

// NewBusinessMetrics creates the operation counter and latency histogram.
// Instrument names carry no prefix; the Prometheus exporter applies the
// configured namespace when the series are exported.
func NewBusinessMetrics(meterProvider metric.MeterProvider) (BusinessMetrics, error) {
	meter := meterProvider.Meter(meterName)

	operations, err := meter.Int64Counter(
		"operations_total",
		metric.WithDescription("Business operations by domain, operation and status"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operations counter: %w", err)
	}

	durations, err := meter.Float64Histogram(
		"operation_duration_seconds",
		metric.WithDescription("Business operation latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create latency histogram: %w", err)
	}

	return &businessRecorder{operations: operations, durations: durations}, nil
}

// operationAttrs builds the label set shared by both instruments.
func operationAttrs(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

func (b *businessRecorder) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operations.Add(ctx, 1, operationAttrs(domain, operation, status))
}

func (b *businessRecorder) RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string) {
	b.durations.Record(ctx, duration.Seconds(), operationAttrs(domain, operation, status))
}

// noOpBusinessMetrics discards every measurement.
type noOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics returns a BusinessMetrics that records nothing,
// used when metrics are disabled by configuration.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return noOpBusinessMetrics{}
}

func (noOpBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (noOpBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}
