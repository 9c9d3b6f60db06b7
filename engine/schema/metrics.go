package schema

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	monitoringmetrics "github.com/compozy/bomkit/engine/infra/monitoring/metrics"
	"github.com/compozy/bomkit/engine/spec"
)

const schemaMetricSubsystem = "schema"

var (
	schemaMetricsOnce         sync.Once
	schemaMetricsErr          error
	schemaCompileCounter      metric.Int64Counter
	schemaValidationCounter   metric.Int64Counter
	schemaCompileHistogram    metric.Float64Histogram
	schemaValidateHistogram   metric.Float64Histogram
	schemaDocumentSizeHist    metric.Int64Histogram
	schemaCacheGauge          metric.Int64ObservableGauge
	schemaMetricsRegistration metric.Registration
	schemaMetricsMu           sync.Mutex
)

func ensureSchemaMetrics() {
	schemaMetricsOnce.Do(func() {
		meter := otel.GetMeterProvider().Meter("bomkit.schema")
		schemaMetricsErr = initSchemaMetrics(meter)
	})
}

func initSchemaMetrics(meter metric.Meter) error {
	var err error
	schemaCompileCounter, err = meter.Int64Counter(
		monitoringmetrics.MetricNameWithSubsystem(schemaMetricSubsystem, "compiles_total"),
		metric.WithDescription("Schema lookups, labelled by whether the compiled schema was cached"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}
	schemaValidationCounter, err = meter.Int64Counter(
		monitoringmetrics.MetricNameWithSubsystem(schemaMetricSubsystem, "validations_total"),
		metric.WithDescription("Documents validated against a schema"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}
	schemaCompileHistogram, err = meter.Float64Histogram(
		monitoringmetrics.MetricNameWithSubsystem(schemaMetricSubsystem, "compile_duration_seconds"),
		metric.WithDescription("Schema compilation duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(monitoringmetrics.SchemaCompileBuckets...),
	)
	if err != nil {
		return err
	}
	schemaValidateHistogram, err = meter.Float64Histogram(
		monitoringmetrics.MetricNameWithSubsystem(schemaMetricSubsystem, "validate_duration_seconds"),
		metric.WithDescription("Document validation duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(monitoringmetrics.ValidationDurationBuckets...),
	)
	if err != nil {
		return err
	}
	schemaDocumentSizeHist, err = meter.Int64Histogram(
		monitoringmetrics.MetricNameWithSubsystem(schemaMetricSubsystem, "document_size_bytes"),
		metric.WithDescription("Size of validated documents"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(monitoringmetrics.DocumentSizeBucketBoundaries...),
	)
	if err != nil {
		return err
	}
	schemaCacheGauge, err = meter.Int64ObservableGauge(
		monitoringmetrics.MetricNameWithSubsystem(schemaMetricSubsystem, "cache_size"),
		metric.WithDescription("Spec versions with a compiled JSON schema"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}
	schemaMetricsMu.Lock()
	defer schemaMetricsMu.Unlock()
	if schemaMetricsRegistration != nil {
		if err := schemaMetricsRegistration.Unregister(); err != nil {
			return fmt.Errorf("schema metrics: unregister callback: %w", err)
		}
	}
	registration, err := meter.RegisterCallback(observeSchemaMetrics, schemaCacheGauge)
	if err != nil {
		return err
	}
	schemaMetricsRegistration = registration
	return nil
}

func observeSchemaMetrics(_ context.Context, observer metric.Observer) error {
	observer.ObserveInt64(schemaCacheGauge, cacheSize())
	return nil
}

func recordSchemaCompile(ctx context.Context, duration time.Duration, cacheHit bool) {
	ensureSchemaMetrics()
	if schemaMetricsErr != nil {
		return
	}
	ctx = metricsContext(ctx)
	attrs := metric.WithAttributes(attribute.Bool("cache_hit", cacheHit))
	if schemaCompileCounter != nil {
		schemaCompileCounter.Add(ctx, 1, attrs)
	}
	if !cacheHit && duration > 0 && schemaCompileHistogram != nil {
		schemaCompileHistogram.Record(ctx, duration.Seconds())
	}
}

// RecordValidation records one document validation. Validators call it for both formats
// once the outcome is known.
func RecordValidation(
	ctx context.Context,
	v spec.Version,
	f spec.Format,
	duration time.Duration,
	size int,
	valid bool,
) {
	ensureSchemaMetrics()
	if schemaMetricsErr != nil {
		return
	}
	ctx = metricsContext(ctx)
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	format := attribute.String("format", f.String())
	version := attribute.String("spec", v.String())
	if schemaValidationCounter != nil {
		schemaValidationCounter.Add(ctx, 1, metric.WithAttributes(format, version, attribute.String("outcome", outcome)))
	}
	if duration > 0 && schemaValidateHistogram != nil {
		schemaValidateHistogram.Record(ctx, duration.Seconds(), metric.WithAttributes(format))
	}
	if size > 0 && schemaDocumentSizeHist != nil {
		schemaDocumentSizeHist.Record(ctx, int64(size), metric.WithAttributes(format, version))
	}
}

func metricsContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}
