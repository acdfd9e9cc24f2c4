package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/whisperbridge/logger"
)

// InitMeter installs a global meter provider exporting over OTLP/HTTP.
// The returned provider must be shut down on exit.
func InitMeter(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the job and handle instruments. A nil *Metrics records
// nothing.
type Metrics struct {
	jobsSubmitted   metric.Int64Counter
	jobsRejected    metric.Int64Counter
	jobsCompleted   metric.Int64Counter
	jobQueueWait    metric.Float64Histogram
	jobDuration     metric.Float64Histogram
	queueDepth      metric.Int64UpDownCounter
	handlesActive   metric.Int64UpDownCounter
	handleLifecycle metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	jobsSubmitted, err := meter.Int64Counter("whisperbridge.jobs.submitted",
		metric.WithDescription("Jobs accepted by the scheduler"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jobs.submitted counter: %w", err)
	}

	jobsRejected, err := meter.Int64Counter("whisperbridge.jobs.rejected",
		metric.WithDescription("Jobs refused before execution"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jobs.rejected counter: %w", err)
	}

	jobsCompleted, err := meter.Int64Counter("whisperbridge.jobs.completed",
		metric.WithDescription("Jobs whose completion was delivered, by kind and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jobs.completed counter: %w", err)
	}

	jobQueueWait, err := meter.Float64Histogram("whisperbridge.job.queue_wait",
		metric.WithDescription("Time between submit and the start of execution"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating job.queue_wait histogram: %w", err)
	}

	jobDuration, err := meter.Float64Histogram("whisperbridge.job.duration",
		metric.WithDescription("Duration of job execution on a worker"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating job.duration histogram: %w", err)
	}

	queueDepth, err := meter.Int64UpDownCounter("whisperbridge.scheduler.queue_depth",
		metric.WithDescription("Jobs accepted but not yet executing"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scheduler.queue_depth gauge: %w", err)
	}

	handlesActive, err := meter.Int64UpDownCounter("whisperbridge.handles.active",
		metric.WithDescription("Handles currently holding an engine context"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating handles.active gauge: %w", err)
	}

	handleLifecycle, err := meter.Int64Counter("whisperbridge.handles.lifecycle",
		metric.WithDescription("Handle initialize and dispose events by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating handles.lifecycle counter: %w", err)
	}

	return &Metrics{
		jobsSubmitted:   jobsSubmitted,
		jobsRejected:    jobsRejected,
		jobsCompleted:   jobsCompleted,
		jobQueueWait:    jobQueueWait,
		jobDuration:     jobDuration,
		queueDepth:      queueDepth,
		handlesActive:   handlesActive,
		handleLifecycle: handleLifecycle,
	}, nil
}

// RecordSubmitted counts an accepted job and raises the queue depth.
func (m *Metrics) RecordSubmitted(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.jobsSubmitted.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	m.queueDepth.Add(ctx, 1)
}

// RecordRejected counts a job refused before it reached a worker.
func (m *Metrics) RecordRejected(ctx context.Context, kind, reason string) {
	if m == nil {
		return
	}
	m.jobsRejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("reason", reason),
	))
}

// RecordDequeued lowers the queue depth for a job leaving the queue, with or
// without running.
func (m *Metrics) RecordDequeued(ctx context.Context, kind string, wait time.Duration) {
	if m == nil {
		return
	}
	m.queueDepth.Add(ctx, -1)
	m.jobQueueWait.Record(ctx, wait.Seconds(), metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordCompleted records a finished job.
func (m *Metrics) RecordCompleted(ctx context.Context, kind, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.jobsCompleted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
	m.jobDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordHandleInitialized records an Initialize outcome. Successful calls add
// an active handle.
func (m *Metrics) RecordHandleInitialized(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.handleLifecycle.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", "initialize"),
		attribute.String("status", status),
	))
	if status == StatusOK {
		m.handlesActive.Add(ctx, 1)
	}
}

// RecordHandleDisposed records a dispose that released an engine context.
func (m *Metrics) RecordHandleDisposed(ctx context.Context) {
	if m == nil {
		return
	}
	m.handleLifecycle.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", "dispose"),
		attribute.String("status", StatusOK),
	))
	m.handlesActive.Add(ctx, -1)
}
