// Package observability wires OpenTelemetry tracing and metrics into
// whisperbridge.
//
// Setup installs OTLP/HTTP exporters when telemetry is enabled and leaves the
// global no-op providers in place otherwise, so instrumented code always has a
// tracer and a meter to talk to.
//
//	shutdown, err := observability.Setup(ctx, cfg.Telemetry)
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName))
//	ctx, op := observability.StartOperation(ctx, "standalone", jobID, metrics)
//	defer op.End(err)
package observability
