package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/whisperbridge/errors"
)

// StatusOK is the status label for successful jobs. Failed jobs are labeled
// with their error code.
const StatusOK = "ok"

// Operation tracks the span and metrics of one job execution.
type Operation struct {
	Kind      string
	JobID     string
	StartTime time.Time
	Metrics   *Metrics

	span trace.Span
}

type operationKey struct{}

// StartOperation starts the execute span of a job. If metrics is nil, metric
// recording is skipped.
func StartOperation(ctx context.Context, kind, jobID string, metrics *Metrics) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, SpanJobExecute, trace.WithAttributes(
		attribute.String(AttrJobKind, kind),
		attribute.String(AttrJobID, jobID),
	))
	op := &Operation{
		Kind:      kind,
		JobID:     jobID,
		StartTime: time.Now(),
		Metrics:   metrics,
		span:      span,
	}
	return context.WithValue(ctx, operationKey{}, op), op
}

// OperationFromContext returns the operation started on ctx, or nil.
func OperationFromContext(ctx context.Context) *Operation {
	if op, ok := ctx.Value(operationKey{}).(*Operation); ok {
		return op
	}
	return nil
}

// End closes the span and records the completion. It returns the status label.
func (op *Operation) End(ctx context.Context, err error) string {
	duration := op.Duration()
	status := StatusFor(err)

	if err != nil {
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
		op.span.SetAttributes(attribute.String(AttrErrorCode, status))
	} else {
		op.span.SetStatus(codes.Ok, "")
	}
	op.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	op.span.End()

	op.Metrics.RecordCompleted(ctx, op.Kind, status, duration)
	return status
}

// Duration returns the elapsed time since the operation started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}

// StatusFor maps an outcome to its metric label.
func StatusFor(err error) string {
	if err == nil {
		return StatusOK
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return string(apperrors.ErrCodeInternal)
}
