package log

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// NewTracerProvider returns a tracer provider that writes every finished
// span to the debug log of the "trace" logger.
func NewTracerProvider() *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(NewSpanExporter(S().Named("trace"))),
	)
}

// SpanExporter is a [sdktrace.SpanExporter] writing spans to a zap logger.
type SpanExporter struct {
	log *zap.SugaredLogger
}

func NewSpanExporter(log *zap.SugaredLogger) *SpanExporter {
	return &SpanExporter{log: log}
}

func (e *SpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		fields := []any{
			"trace", span.SpanContext().TraceID().String(),
			"span", span.SpanContext().SpanID().String(),
			"took", span.EndTime().Sub(span.StartTime()),
			"status", span.Status().Code.String(),
		}

		if parent := span.Parent(); parent.IsValid() {
			fields = append(fields, "parent", parent.SpanID().String())
		}

		for _, attr := range span.Attributes() {
			fields = append(fields, string(attr.Key), attr.Value.Emit())
		}

		if desc := span.Status().Description; desc != "" {
			fields = append(fields, "err", desc)
		}

		e.log.Debugw(span.Name(), fields...)
	}
	return nil
}

func (e *SpanExporter) Shutdown(ctx context.Context) error {
	return nil
}
