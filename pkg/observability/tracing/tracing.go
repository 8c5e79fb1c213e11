package tracing

import (
    "context"
    "io"
    "os"

    "go.opentelemetry.io/otel"
    "go.opentelemetry.io/otel/attribute"
    "go.opentelemetry.io/otel/codes"
    "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
    sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var enabled bool

// Setup configures a global tracer provider when enable=true. Spans are
// written to w (os.Stderr when nil) so they never mix with the log lines on
// stdout. It returns a shutdown function which should be deferred.
func Setup(enable bool, w io.Writer) (func(context.Context) error, error) {
    enabled = enable
    if !enable {
        return func(context.Context) error { return nil }, nil
    }
    if w == nil { w = os.Stderr }
    exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
    if err != nil {
        return nil, err
    }
    // One-shot runs: export synchronously so nothing is lost on exit.
    tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
    otel.SetTracerProvider(tp)
    return tp.Shutdown, nil
}

// StartSpan starts a tracing span if tracing is enabled. The returned func
// ends the span, marking it failed when err is non-nil.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
    if !enabled {
        return ctx, func(error) {}
    }
    tr := otel.Tracer("go-peercheck")
    ctx, span := tr.Start(ctx, name)
    if len(attrs) > 0 { span.SetAttributes(attrs...) }
    return ctx, func(err error) {
        if err != nil {
            span.RecordError(err)
            span.SetStatus(codes.Error, err.Error())
        }
        span.End()
    }
}
