// Package tracing provides OpenTelemetry tracing for exports.
//
// When enabled, spans are batched to an OTLP gRPC collector. Each export
// produces an "export" span with children for canonicalization, rendering,
// and the store call, annotated with the tabula.* attributes defined here.
//
//	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
// A disabled configuration, or a nil *Tracer, yields noop spans.
package tracing
