// Package observability wires OpenTelemetry tracing into remotekit.
//
// The adapters always create client spans through the global tracer
// provider, which is a no-op until InitTracer (or the embedding application)
// installs a real one.
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("remotekit"))
//	defer tp.Shutdown(ctx)
package observability
