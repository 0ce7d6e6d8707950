// Package telemetry provides optional OpenTelemetry tracing for the SDK.
//
// When enabled, every API request carries a client span and propagates trace
// context to the ordering backend. Telemetry is off by default; an SDK built
// for a mobile-style client must not require a collector to function.
//
// # Initialization
//
//	provider, err := telemetry.Initialize("grandkitchen-client")
//	if err != nil { ... }
//	defer provider.Shutdown(context.Background())
//
// Exporter selection follows the environment:
//   - OTEL_EXPORTER_OTLP_ENDPOINT set: OTLP over gRPC to that endpoint
//   - GRANDK_TRACE_STDOUT=true: pretty-printed spans on stdout (development)
//   - neither: spans are created but never exported
//
// # HTTP Instrumentation
//
// WrapTransport instruments an http.RoundTripper with otelhttp so the core
// transport emits spans without knowing about this package:
//
//	httpClient.Transport = telemetry.WrapTransport(httpClient.Transport)
package telemetry
