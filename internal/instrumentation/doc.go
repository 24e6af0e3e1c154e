// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for the tempo-mcp server.
//
// The Provider owns the meter and tracer providers and is configured from
// environment variables via DefaultConfig. Metrics cover MCP tool
// invocations and scheduling engine operations; the audit logger records
// one structured entry per tool call, including the target calendar and
// proposal where applicable.
//
// Typical wiring at startup:
//
//	config := instrumentation.DefaultConfig()
//	provider, err := instrumentation.NewProvider(ctx, config)
//	if err != nil {
//	    return err
//	}
//	defer provider.Shutdown(ctx)
//
//	metrics := provider.Metrics()
//	metrics.RecordToolInvocation(ctx, "get_free_busy", instrumentation.StatusSuccess, elapsed)
package instrumentation
