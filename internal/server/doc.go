// Package server holds the runtime state shared by all MCP tool handlers:
// the calendar store, instrumentation hooks and shutdown coordination. It
// also provides the health check endpoints and the dedicated Prometheus
// metrics server used by the streamable-http transport.
package server
