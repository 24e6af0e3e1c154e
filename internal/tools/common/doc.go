// Package common provides shared helpers for MCP tool handlers.
//
// It contains argument extraction utilities and the instrumentation
// wrapper that records metrics and audit logs for every tool call.
package common
