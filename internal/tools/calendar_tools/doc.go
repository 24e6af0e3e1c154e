// Package calendar_tools registers the MCP tool surface of the scheduling
// engine: loading events from iCalendar, JSON or Google Calendar payloads,
// querying occurrences and availability, the proposal workflow, direct event
// manipulation, and export.
//
// Handlers are thin adapters over internal/calendar.Store: they decode
// arguments, call one store operation, and serialize the result. All handlers
// are wrapped with common.InstrumentedToolHandler for metrics and audit
// logging.
package calendar_tools
