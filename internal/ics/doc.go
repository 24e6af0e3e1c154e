// Package ics converts between iCalendar (RFC 5545) payloads and the
// engine's event model. Parsing is strict: a malformed VEVENT fails the
// whole payload. RRULE values pass through verbatim so the engine expands
// them on demand.
package ics
