package calendar_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jacob-meacham/tempo-mcp/internal/calendar"
	"github.com/jacob-meacham/tempo-mcp/internal/ics"
	"github.com/jacob-meacham/tempo-mcp/internal/instrumentation"
	"github.com/jacob-meacham/tempo-mcp/internal/server"
	"github.com/jacob-meacham/tempo-mcp/internal/tools/common"
)

// RegisterLoadTools registers the tools that import events into a calendar
func RegisterLoadTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Load iCalendar tool
	loadIcalTool := mcp.NewTool("load_ical",
		mcp.WithDescription("Load events from iCalendar (RFC 5545) data into a calendar. The whole payload is rejected if any event is malformed."),
		mcp.WithString("ical_data",
			mcp.Required(),
			mcp.Description("Raw iCalendar text (BEGIN:VCALENDAR ... END:VCALENDAR)"),
		),
		mcp.WithString("calendar",
			mcp.Description("Target calendar name (default: 'default'). Names are case-insensitive."),
		),
	)

	s.AddTool(loadIcalTool, common.InstrumentedToolHandler("load_ical", instrumentation.OperationLoad, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleLoadIcal(ctx, request, sc)
		}))

	// Load JSON events tool
	loadJSONTool := mcp.NewTool("load_json",
		mcp.WithDescription("Load events from a JSON array into a calendar. Each event needs title, start and end; timezone, rrule and metadata are optional. The whole batch is rejected if any event is invalid."),
		mcp.WithArray("events",
			mcp.Required(),
			mcp.Description("Array of event objects: {title, start, end, timezone?, rrule?, metadata?}. Timestamps are RFC 3339 or naive UTC (2006-01-02T15:04:05)."),
		),
		mcp.WithString("calendar",
			mcp.Description("Target calendar name (default: 'default'). Names are case-insensitive."),
		),
	)

	s.AddTool(loadJSONTool, common.InstrumentedToolHandler("load_json", instrumentation.OperationLoad, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleLoadJSON(ctx, request, sc)
		}))

	// Load Google Calendar events tool
	loadGoogleTool := mcp.NewTool("load_google_calendar",
		mcp.WithDescription("Load events from a Google Calendar API events.list response (the items array). Malformed entries are skipped instead of failing the batch."),
		mcp.WithArray("events",
			mcp.Required(),
			mcp.Description("Array of Google Calendar event resources (id, summary, start, end, recurrence, ...)"),
		),
		mcp.WithString("calendar",
			mcp.Description("Target calendar name (default: 'default'). Names are case-insensitive."),
		),
	)

	s.AddTool(loadGoogleTool, common.InstrumentedToolHandler("load_google_calendar", instrumentation.OperationLoad, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleLoadGoogleCalendar(ctx, request, sc)
		}))

	return nil
}

// handleLoadIcal handles the load_ical tool
func handleLoadIcal(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	icalData, err := requireString(args, "ical_data")
	if err != nil {
		return toolError(err), nil
	}
	calendarName := common.GetCalendarFromArgs(args)

	events, err := ics.Parse(icalData)
	if err != nil {
		return toolError(err), nil
	}

	ids := sc.Store().AddEvents(calendarName, events)

	if metrics := sc.Metrics(); metrics != nil {
		metrics.RecordEventsLoaded(ctx, instrumentation.SourceIcal, calendar.CanonicalName(calendarName), len(ids))
	}

	return jsonResult(map[string]interface{}{
		"calendar":      calendar.CanonicalName(calendarName),
		"events_loaded": len(ids),
		"event_ids":     ids,
	})
}

// handleLoadJSON handles the load_json tool
func handleLoadJSON(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	inputs, err := decodeEventInputs(args["events"])
	if err != nil {
		return toolError(err), nil
	}
	calendarName := common.GetCalendarFromArgs(args)

	// Validate the whole batch before inserting anything
	events := make([]calendar.Event, 0, len(inputs))
	for _, in := range inputs {
		ev, err := in.toEvent()
		if err != nil {
			return toolError(err), nil
		}
		events = append(events, ev)
	}

	ids := sc.Store().AddEvents(calendarName, events)

	if metrics := sc.Metrics(); metrics != nil {
		metrics.RecordEventsLoaded(ctx, instrumentation.SourceJSON, calendar.CanonicalName(calendarName), len(ids))
	}

	return jsonResult(map[string]interface{}{
		"calendar":      calendar.CanonicalName(calendarName),
		"events_loaded": len(ids),
		"event_ids":     ids,
	})
}

// handleLoadGoogleCalendar handles the load_google_calendar tool
func handleLoadGoogleCalendar(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	gcalEvents, err := decodeGcalEvents(args["events"])
	if err != nil {
		return toolError(err), nil
	}
	calendarName := common.GetCalendarFromArgs(args)

	// Google feeds are best-effort: cancelled or malformed entries are
	// skipped rather than failing the batch.
	events := make([]calendar.Event, 0, len(gcalEvents))
	skipped := 0
	for _, g := range gcalEvents {
		if g.Status == "cancelled" {
			skipped++
			continue
		}
		ev, err := g.toEvent()
		if err != nil {
			skipped++
			continue
		}
		events = append(events, ev)
	}

	ids := sc.Store().AddEvents(calendarName, events)

	if metrics := sc.Metrics(); metrics != nil {
		metrics.RecordEventsLoaded(ctx, instrumentation.SourceGoogle, calendar.CanonicalName(calendarName), len(ids))
	}

	return jsonResult(map[string]interface{}{
		"calendar":       calendar.CanonicalName(calendarName),
		"events_loaded":  len(ids),
		"events_skipped": skipped,
		"event_ids":      ids,
	})
}
