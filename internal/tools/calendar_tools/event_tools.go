package calendar_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jacob-meacham/tempo-mcp/internal/calendar"
	"github.com/jacob-meacham/tempo-mcp/internal/instrumentation"
	"github.com/jacob-meacham/tempo-mcp/internal/server"
	"github.com/jacob-meacham/tempo-mcp/internal/tools/common"
)

// RegisterEventTools registers the direct event manipulation tools
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Add single event tool
	addEventTool := mcp.NewTool("add_event",
		mcp.WithDescription("Add a single event to a calendar."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Event start (RFC 3339 or naive UTC timestamp)"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Event end, exclusive (RFC 3339 or naive UTC timestamp)"),
		),
		mcp.WithString("timezone",
			mcp.Description("IANA timezone label for display (default: 'UTC')"),
		),
		mcp.WithString("rrule",
			mcp.Description("RFC 5545 recurrence rule, e.g. 'FREQ=WEEKLY;BYDAY=MO,WE'"),
		),
		mcp.WithObject("metadata",
			mcp.Description("Free-form string key/value metadata"),
		),
		mcp.WithString("calendar",
			mcp.Description("Target calendar name (default: 'default')"),
		),
	)

	s.AddTool(addEventTool, common.InstrumentedToolHandler("add_event", instrumentation.OperationMutate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAddEvent(ctx, request, sc)
		}))

	// Remove event tool
	removeEventTool := mcp.NewTool("remove_event",
		mcp.WithDescription("Remove an event from a calendar by ID."),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("The event to remove"),
		),
		mcp.WithString("calendar",
			mcp.Description("Calendar name (default: 'default')"),
		),
	)

	s.AddTool(removeEventTool, common.InstrumentedToolHandler("remove_event", instrumentation.OperationMutate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRemoveEvent(ctx, request, sc)
		}))

	// Clear calendar tool
	clearCalendarTool := mcp.NewTool("clear_calendar",
		mcp.WithDescription("Remove all events from a calendar. The calendar itself remains."),
		mcp.WithString("calendar",
			mcp.Description("Calendar name (default: 'default')"),
		),
	)

	s.AddTool(clearCalendarTool, common.InstrumentedToolHandler("clear_calendar", instrumentation.OperationMutate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleClearCalendar(ctx, request, sc)
		}))

	return nil
}

// handleAddEvent handles the add_event tool
func handleAddEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	title, err := requireString(args, "title")
	if err != nil {
		return toolError(err), nil
	}
	startRaw, err := requireString(args, "start")
	if err != nil {
		return toolError(err), nil
	}
	endRaw, err := requireString(args, "end")
	if err != nil {
		return toolError(err), nil
	}

	in := eventInput{
		Title: title,
		Start: startRaw,
		End:   endRaw,
	}
	if tz, ok := args["timezone"].(string); ok {
		in.Timezone = tz
	}
	if rrule, ok := args["rrule"].(string); ok {
		in.RRule = rrule
	}
	if rawMeta, ok := args["metadata"].(map[string]interface{}); ok {
		in.Metadata = map[string]string{}
		for k, v := range rawMeta {
			if s, ok := v.(string); ok {
				in.Metadata[k] = s
			}
		}
	}

	ev, err := in.toEvent()
	if err != nil {
		return toolError(err), nil
	}

	calendarName := common.GetCalendarFromArgs(args)
	id := sc.Store().AddEvent(calendarName, ev)

	return jsonResult(map[string]interface{}{
		"event_id": id,
		"calendar": calendar.CanonicalName(calendarName),
	})
}

// handleRemoveEvent handles the remove_event tool
func handleRemoveEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	eventID, err := requireString(args, "event_id")
	if err != nil {
		return toolError(err), nil
	}
	calendarName := common.GetCalendarFromArgs(args)

	if err := sc.Store().RemoveEvent(calendarName, calendar.EventID(eventID)); err != nil {
		return toolError(err), nil
	}

	return jsonResult(map[string]interface{}{
		"event_id": eventID,
		"calendar": calendar.CanonicalName(calendarName),
		"removed":  true,
	})
}

// handleClearCalendar handles the clear_calendar tool
func handleClearCalendar(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarName := common.GetCalendarFromArgs(args)

	removed, err := sc.Store().ClearCalendar(calendarName)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResult(map[string]interface{}{
		"calendar":       calendar.CanonicalName(calendarName),
		"cleared":        true,
		"events_removed": removed,
	})
}
