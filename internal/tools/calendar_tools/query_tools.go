package calendar_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jacob-meacham/tempo-mcp/internal/calendar"
	"github.com/jacob-meacham/tempo-mcp/internal/instrumentation"
	"github.com/jacob-meacham/tempo-mcp/internal/server"
	"github.com/jacob-meacham/tempo-mcp/internal/tools/common"
)

// RegisterQueryTools registers the read-only query tools
func RegisterQueryTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// List events tool
	listEventsTool := mcp.NewTool("list_events",
		mcp.WithDescription("List event occurrences within a time range, with recurring events expanded. Occurrences are sorted by start time."),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Range start (RFC 3339 or naive UTC timestamp)"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Range end, exclusive (RFC 3339 or naive UTC timestamp)"),
		),
		mcp.WithString("calendar",
			mcp.Description("Calendar name. Omit to query across all calendars."),
		),
	)

	s.AddTool(listEventsTool, common.InstrumentedToolHandler("list_events", instrumentation.OperationQuery, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	// Free/busy tool
	freeBusyTool := mcp.NewTool("get_free_busy",
		mcp.WithDescription("Compute busy and free periods within a time range. Overlapping and touching busy periods are merged."),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Range start (RFC 3339 or naive UTC timestamp)"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Range end, exclusive (RFC 3339 or naive UTC timestamp)"),
		),
		mcp.WithString("calendar",
			mcp.Description("Calendar name. Omit to compute across all calendars."),
		),
	)

	s.AddTool(freeBusyTool, common.InstrumentedToolHandler("get_free_busy", instrumentation.OperationQuery, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetFreeBusy(ctx, request, sc)
		}))

	// Slot finder tool
	findSlotsTool := mcp.NewTool("find_available_slots",
		mcp.WithDescription("Find free slots of at least a given duration within a time range, optionally keeping a buffer before and after existing events."),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Search range start (RFC 3339 or naive UTC timestamp)"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Search range end, exclusive (RFC 3339 or naive UTC timestamp)"),
		),
		mcp.WithNumber("duration_minutes",
			mcp.Required(),
			mcp.Description("Minimum slot duration in minutes (must be positive)"),
		),
		mcp.WithNumber("buffer_minutes",
			mcp.Description("Buffer in minutes trimmed from both ends of every free period (default: 0)"),
		),
		mcp.WithString("calendar",
			mcp.Description("Calendar name. Omit to search across all calendars."),
		),
	)

	s.AddTool(findSlotsTool, common.InstrumentedToolHandler("find_available_slots", instrumentation.OperationQuery, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindAvailableSlots(ctx, request, sc)
		}))

	return nil
}

// handleListEvents handles the list_events tool
func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	bounds, err := parseRangeArgs(args)
	if err != nil {
		return toolError(err), nil
	}
	calendarName := common.GetCalendarFromArgs(args)

	occurrences, err := sc.Store().OccurrencesInRange(calendarName, bounds)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResult(map[string]interface{}{
		"start":  bounds.Start,
		"end":    bounds.End,
		"count":  len(occurrences),
		"events": occurrences,
	})
}

// handleGetFreeBusy handles the get_free_busy tool
func handleGetFreeBusy(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	bounds, err := parseRangeArgs(args)
	if err != nil {
		return toolError(err), nil
	}
	calendarName := common.GetCalendarFromArgs(args)

	result, err := sc.Store().FreeBusy(calendarName, bounds)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResult(result)
}

// handleFindAvailableSlots handles the find_available_slots tool
func handleFindAvailableSlots(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	bounds, err := parseRangeArgs(args)
	if err != nil {
		return toolError(err), nil
	}
	calendarName := common.GetCalendarFromArgs(args)

	durationMinutes, ok := args["duration_minutes"].(float64)
	if !ok || durationMinutes <= 0 {
		return toolError(fmt.Errorf("%w: duration_minutes must be a positive number", calendar.ErrInvalidInput)), nil
	}

	bufferMinutes := 0.0
	if raw, ok := args["buffer_minutes"].(float64); ok {
		if raw < 0 {
			return toolError(fmt.Errorf("%w: buffer_minutes must not be negative", calendar.ErrInvalidInput)), nil
		}
		bufferMinutes = raw
	}

	slots, err := sc.Store().FindAvailableSlots(calendarName, bounds,
		time.Duration(durationMinutes)*time.Minute,
		time.Duration(bufferMinutes)*time.Minute)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResult(map[string]interface{}{
		"start":            bounds.Start,
		"end":              bounds.End,
		"duration_minutes": int64(durationMinutes),
		"buffer_minutes":   int64(bufferMinutes),
		"count":            len(slots),
		"slots":            slots,
	})
}
