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

// RegisterExportTools registers the export tools
func RegisterExportTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Export iCalendar tool
	exportIcalTool := mcp.NewTool("export_ical",
		mcp.WithDescription("Export a calendar's events as iCalendar (RFC 5545) text."),
		mcp.WithString("calendar",
			mcp.Description("Calendar name (default: 'default')"),
		),
	)

	s.AddTool(exportIcalTool, common.InstrumentedToolHandler("export_ical", instrumentation.OperationExport, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleExportIcal(ctx, request, sc)
		}))

	// Export JSON tool
	exportJSONTool := mcp.NewTool("export_json",
		mcp.WithDescription("Export a calendar's events as a JSON array, sorted by start time. The array uses the same event shape load_json accepts, so the export can be re-imported as-is."),
		mcp.WithString("calendar",
			mcp.Description("Calendar name (default: 'default')"),
		),
	)

	s.AddTool(exportJSONTool, common.InstrumentedToolHandler("export_json", instrumentation.OperationExport, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleExportJSON(ctx, request, sc)
		}))

	return nil
}

// handleExportIcal handles the export_ical tool
func handleExportIcal(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarName := common.GetCalendarFromArgs(args)

	events, err := sc.Store().Events(calendarName)
	if err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(ics.Export(calendar.CanonicalName(calendarName), events)), nil
}

// exportedEvent is the JSON shape of one event in an export_json result.
// It matches the load_json input shape so exports re-import unchanged; the
// extra id field is ignored on import (identity is minted per insertion).
type exportedEvent struct {
	ID       calendar.EventID  `json:"id"`
	Title    string            `json:"title"`
	Start    string            `json:"start"`
	End      string            `json:"end"`
	Timezone string            `json:"timezone"`
	RRule    string            `json:"rrule,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// handleExportJSON handles the export_json tool
func handleExportJSON(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarName := common.GetCalendarFromArgs(args)

	events, err := sc.Store().Events(calendarName)
	if err != nil {
		return toolError(err), nil
	}

	sortEventsForExport(events)

	// A bare array, not an envelope: the result must be valid load_json
	// input without any unwrapping.
	out := make([]exportedEvent, 0, len(events))
	for _, ev := range events {
		exported := exportedEvent{
			ID:       ev.ID,
			Title:    ev.Title,
			Start:    ev.Start.Format(timeFormatRFC3339),
			End:      ev.End.Format(timeFormatRFC3339),
			Timezone: ev.Timezone,
			Metadata: ev.Metadata,
		}
		if ev.Recurrence != nil {
			exported.RRule = ev.Recurrence.RRule
		}
		out = append(out, exported)
	}

	return jsonResult(out)
}
