package calendar_tools

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jacob-meacham/tempo-mcp/internal/server"
)

// newTestContext creates a server context backed by a fresh in-memory store
func newTestContext(t *testing.T) *server.ServerContext {
	t.Helper()
	sc := server.NewServerContext(context.Background())
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// resultText extracts the text payload of a tool result
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("nil result")
	}
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return text.Text
}

// decodeResult unmarshals a JSON tool result into a generic map
func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	return out
}

func requireToolError(t *testing.T, result *mcp.CallToolResult, wantPrefix string) {
	t.Helper()
	if result == nil || !result.IsError {
		t.Fatal("expected tool error result")
	}
	if text := resultText(t, result); !strings.HasPrefix(text, wantPrefix) {
		t.Errorf("expected error prefix %q, got %q", wantPrefix, text)
	}
}

// loadEvents seeds the store through the load_json handler
func loadEvents(t *testing.T, sc *server.ServerContext, calendarName string, events []interface{}) {
	t.Helper()
	args := map[string]interface{}{"events": events}
	if calendarName != "" {
		args["calendar"] = calendarName
	}
	result, err := handleLoadJSON(context.Background(), callRequest("load_json", args), sc)
	if err != nil {
		t.Fatalf("handleLoadJSON returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("handleLoadJSON failed: %s", resultText(t, result))
	}
}

func jsonEvent(title, start, end string) map[string]interface{} {
	return map[string]interface{}{
		"title": title,
		"start": start,
		"end":   end,
	}
}

func TestRegisterCalendarTools(t *testing.T) {
	sc := newTestContext(t)
	mcpSrv := mcpserver.NewMCPServer("test-server", "1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	if err := RegisterCalendarTools(mcpSrv, sc); err != nil {
		t.Fatalf("RegisterCalendarTools returned error: %v", err)
	}
}

func TestHandleLoadJSON(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleLoadJSON(context.Background(), callRequest("load_json", map[string]interface{}{
		"calendar": "Work",
		"events": []interface{}{
			jsonEvent("Standup", "2025-03-03T09:00:00Z", "2025-03-03T09:15:00Z"),
			jsonEvent("Review", "2025-03-03T10:00:00Z", "2025-03-03T11:00:00Z"),
		},
	}), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	out := decodeResult(t, result)
	if out["calendar"] != "work" {
		t.Errorf("calendar = %v, want canonical lowercase", out["calendar"])
	}
	if out["events_loaded"] != float64(2) {
		t.Errorf("events_loaded = %v", out["events_loaded"])
	}
	if ids := out["event_ids"].([]interface{}); len(ids) != 2 {
		t.Errorf("expected 2 event IDs, got %v", ids)
	}
}

func TestHandleLoadJSONRejectsBadBatch(t *testing.T) {
	sc := newTestContext(t)

	// One invalid event fails the whole batch.
	result, err := handleLoadJSON(context.Background(), callRequest("load_json", map[string]interface{}{
		"events": []interface{}{
			jsonEvent("Good", "2025-03-03T09:00:00Z", "2025-03-03T10:00:00Z"),
			jsonEvent("Bad", "2025-03-03T11:00:00Z", "2025-03-03T11:00:00Z"),
		},
	}), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	requireToolError(t, result, "invalid parameters")

	// Nothing was inserted.
	listResult, err := handleListEvents(context.Background(), callRequest("list_events", map[string]interface{}{
		"start": "2025-03-03T00:00:00Z",
		"end":   "2025-03-04T00:00:00Z",
	}), sc)
	if err != nil {
		t.Fatalf("list handler returned error: %v", err)
	}
	if out := decodeResult(t, listResult); out["count"] != float64(0) {
		t.Errorf("expected empty store after rejected batch, got %v", out["count"])
	}
}

func TestHandleLoadJSONMissingEvents(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleLoadJSON(context.Background(), callRequest("load_json", map[string]interface{}{}), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	requireToolError(t, result, "invalid parameters")
}

func TestHandleLoadIcal(t *testing.T) {
	sc := newTestContext(t)

	icalData := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:ev1@test",
		"SUMMARY:Team Sync",
		"DTSTART:20250303T090000Z",
		"DTEND:20250303T093000Z",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n")

	result, err := handleLoadIcal(context.Background(), callRequest("load_ical", map[string]interface{}{
		"ical_data": icalData,
	}), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	out := decodeResult(t, result)
	if out["events_loaded"] != float64(1) {
		t.Errorf("events_loaded = %v", out["events_loaded"])
	}
	if out["calendar"] != "default" {
		t.Errorf("calendar = %v", out["calendar"])
	}
}

func TestHandleLoadIcalMalformed(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleLoadIcal(context.Background(), callRequest("load_ical", map[string]interface{}{
		"ical_data": "this is not an iCalendar payload",
	}), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	requireToolError(t, result, "invalid parameters")
}

func TestHandleLoadGoogleCalendarSkipsMalformed(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleLoadGoogleCalendar(context.Background(), callRequest("load_google_calendar", map[string]interface{}{
		"events": []interface{}{
			map[string]interface{}{
				"id":      "g1",
				"summary": "1:1",
				"start":   map[string]interface{}{"dateTime": "2025-03-03T09:00:00Z"},
				"end":     map[string]interface{}{"dateTime": "2025-03-03T09:30:00Z"},
			},
			map[string]interface{}{
				"id":      "g2",
				"summary": "Cancelled sync",
				"status":  "cancelled",
				"start":   map[string]interface{}{"dateTime": "2025-03-03T10:00:00Z"},
				"end":     map[string]interface{}{"dateTime": "2025-03-03T10:30:00Z"},
			},
			map[string]interface{}{
				"id":      "g3",
				"summary": "No start",
				"end":     map[string]interface{}{"dateTime": "2025-03-03T11:00:00Z"},
			},
		},
	}), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	out := decodeResult(t, result)
	if out["events_loaded"] != float64(1) {
		t.Errorf("events_loaded = %v", out["events_loaded"])
	}
	if out["events_skipped"] != float64(2) {
		t.Errorf("events_skipped = %v", out["events_skipped"])
	}
}

func TestHandleListEvents(t *testing.T) {
	sc := newTestContext(t)
	loadEvents(t, sc, "work", []interface{}{
		jsonEvent("Standup", "2025-03-03T09:00:00Z", "2025-03-03T09:15:00Z"),
		jsonEvent("Review", "2025-03-03T10:00:00Z", "2025-03-03T11:00:00Z"),
	})

	result, err := handleListEvents(context.Background(), callRequest("list_events", map[string]interface{}{
		"start":    "2025-03-03T00:00:00Z",
		"end":      "2025-03-04T00:00:00Z",
		"calendar": "work",
	}), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	out := decodeResult(t, result)
	if out["count"] != float64(2) {
		t.Errorf("count = %v", out["count"])
	}
	events := out["events"].([]interface{})
	first := events[0].(map[string]interface{})
	if first["title"] != "Standup" {
		t.Errorf("expected occurrences sorted by start, first = %v", first["title"])
	}
}

func TestHandleListEventsExpandsRecurrence(t *testing.T) {
	sc := newTestContext(t)
	loadEvents(t, sc, "", []interface{}{
		map[string]interface{}{
			"title": "Daily standup",
			"start": "2025-03-03T09:00:00Z",
			"end":   "2025-03-03T09:15:00Z",
			"rrule": "FREQ=DAILY;COUNT=5",
		},
	})

	result, err := handleListEvents(context.Background(), callRequest("list_events", map[string]interface{}{
		"start": "2025-03-03T00:00:00Z",
		"end":   "2025-03-10T00:00:00Z",
	}), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	out := decodeResult(t, result)
	if out["count"] != float64(5) {
		t.Errorf("count = %v, want 5 expanded occurrences", out["count"])
	}
}

func TestHandleListEventsUnknownCalendar(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleListEvents(context.Background(), callRequest("list_events", map[string]interface{}{
		"start":    "2025-03-03T00:00:00Z",
		"end":      "2025-03-04T00:00:00Z",
		"calendar": "nope",
	}), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	requireToolError(t, result, "resource not found")
}

func TestHandleGetFreeBusy(t *testing.T) {
	sc := newTestContext(t)
	loadEvents(t, sc, "", []interface{}{
		jsonEvent("Meeting", "2025-03-03T09:00:00Z", "2025-03-03T10:00:00Z"),
	})

	result, err := handleGetFreeBusy(context.Background(), callRequest("get_free_busy", map[string]interface{}{
		"start": "2025-03-03T08:00:00Z",
		"end":   "2025-03-03T12:00:00Z",
	}), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	out := decodeResult(t, result)
	if out["total_busy_minutes"] != float64(60) {
		t.Errorf("total_busy_minutes = %v", out["total_busy_minutes"])
	}
	if out["total_free_minutes"] != float64(180) {
		t.Errorf("total_free_minutes = %v", out["total_free_minutes"])
	}
}

func TestHandleFindAvailableSlots(t *testing.T) {
	sc := newTestContext(t)
	loadEvents(t, sc, "", []interface{}{
		jsonEvent("Morning block", "2025-03-03T09:00:00Z", "2025-03-03T10:00:00Z"),
	})

	result, err := handleFindAvailableSlots(context.Background(), callRequest("find_available_slots", map[string]interface{}{
		"start":            "2025-03-03T09:00:00Z",
		"end":              "2025-03-03T17:00:00Z",
		"duration_minutes": float64(60),
	}), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	out := decodeResult(t, result)
	if out["count"] != float64(1) {
		t.Errorf("count = %v", out["count"])
	}
}

func TestHandleFindAvailableSlotsValidation(t *testing.T) {
	sc := newTestContext(t)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{
			name: "missing duration",
			args: map[string]interface{}{
				"start": "2025-03-03T09:00:00Z",
				"end":   "2025-03-03T17:00:00Z",
			},
		},
		{
			name: "zero duration",
			args: map[string]interface{}{
				"start":            "2025-03-03T09:00:00Z",
				"end":              "2025-03-03T17:00:00Z",
				"duration_minutes": float64(0),
			},
		},
		{
			name: "negative buffer",
			args: map[string]interface{}{
				"start":            "2025-03-03T09:00:00Z",
				"end":              "2025-03-03T17:00:00Z",
				"duration_minutes": float64(30),
				"buffer_minutes":   float64(-5),
			},
		},
		{
			name: "inverted range",
			args: map[string]interface{}{
				"start":            "2025-03-03T17:00:00Z",
				"end":              "2025-03-03T09:00:00Z",
				"duration_minutes": float64(30),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleFindAvailableSlots(context.Background(), callRequest("find_available_slots", tt.args), sc)
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			requireToolError(t, result, "invalid parameters")
		})
	}
}

func TestProposalWorkflow(t *testing.T) {
	sc := newTestContext(t)
	ctx := context.Background()

	// Stage a proposal.
	proposeResult, err := handleProposeEvents(ctx, callRequest("propose_events", map[string]interface{}{
		"name": "Sprint planning",
		"events": []interface{}{
			jsonEvent("Planning", "2025-03-04T09:00:00Z", "2025-03-04T10:00:00Z"),
		},
	}), sc)
	if err != nil {
		t.Fatalf("propose handler returned error: %v", err)
	}
	proposalID := decodeResult(t, proposeResult)["proposal_id"].(string)
	if proposalID == "" {
		t.Fatal("expected a proposal ID")
	}

	// It shows up in the listing.
	listResult, err := handleListProposals(ctx, callRequest("list_proposals", nil), sc)
	if err != nil {
		t.Fatalf("list handler returned error: %v", err)
	}
	if out := decodeResult(t, listResult); out["count"] != float64(1) {
		t.Errorf("proposal count = %v", out["count"])
	}

	// No conflicts against an empty calendar.
	checkResult, err := handleCheckConflicts(ctx, callRequest("check_conflicts", map[string]interface{}{
		"proposal_id": proposalID,
	}), sc)
	if err != nil {
		t.Fatalf("check handler returned error: %v", err)
	}
	if out := decodeResult(t, checkResult); out["has_conflicts"] != false {
		t.Errorf("has_conflicts = %v", out["has_conflicts"])
	}

	// Commit lands the events and consumes the proposal.
	commitResult, err := handleCommitProposal(ctx, callRequest("commit_proposal", map[string]interface{}{
		"proposal_id": proposalID,
	}), sc)
	if err != nil {
		t.Fatalf("commit handler returned error: %v", err)
	}
	out := decodeResult(t, commitResult)
	if out["event_count"] != float64(1) {
		t.Errorf("event_count = %v", out["event_count"])
	}

	listResult, err = handleListProposals(ctx, callRequest("list_proposals", nil), sc)
	if err != nil {
		t.Fatalf("list handler returned error: %v", err)
	}
	if out := decodeResult(t, listResult); out["count"] != float64(0) {
		t.Errorf("proposal count after commit = %v", out["count"])
	}

	// The committed event is visible to queries.
	eventsResult, err := handleListEvents(ctx, callRequest("list_events", map[string]interface{}{
		"start": "2025-03-04T00:00:00Z",
		"end":   "2025-03-05T00:00:00Z",
	}), sc)
	if err != nil {
		t.Fatalf("events handler returned error: %v", err)
	}
	if out := decodeResult(t, eventsResult); out["count"] != float64(1) {
		t.Errorf("committed event count = %v", out["count"])
	}
}

func TestHandleCheckConflictsReportsOverlap(t *testing.T) {
	sc := newTestContext(t)
	ctx := context.Background()
	loadEvents(t, sc, "", []interface{}{
		jsonEvent("Existing", "2025-03-04T09:00:00Z", "2025-03-04T10:00:00Z"),
	})

	proposeResult, err := handleProposeEvents(ctx, callRequest("propose_events", map[string]interface{}{
		"name": "Clashing",
		"events": []interface{}{
			jsonEvent("Overlap", "2025-03-04T09:30:00Z", "2025-03-04T10:30:00Z"),
		},
	}), sc)
	if err != nil {
		t.Fatalf("propose handler returned error: %v", err)
	}
	proposalID := decodeResult(t, proposeResult)["proposal_id"].(string)

	checkResult, err := handleCheckConflicts(ctx, callRequest("check_conflicts", map[string]interface{}{
		"proposal_id": proposalID,
	}), sc)
	if err != nil {
		t.Fatalf("check handler returned error: %v", err)
	}

	out := decodeResult(t, checkResult)
	if out["has_conflicts"] != true {
		t.Fatalf("has_conflicts = %v", out["has_conflicts"])
	}
	conflicts := out["conflicts"].([]interface{})
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	conflict := conflicts[0].(map[string]interface{})
	if conflict["overlap_minutes"] != float64(30) {
		t.Errorf("overlap_minutes = %v", conflict["overlap_minutes"])
	}

	// Checking is read-only: the proposal is still staged.
	listResult, err := handleListProposals(ctx, callRequest("list_proposals", nil), sc)
	if err != nil {
		t.Fatalf("list handler returned error: %v", err)
	}
	if out := decodeResult(t, listResult); out["count"] != float64(1) {
		t.Errorf("proposal count = %v", out["count"])
	}
}

func TestHandleWithdrawProposal(t *testing.T) {
	sc := newTestContext(t)
	ctx := context.Background()

	proposeResult, err := handleProposeEvents(ctx, callRequest("propose_events", map[string]interface{}{
		"name": "Tentative",
		"events": []interface{}{
			jsonEvent("Maybe", "2025-03-04T09:00:00Z", "2025-03-04T10:00:00Z"),
		},
	}), sc)
	if err != nil {
		t.Fatalf("propose handler returned error: %v", err)
	}
	proposalID := decodeResult(t, proposeResult)["proposal_id"].(string)

	withdrawResult, err := handleWithdrawProposal(ctx, callRequest("withdraw_proposal", map[string]interface{}{
		"proposal_id": proposalID,
	}), sc)
	if err != nil {
		t.Fatalf("withdraw handler returned error: %v", err)
	}
	if out := decodeResult(t, withdrawResult); out["withdrawn"] != true {
		t.Errorf("withdrawn = %v", out["withdrawn"])
	}

	// Withdrawing again is a not-found error.
	again, err := handleWithdrawProposal(ctx, callRequest("withdraw_proposal", map[string]interface{}{
		"proposal_id": proposalID,
	}), sc)
	if err != nil {
		t.Fatalf("withdraw handler returned error: %v", err)
	}
	requireToolError(t, again, "resource not found")
}

func TestHandleCommitUnknownProposal(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleCommitProposal(context.Background(), callRequest("commit_proposal", map[string]interface{}{
		"proposal_id": "no-such-proposal",
	}), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	requireToolError(t, result, "resource not found")
}

func TestHandleProposeAndCommit(t *testing.T) {
	sc := newTestContext(t)
	ctx := context.Background()

	result, err := handleProposeAndCommit(ctx, callRequest("propose_and_commit", map[string]interface{}{
		"name":     "Offsite",
		"calendar": "team",
		"events": []interface{}{
			jsonEvent("Offsite day", "2025-03-05T09:00:00Z", "2025-03-05T17:00:00Z"),
		},
	}), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	out := decodeResult(t, result)
	if out["committed"] != true {
		t.Fatalf("committed = %v", out["committed"])
	}
	if out["event_count"] != float64(1) {
		t.Errorf("event_count = %v", out["event_count"])
	}

	// No staged proposal is left behind.
	listResult, err := handleListProposals(ctx, callRequest("list_proposals", nil), sc)
	if err != nil {
		t.Fatalf("list handler returned error: %v", err)
	}
	if out := decodeResult(t, listResult); out["count"] != float64(0) {
		t.Errorf("proposal count = %v", out["count"])
	}
}

func TestHandleProposeAndCommitConflict(t *testing.T) {
	sc := newTestContext(t)
	ctx := context.Background()
	loadEvents(t, sc, "", []interface{}{
		jsonEvent("Existing", "2025-03-05T09:00:00Z", "2025-03-05T10:00:00Z"),
	})

	result, err := handleProposeAndCommit(ctx, callRequest("propose_and_commit", map[string]interface{}{
		"name": "Clashing",
		"events": []interface{}{
			jsonEvent("Overlap", "2025-03-05T09:30:00Z", "2025-03-05T10:30:00Z"),
		},
	}), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	out := decodeResult(t, result)
	if out["committed"] != false {
		t.Fatalf("committed = %v", out["committed"])
	}
	if conflicts := out["conflicts"].([]interface{}); len(conflicts) != 1 {
		t.Errorf("expected 1 conflict, got %v", conflicts)
	}

	// Nothing landed in the calendar.
	eventsResult, err := handleListEvents(ctx, callRequest("list_events", map[string]interface{}{
		"start": "2025-03-05T00:00:00Z",
		"end":   "2025-03-06T00:00:00Z",
	}), sc)
	if err != nil {
		t.Fatalf("events handler returned error: %v", err)
	}
	if out := decodeResult(t, eventsResult); out["count"] != float64(1) {
		t.Errorf("expected only the pre-existing event, got count = %v", out["count"])
	}
}

func TestHandleAddAndRemoveEvent(t *testing.T) {
	sc := newTestContext(t)
	ctx := context.Background()

	addResult, err := handleAddEvent(ctx, callRequest("add_event", map[string]interface{}{
		"title":    "Dentist",
		"start":    "2025-03-06T14:00:00Z",
		"end":      "2025-03-06T15:00:00Z",
		"timezone": "Europe/Berlin",
		"metadata": map[string]interface{}{"location": "downtown"},
	}), sc)
	if err != nil {
		t.Fatalf("add handler returned error: %v", err)
	}
	eventID := decodeResult(t, addResult)["event_id"].(string)
	if eventID == "" {
		t.Fatal("expected an event ID")
	}

	removeResult, err := handleRemoveEvent(ctx, callRequest("remove_event", map[string]interface{}{
		"event_id": eventID,
	}), sc)
	if err != nil {
		t.Fatalf("remove handler returned error: %v", err)
	}
	if out := decodeResult(t, removeResult); out["removed"] != true {
		t.Errorf("removed = %v", out["removed"])
	}

	// Removing again is a not-found error.
	again, err := handleRemoveEvent(ctx, callRequest("remove_event", map[string]interface{}{
		"event_id": eventID,
	}), sc)
	if err != nil {
		t.Fatalf("remove handler returned error: %v", err)
	}
	requireToolError(t, again, "resource not found")
}

func TestHandleAddEventInvalidInterval(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleAddEvent(context.Background(), callRequest("add_event", map[string]interface{}{
		"title": "Zero width",
		"start": "2025-03-06T14:00:00Z",
		"end":   "2025-03-06T14:00:00Z",
	}), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	requireToolError(t, result, "invalid parameters")
}

func TestHandleClearCalendar(t *testing.T) {
	sc := newTestContext(t)
	ctx := context.Background()
	loadEvents(t, sc, "work", []interface{}{
		jsonEvent("One", "2025-03-03T09:00:00Z", "2025-03-03T10:00:00Z"),
		jsonEvent("Two", "2025-03-03T11:00:00Z", "2025-03-03T12:00:00Z"),
	})

	result, err := handleClearCalendar(ctx, callRequest("clear_calendar", map[string]interface{}{
		"calendar": "work",
	}), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	out := decodeResult(t, result)
	if out["events_removed"] != float64(2) {
		t.Errorf("events_removed = %v", out["events_removed"])
	}

	// Unknown calendars cannot be cleared.
	unknown, err := handleClearCalendar(ctx, callRequest("clear_calendar", map[string]interface{}{
		"calendar": "nope",
	}), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	requireToolError(t, unknown, "resource not found")
}

func TestHandleExportIcal(t *testing.T) {
	sc := newTestContext(t)
	loadEvents(t, sc, "", []interface{}{
		jsonEvent("Exported meeting", "2025-03-03T09:00:00Z", "2025-03-03T10:00:00Z"),
	})

	result, err := handleExportIcal(context.Background(), callRequest("export_ical", nil), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	text := resultText(t, result)
	if !strings.Contains(text, "BEGIN:VCALENDAR") {
		t.Error("expected VCALENDAR envelope")
	}
	if !strings.Contains(text, "Exported meeting") {
		t.Error("expected event summary in export")
	}
}

// decodeExportedEvents unmarshals an export_json result, which is a bare
// array in the load_json input shape
func decodeExportedEvents(t *testing.T, result *mcp.CallToolResult) []map[string]interface{} {
	t.Helper()
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	var out []map[string]interface{}
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("export is not a JSON array: %v", err)
	}
	return out
}

func TestHandleExportJSONSorted(t *testing.T) {
	sc := newTestContext(t)
	loadEvents(t, sc, "", []interface{}{
		jsonEvent("Later", "2025-03-03T15:00:00Z", "2025-03-03T16:00:00Z"),
		jsonEvent("Earlier", "2025-03-03T09:00:00Z", "2025-03-03T10:00:00Z"),
	})

	result, err := handleExportJSON(context.Background(), callRequest("export_json", nil), sc)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	events := decodeExportedEvents(t, result)
	if len(events) != 2 {
		t.Fatalf("expected 2 exported events, got %d", len(events))
	}
	if events[0]["title"] != "Earlier" || events[1]["title"] != "Later" {
		t.Errorf("expected export sorted by start, got %v then %v", events[0]["title"], events[1]["title"])
	}
}

func TestHandleExportJSONRoundTrip(t *testing.T) {
	sc := newTestContext(t)
	loadEvents(t, sc, "", []interface{}{
		map[string]interface{}{
			"title":    "Standup",
			"start":    "2025-03-03T09:00:00Z",
			"end":      "2025-03-03T09:15:00Z",
			"rrule":    "FREQ=DAILY;COUNT=5",
			"metadata": map[string]interface{}{"room": "4a"},
		},
		jsonEvent("Review", "2025-03-03T10:00:00Z", "2025-03-03T11:00:00Z"),
	})

	exportResult, err := handleExportJSON(context.Background(), callRequest("export_json", nil), sc)
	if err != nil {
		t.Fatalf("export handler returned error: %v", err)
	}
	exported := decodeExportedEvents(t, exportResult)

	// The export feeds straight back into load_json on a fresh store.
	reimport := make([]interface{}, 0, len(exported))
	for _, ev := range exported {
		reimport = append(reimport, ev)
	}
	sc2 := newTestContext(t)
	loadEvents(t, sc2, "", reimport)

	reexportResult, err := handleExportJSON(context.Background(), callRequest("export_json", nil), sc2)
	if err != nil {
		t.Fatalf("re-export handler returned error: %v", err)
	}
	reexported := decodeExportedEvents(t, reexportResult)

	if len(reexported) != len(exported) {
		t.Fatalf("re-export has %d events, want %d", len(reexported), len(exported))
	}
	for i := range exported {
		// Identity is minted per insertion, so IDs differ; everything
		// else must survive the round trip.
		for _, key := range []string{"title", "start", "end", "timezone", "rrule"} {
			if !reflect.DeepEqual(reexported[i][key], exported[i][key]) {
				t.Errorf("event %d %s = %v, want %v", i, key, reexported[i][key], exported[i][key])
			}
		}
		if !reflect.DeepEqual(reexported[i]["metadata"], exported[i]["metadata"]) {
			t.Errorf("event %d metadata = %v, want %v", i, reexported[i]["metadata"], exported[i]["metadata"])
		}
		if reexported[i]["id"] == exported[i]["id"] {
			t.Errorf("event %d kept its id across re-import; identity must be re-minted", i)
		}
	}
}
