package calendar_tools

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jacob-meacham/tempo-mcp/internal/calendar"
)

// Accepted timestamp layouts: RFC 3339, or a naive local timestamp which is
// interpreted as UTC.
const (
	naiveLayout       = "2006-01-02T15:04:05"
	timeFormatRFC3339 = time.RFC3339
)

// sortEventsForExport orders events by start time, breaking ties by ID so
// export output is deterministic.
func sortEventsForExport(events []calendar.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Start.Equal(events[j].Start) {
			return events[i].ID < events[j].ID
		}
		return events[i].Start.Before(events[j].Start)
	})
}

// parseDateTime parses an RFC 3339 timestamp, falling back to a naive
// timestamp interpreted as UTC.
func parseDateTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(naiveLayout, raw, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse timestamp %q", calendar.ErrInvalidInput, raw)
}

// eventInput is the JSON shape accepted by load_json, add_event and the
// proposal tools.
type eventInput struct {
	Title    string            `json:"title"`
	Start    string            `json:"start"`
	End      string            `json:"end"`
	Timezone string            `json:"timezone,omitempty"`
	RRule    string            `json:"rrule,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (in eventInput) recurrence() *calendar.RecurrenceRule {
	if in.RRule == "" {
		return nil
	}
	return &calendar.RecurrenceRule{RRule: in.RRule}
}

func (in eventInput) toEvent() (calendar.Event, error) {
	start, end, err := in.interval()
	if err != nil {
		return calendar.Event{}, err
	}
	return calendar.NewEvent(in.Title, start, end, in.Timezone, in.recurrence(), in.Metadata)
}

func (in eventInput) toProposed() (calendar.ProposedEvent, error) {
	start, end, err := in.interval()
	if err != nil {
		return calendar.ProposedEvent{}, err
	}
	pe := calendar.ProposedEvent{
		Title:      in.Title,
		Start:      start.UTC(),
		End:        end.UTC(),
		Timezone:   in.Timezone,
		Recurrence: in.recurrence(),
		Metadata:   in.Metadata,
	}
	return pe, pe.Validate()
}

func (in eventInput) interval() (time.Time, time.Time, error) {
	start, err := parseDateTime(in.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDateTime(in.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// decodeEventInputs converts the raw "events" argument into typed inputs.
// The argument arrives as []interface{} from the JSON-RPC layer, so it is
// re-marshalled through encoding/json to get struct decoding for free.
func decodeEventInputs(raw interface{}) ([]eventInput, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: events is required", calendar.ErrInvalidInput)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: events is not valid JSON: %v", calendar.ErrInvalidInput, err)
	}
	var inputs []eventInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("%w: events must be an array of event objects: %v", calendar.ErrInvalidInput, err)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: events must not be empty", calendar.ErrInvalidInput)
	}
	return inputs, nil
}

// gcalDateTime mirrors the start/end object of the Google Calendar API
// events.list response: either dateTime (timed event) or date (all-day).
type gcalDateTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

func (g *gcalDateTime) resolve() (time.Time, error) {
	switch {
	case g == nil:
		return time.Time{}, fmt.Errorf("%w: missing start or end", calendar.ErrInvalidInput)
	case g.DateTime != "":
		return parseDateTime(g.DateTime)
	case g.Date != "":
		t, err := time.ParseInLocation("2006-01-02", g.Date, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: cannot parse date %q", calendar.ErrInvalidInput, g.Date)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("%w: empty start or end", calendar.ErrInvalidInput)
	}
}

// gcalEvent mirrors the subset of a Google Calendar API event resource that
// the engine can represent.
type gcalEvent struct {
	ID          string        `json:"id,omitempty"`
	Status      string        `json:"status,omitempty"`
	Summary     string        `json:"summary,omitempty"`
	Description string        `json:"description,omitempty"`
	Location    string        `json:"location,omitempty"`
	Start       *gcalDateTime `json:"start,omitempty"`
	End         *gcalDateTime `json:"end,omitempty"`
	Recurrence  []string      `json:"recurrence,omitempty"`
}

func (g gcalEvent) toEvent() (calendar.Event, error) {
	start, err := g.Start.resolve()
	if err != nil {
		return calendar.Event{}, err
	}
	end, err := g.End.resolve()
	if err != nil {
		return calendar.Event{}, err
	}

	title := g.Summary
	if title == "" {
		title = "Busy"
	}

	var recurrence *calendar.RecurrenceRule
	for _, line := range g.Recurrence {
		if strings.HasPrefix(line, "RRULE") {
			recurrence = &calendar.RecurrenceRule{RRule: line}
			break
		}
	}

	metadata := map[string]string{}
	if g.ID != "" {
		metadata["google_event_id"] = g.ID
	}
	if g.Description != "" {
		metadata["description"] = g.Description
	}
	if g.Location != "" {
		metadata["location"] = g.Location
	}

	timezone := ""
	if g.Start != nil {
		timezone = g.Start.TimeZone
	}

	return calendar.NewEvent(title, start, end, timezone, recurrence, metadata)
}

func decodeGcalEvents(raw interface{}) ([]gcalEvent, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: events is required", calendar.ErrInvalidInput)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: events is not valid JSON: %v", calendar.ErrInvalidInput, err)
	}
	var events []gcalEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("%w: events must be an array of Google Calendar event objects: %v", calendar.ErrInvalidInput, err)
	}
	return events, nil
}

// requireString extracts a required string argument.
func requireString(args map[string]interface{}, key string) (string, error) {
	val, ok := args[key].(string)
	if !ok || val == "" {
		return "", fmt.Errorf("%w: %s is required", calendar.ErrInvalidInput, key)
	}
	return val, nil
}

// parseRangeArgs extracts the required start/end query window.
func parseRangeArgs(args map[string]interface{}) (calendar.TimeRange, error) {
	startRaw, err := requireString(args, "start")
	if err != nil {
		return calendar.TimeRange{}, err
	}
	endRaw, err := requireString(args, "end")
	if err != nil {
		return calendar.TimeRange{}, err
	}
	start, err := parseDateTime(startRaw)
	if err != nil {
		return calendar.TimeRange{}, err
	}
	end, err := parseDateTime(endRaw)
	if err != nil {
		return calendar.TimeRange{}, err
	}
	return calendar.NewTimeRange(start, end)
}

// jsonResult serializes v as indented JSON into a text result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError maps engine errors onto the two tool-level error classes.
func toolError(err error) *mcp.CallToolResult {
	if calendar.IsNotFound(err) {
		return mcp.NewToolResultError("resource not found: " + err.Error())
	}
	return mcp.NewToolResultError("invalid parameters: " + err.Error())
}
