package ics

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/jacob-meacham/tempo-mcp/internal/calendar"
)

// FallbackTitle is used for a VEVENT without a SUMMARY.
const FallbackTitle = "(untitled)"

// Parse converts an iCalendar payload into domain events. Every VEVENT must
// carry a parseable DTSTART; a VEVENT without DTEND gets a one-hour default
// duration.
func Parse(data string) ([]calendar.Event, error) {
	cal, err := ical.ParseCalendar(strings.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", calendar.ErrInvalidIcal, err)
	}

	var events []calendar.Event
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(ve)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (calendar.Event, error) {
	title := FallbackTitle
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil && p.Value != "" {
		title = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		// All-day events carry VALUE=DATE and need the date accessor.
		start, err = ve.GetAllDayStartAt()
		if err != nil {
			return calendar.Event{}, fmt.Errorf("%w: event %q: missing or malformed DTSTART", calendar.ErrInvalidIcal, title)
		}
	}

	end, err := ve.GetEndAt()
	if err != nil {
		if allDayEnd, adErr := ve.GetAllDayEndAt(); adErr == nil {
			end = allDayEnd
		} else {
			end = start.Add(time.Hour)
		}
	}

	var recurrence *calendar.RecurrenceRule
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil && p.Value != "" {
		recurrence = &calendar.RecurrenceRule{RRule: p.Value}
	}

	metadata := map[string]string{}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil && p.Value != "" {
		metadata["description"] = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil && p.Value != "" {
		metadata["location"] = p.Value
	}

	ev, err := calendar.NewEvent(title, start.UTC(), end.UTC(), "UTC", recurrence, metadata)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("%w: event %q: %v", calendar.ErrInvalidIcal, title, err)
	}
	return ev, nil
}
