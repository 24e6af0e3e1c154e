package ics

import (
	ical "github.com/arran4/golang-ical"

	"github.com/jacob-meacham/tempo-mcp/internal/calendar"
)

// Export serializes stored events as an iCalendar document. Title, bounds
// and recurrence round-trip; metadata maps onto DESCRIPTION and LOCATION
// where those keys exist, other keys have no VEVENT representation.
func Export(name string, events []calendar.Event) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//tempo-mcp//calendar//EN")
	cal.SetXWRCalName(name)

	for _, ev := range events {
		ve := cal.AddEvent(string(ev.ID))
		ve.SetSummary(ev.Title)
		ve.SetStartAt(ev.Start.UTC())
		ve.SetEndAt(ev.End.UTC())
		if ev.Recurrence != nil {
			ve.SetProperty(ical.ComponentPropertyRrule, ev.Recurrence.RRule)
		}
		if v, ok := ev.Metadata["description"]; ok && v != "" {
			ve.SetProperty(ical.ComponentPropertyDescription, v)
		}
		if v, ok := ev.Metadata["location"]; ok && v != "" {
			ve.SetProperty(ical.ComponentPropertyLocation, v)
		}
	}
	return cal.Serialize()
}
