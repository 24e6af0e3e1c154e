package calendar

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultCalendar is the calendar targeted by write operations that name no
// calendar. It always exists.
const DefaultCalendar = "default"

// CanonicalName case-folds a calendar name so lookups are case-insensitive.
// The empty name canonicalizes to the default calendar.
func CanonicalName(name string) string {
	if name == "" {
		return DefaultCalendar
	}
	return strings.ToLower(name)
}

// Calendar is one named collection of events keyed by EventID. Calendars are
// not safe for concurrent use on their own; the Store serializes access.
type Calendar struct {
	name   string
	events map[EventID]Event
}

// NewCalendar creates an empty calendar with the given canonical name.
func NewCalendar(name string) *Calendar {
	return &Calendar{name: name, events: make(map[EventID]Event)}
}

// Name returns the calendar's canonical name.
func (c *Calendar) Name() string {
	return c.name
}

// AddEvent stores ev and returns its ID.
func (c *Calendar) AddEvent(ev Event) EventID {
	c.events[ev.ID] = ev
	return ev.ID
}

// RemoveEvent deletes the event with the given ID.
func (c *Calendar) RemoveEvent(id EventID) error {
	if _, ok := c.events[id]; !ok {
		return fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	delete(c.events, id)
	return nil
}

// Events returns a snapshot of the stored events in unspecified order.
func (c *Calendar) Events() []Event {
	out := make([]Event, 0, len(c.events))
	for _, ev := range c.events {
		out = append(out, ev)
	}
	return out
}

// Len returns the number of stored events.
func (c *Calendar) Len() int {
	return len(c.events)
}

// Clear removes every event and returns how many were removed.
func (c *Calendar) Clear() int {
	n := len(c.events)
	c.events = make(map[EventID]Event)
	return n
}

// OccurrencesInRange expands every stored event and returns the occurrences
// overlapping bounds, sorted by start time with EventID breaking ties.
func (c *Calendar) OccurrencesInRange(bounds TimeRange) ([]EventOccurrence, error) {
	var out []EventOccurrence
	for _, ev := range c.events {
		occs, err := expandEvent(ev, bounds)
		if err != nil {
			return nil, err
		}
		out = append(out, occs...)
	}
	sortOccurrences(out)
	return out, nil
}

func sortOccurrences(occs []EventOccurrence) {
	sort.Slice(occs, func(i, j int) bool {
		if !occs[i].Start.Equal(occs[j].Start) {
			return occs[i].Start.Before(occs[j].Start)
		}
		return occs[i].EventID < occs[j].EventID
	})
}
