package calendar

import (
	"time"

	"github.com/google/uuid"
)

// EventID identifies a stored event. IDs are minted when the event enters a
// calendar and are never derived from event content, so identical events
// always get distinct IDs.
type EventID string

// NewEventID mints a fresh EventID.
func NewEventID() EventID {
	return EventID(uuid.NewString())
}

// RecurrenceRule holds an RFC 5545 RRULE expression such as
// "FREQ=WEEKLY;BYDAY=MO,WE;COUNT=10". The rule is stored verbatim and only
// parsed when occurrences are expanded, so a malformed rule surfaces as
// ErrInvalidRrule at query time.
type RecurrenceRule struct {
	RRule string `json:"rrule"`
}

// Event is a stored calendar event. Start and End bound the first (or only)
// occurrence in UTC; Timezone is carried for display and never used in
// interval arithmetic.
type Event struct {
	ID         EventID
	Title      string
	Start      time.Time
	End        time.Time
	Timezone   string
	Recurrence *RecurrenceRule
	Metadata   map[string]string
}

// NewEvent validates the interval, fills defaults and mints an ID.
func NewEvent(title string, start, end time.Time, timezone string, recurrence *RecurrenceRule, metadata map[string]string) (Event, error) {
	if _, err := NewTimeRange(start, end); err != nil {
		return Event{}, err
	}
	if timezone == "" {
		timezone = "UTC"
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	return Event{
		ID:         NewEventID(),
		Title:      title,
		Start:      start.UTC(),
		End:        end.UTC(),
		Timezone:   timezone,
		Recurrence: recurrence,
		Metadata:   metadata,
	}, nil
}

// Range returns the event's own interval.
func (e Event) Range() TimeRange {
	return TimeRange{Start: e.Start, End: e.End}
}

// EventOccurrence is one materialized instance of an event within a query
// range. Occurrences are computed per query and never stored; a
// non-recurring event yields at most one, a recurring event one per rule hit.
type EventOccurrence struct {
	EventID     EventID           `json:"event_id"`
	Title       string            `json:"title"`
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	IsRecurring bool              `json:"is_recurring"`
	Metadata    map[string]string `json:"metadata"`
}

// Occurrence materializes the event's own interval as an occurrence.
func (e Event) Occurrence() EventOccurrence {
	return EventOccurrence{
		EventID:     e.ID,
		Title:       e.Title,
		Start:       e.Start,
		End:         e.End,
		IsRecurring: e.Recurrence != nil,
		Metadata:    e.Metadata,
	}
}

// Range returns the occurrence's interval.
func (o EventOccurrence) Range() TimeRange {
	return TimeRange{Start: o.Start, End: o.End}
}
