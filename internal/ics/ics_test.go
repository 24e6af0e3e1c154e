package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacob-meacham/tempo-mcp/internal/calendar"
)

const sampleICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:evt-1
DTSTART:20250115T090000Z
DTEND:20250115T100000Z
SUMMARY:Team Standup
LOCATION:Room 4
END:VEVENT
BEGIN:VEVENT
UID:evt-2
DTSTART:20250116T140000Z
DTEND:20250116T150000Z
SUMMARY:Design Review
RRULE:FREQ=WEEKLY;COUNT=4
END:VEVENT
END:VCALENDAR
`

func TestParse(t *testing.T) {
	events, err := Parse(sampleICS)
	require.NoError(t, err)
	require.Len(t, events, 2)

	standup := events[0]
	assert.Equal(t, "Team Standup", standup.Title)
	assert.True(t, standup.Start.Equal(time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)))
	assert.True(t, standup.End.Equal(time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)))
	assert.Nil(t, standup.Recurrence)
	assert.Equal(t, "Room 4", standup.Metadata["location"])

	review := events[1]
	require.NotNil(t, review.Recurrence)
	assert.Equal(t, "FREQ=WEEKLY;COUNT=4", review.Recurrence.RRule)
}

func TestParseMintsDistinctIDs(t *testing.T) {
	first, err := Parse(sampleICS)
	require.NoError(t, err)
	second, err := Parse(sampleICS)
	require.NoError(t, err)
	assert.NotEqual(t, first[0].ID, second[0].ID)
}

func TestParseMissingSummary(t *testing.T) {
	ics := `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:evt-1
DTSTART:20250115T090000Z
DTEND:20250115T100000Z
END:VEVENT
END:VCALENDAR
`
	events, err := Parse(ics)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, FallbackTitle, events[0].Title)
}

func TestParseMissingDtendDefaultsToOneHour(t *testing.T) {
	ics := `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:evt-1
DTSTART:20250115T090000Z
SUMMARY:Open Ended
END:VEVENT
END:VCALENDAR
`
	events, err := Parse(ics)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, time.Hour, events[0].End.Sub(events[0].Start))
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse("this is not an icalendar payload")
	assert.ErrorIs(t, err, calendar.ErrInvalidIcal)
}

func TestParseMissingDtstart(t *testing.T) {
	ics := `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:evt-1
SUMMARY:No Start
END:VEVENT
END:VCALENDAR
`
	_, err := Parse(ics)
	assert.ErrorIs(t, err, calendar.ErrInvalidIcal)
}

func TestExportRoundTrip(t *testing.T) {
	start := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	rec := &calendar.RecurrenceRule{RRule: "FREQ=DAILY;COUNT=3"}
	ev, err := calendar.NewEvent("Standup", start, start.Add(30*time.Minute), "UTC", rec, map[string]string{"location": "Room 4"})
	require.NoError(t, err)

	out := Export("work", []calendar.Event{ev})
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "SUMMARY:Standup")
	assert.Contains(t, out, "RRULE:FREQ=DAILY;COUNT=3")

	parsed, err := Parse(out)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	got := parsed[0]
	assert.Equal(t, "Standup", got.Title)
	assert.True(t, got.Start.Equal(ev.Start))
	assert.True(t, got.End.Equal(ev.End))
	require.NotNil(t, got.Recurrence)
	assert.Equal(t, "FREQ=DAILY;COUNT=3", got.Recurrence.RRule)
	assert.Equal(t, "Room 4", got.Metadata["location"])
	// Identity does not survive a round trip: IDs are re-minted on load.
	assert.NotEqual(t, ev.ID, got.ID)
}

func TestExportEmptyCalendar(t *testing.T) {
	out := Export("empty", nil)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "END:VCALENDAR")
	assert.False(t, strings.Contains(out, "BEGIN:VEVENT"))
}
