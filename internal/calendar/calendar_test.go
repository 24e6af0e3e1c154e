package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, "default", CanonicalName(""))
	assert.Equal(t, "work", CanonicalName("Work"))
	assert.Equal(t, "work", CanonicalName("WORK"))
	assert.Equal(t, "work", CanonicalName("work"))
}

func TestCalendarAddRemove(t *testing.T) {
	cal := NewCalendar("work")
	ev := newEvent(t, "meeting", "2025-01-15T09:00:00Z", "2025-01-15T10:00:00Z", "")

	id := cal.AddEvent(ev)
	assert.Equal(t, ev.ID, id)
	assert.Equal(t, 1, cal.Len())

	require.NoError(t, cal.RemoveEvent(id))
	assert.Equal(t, 0, cal.Len())

	err := cal.RemoveEvent(id)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestCalendarRemoveUnknownLeavesEvents(t *testing.T) {
	cal := NewCalendar("work")
	cal.AddEvent(newEvent(t, "a", "2025-01-15T09:00:00Z", "2025-01-15T10:00:00Z", ""))

	err := cal.RemoveEvent("no-such-id")
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.Equal(t, 1, cal.Len())
}

func TestCalendarClear(t *testing.T) {
	cal := NewCalendar("work")
	cal.AddEvent(newEvent(t, "a", "2025-01-15T09:00:00Z", "2025-01-15T10:00:00Z", ""))
	cal.AddEvent(newEvent(t, "b", "2025-01-15T11:00:00Z", "2025-01-15T12:00:00Z", ""))

	assert.Equal(t, 2, cal.Clear())
	assert.Equal(t, 0, cal.Len())
	assert.Equal(t, 0, cal.Clear())
}

func TestOccurrencesSortedWithTieBreak(t *testing.T) {
	cal := NewCalendar("work")
	// Two events with identical bounds plus a later one.
	a := newEvent(t, "a", "2025-01-15T09:00:00Z", "2025-01-15T10:00:00Z", "")
	b := newEvent(t, "b", "2025-01-15T09:00:00Z", "2025-01-15T10:00:00Z", "")
	c := newEvent(t, "c", "2025-01-15T11:00:00Z", "2025-01-15T12:00:00Z", "")
	cal.AddEvent(a)
	cal.AddEvent(b)
	cal.AddEvent(c)

	occs, err := cal.OccurrencesInRange(mustRange(t, "2025-01-15T00:00:00Z", "2025-01-16T00:00:00Z"))
	require.NoError(t, err)
	require.Len(t, occs, 3)

	// Ties on start time order by EventID, so repeated queries agree.
	first, second := occs[0].EventID, occs[1].EventID
	assert.Less(t, string(first), string(second))
	assert.Equal(t, c.ID, occs[2].EventID)

	again, err := cal.OccurrencesInRange(mustRange(t, "2025-01-15T00:00:00Z", "2025-01-16T00:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, occs, again)
}

func TestDistinctIDsForIdenticalEvents(t *testing.T) {
	a := newEvent(t, "same", "2025-01-15T09:00:00Z", "2025-01-15T10:00:00Z", "")
	b := newEvent(t, "same", "2025-01-15T09:00:00Z", "2025-01-15T10:00:00Z", "")
	assert.NotEqual(t, a.ID, b.ID)
}
