// Package calendar implements the in-memory scheduling engine: named
// calendars of events, recurrence expansion, free/busy computation, slot
// finding, and the proposal workflow for conflict-checked commits.
//
// All intervals are half-open [start, end): two events that merely touch at
// a boundary do not conflict. All times are stored in UTC; an event's
// Timezone field is display information only.
//
// The Store is the entry point. It owns every named calendar and every
// staged proposal and is safe for concurrent use:
//
//	store := calendar.NewStore()
//	ev, err := calendar.NewEvent("standup", start, end, "UTC", nil, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store.AddEvent("work", ev)
//
//	bounds, _ := calendar.NewTimeRange(dayStart, dayEnd)
//	result, err := store.FreeBusy("work", bounds)
package calendar
