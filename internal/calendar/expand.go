package calendar

import (
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"
)

// MaxOccurrences caps a single recurrence expansion. Rules without COUNT or
// UNTIL recur forever; expansion stops silently at the cap instead of
// failing.
const MaxOccurrences = 1000

// expandEvent materializes the occurrences of ev that overlap bounds,
// including occurrences that only partially overlap. Recurring events are
// expanded lazily from the stored rule, each occurrence keeping the
// original event's duration. Occurrences scheduled before the event's own
// start are skipped.
func expandEvent(ev Event, bounds TimeRange) ([]EventOccurrence, error) {
	if ev.Recurrence == nil {
		if ev.Range().Overlaps(bounds) {
			return []EventOccurrence{ev.Occurrence()}, nil
		}
		return nil, nil
	}

	raw := strings.TrimPrefix(strings.TrimSpace(ev.Recurrence.RRule), "RRULE:")
	rule, err := rrule.StrToRRule(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRrule, ev.Recurrence.RRule, err)
	}
	rule.DTStart(ev.Start.UTC())

	duration := ev.End.Sub(ev.Start)
	next := rule.Iterator()

	var out []EventOccurrence
	for {
		start, ok := next()
		if !ok || !start.Before(bounds.End) {
			break
		}
		occ := TimeRange{Start: start.UTC(), End: start.UTC().Add(duration)}
		if start.Before(ev.Start) || !occ.Overlaps(bounds) {
			continue
		}
		out = append(out, EventOccurrence{
			EventID:     ev.ID,
			Title:       ev.Title,
			Start:       occ.Start,
			End:         occ.End,
			IsRecurring: true,
			Metadata:    ev.Metadata,
		})
		if len(out) >= MaxOccurrences {
			break
		}
	}
	return out, nil
}
