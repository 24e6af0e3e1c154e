package calendar

import (
	"time"

	"github.com/google/uuid"
)

// ProposalID identifies a staged proposal. The identifier space is disjoint
// from EventID: a proposal ID never doubles as an event ID.
type ProposalID string

// NewProposalID mints a fresh ProposalID.
func NewProposalID() ProposalID {
	return ProposalID(uuid.NewString())
}

// ProposedEvent is a candidate event that belongs to no calendar and has no
// EventID yet. Committing mints fresh IDs for the copies that land in a
// calendar.
type ProposedEvent struct {
	Title      string
	Start      time.Time
	End        time.Time
	Timezone   string
	Recurrence *RecurrenceRule
	Metadata   map[string]string
}

// Validate checks the candidate's own interval.
func (pe ProposedEvent) Validate() error {
	_, err := NewTimeRange(pe.Start, pe.End)
	return err
}

// Range returns the candidate's interval.
func (pe ProposedEvent) Range() TimeRange {
	return TimeRange{Start: pe.Start, End: pe.End}
}

// Proposal is a staged, not-yet-committed batch of candidate events.
// Proposals never affect free/busy queries or conflict checks against other
// proposals.
type Proposal struct {
	ID        ProposalID
	Name      string
	Events    []ProposedEvent
	CreatedAt time.Time
}

// Conflict pairs one proposed event with one overlapping occurrence.
// ConflictingEventID is empty for internal conflicts, where two events of
// the same proposal overlap each other.
type Conflict struct {
	ProposedEventTitle    string    `json:"proposed_event_title"`
	ProposedStart         time.Time `json:"proposed_start"`
	ProposedEnd           time.Time `json:"proposed_end"`
	ConflictingEventID    EventID   `json:"conflicting_event_id,omitempty"`
	ConflictingEventTitle string    `json:"conflicting_event_title"`
	ConflictingStart      time.Time `json:"conflicting_start"`
	ConflictingEnd        time.Time `json:"conflicting_end"`
	OverlapMinutes        int64     `json:"overlap_minutes"`
}

// ConflictReport is the read-only result of checking a proposal. Checking
// never mutates the proposal or any calendar.
type ConflictReport struct {
	ProposalID   ProposalID `json:"proposal_id"`
	HasConflicts bool       `json:"has_conflicts"`
	Conflicts    []Conflict `json:"conflicts"`
}

// detectConflicts compares every proposed event against every existing
// occurrence and, when checkInternal is set, every pair of proposed events
// against each other. Overlaps shorter than a full minute are not reported.
func detectConflicts(proposed []ProposedEvent, existing []EventOccurrence, checkInternal bool) []Conflict {
	conflicts := []Conflict{}
	for _, pe := range proposed {
		for _, occ := range existing {
			overlap := pe.Range().OverlapDuration(occ.Range())
			if minutes := int64(overlap / time.Minute); minutes > 0 {
				conflicts = append(conflicts, Conflict{
					ProposedEventTitle:    pe.Title,
					ProposedStart:         pe.Start,
					ProposedEnd:           pe.End,
					ConflictingEventID:    occ.EventID,
					ConflictingEventTitle: occ.Title,
					ConflictingStart:      occ.Start,
					ConflictingEnd:        occ.End,
					OverlapMinutes:        minutes,
				})
			}
		}
	}
	if checkInternal {
		for i := 0; i < len(proposed); i++ {
			for j := i + 1; j < len(proposed); j++ {
				overlap := proposed[i].Range().OverlapDuration(proposed[j].Range())
				if minutes := int64(overlap / time.Minute); minutes > 0 {
					conflicts = append(conflicts, Conflict{
						ProposedEventTitle:    proposed[i].Title,
						ProposedStart:         proposed[i].Start,
						ProposedEnd:           proposed[i].End,
						ConflictingEventTitle: proposed[j].Title,
						ConflictingStart:      proposed[j].Start,
						ConflictingEnd:        proposed[j].End,
						OverlapMinutes:        minutes,
					})
				}
			}
		}
	}
	return conflicts
}

// proposedBounds returns the interval spanning the earliest start and latest
// end across the candidates, or false for an empty batch.
func proposedBounds(events []ProposedEvent) (TimeRange, bool) {
	if len(events) == 0 {
		return TimeRange{}, false
	}
	bounds := events[0].Range()
	for _, pe := range events[1:] {
		bounds.Start = minTime(bounds.Start, pe.Start)
		bounds.End = maxTime(bounds.End, pe.End)
	}
	return bounds, true
}
