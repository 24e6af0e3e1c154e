package calendar

import (
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"
)

// Store owns every named calendar and every staged proposal for the
// process. It is the only concurrency boundary of the engine: read
// operations take shared access, mutations take exclusive access, and
// ProposeAndCommit runs as one exclusive critical section.
type Store struct {
	mu        sync.RWMutex
	calendars map[string]*Calendar
	proposals map[ProposalID]*Proposal
}

// NewStore creates a store holding the always-present default calendar.
func NewStore() *Store {
	s := &Store{
		calendars: make(map[string]*Calendar),
		proposals: make(map[ProposalID]*Proposal),
	}
	s.calendars[DefaultCalendar] = NewCalendar(DefaultCalendar)
	return s
}

// getOrCreate returns the calendar for name, creating it on first write.
// Callers must hold the write lock.
func (s *Store) getOrCreate(name string) *Calendar {
	key := CanonicalName(name)
	cal, ok := s.calendars[key]
	if !ok {
		cal = NewCalendar(key)
		s.calendars[key] = cal
	}
	return cal
}

// lookup resolves an existing calendar. Callers must hold at least the read
// lock.
func (s *Store) lookup(name string) (*Calendar, error) {
	cal, ok := s.calendars[CanonicalName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCalendarNotFound, name)
	}
	return cal, nil
}

// CalendarNames returns the canonical names of all calendars, sorted.
func (s *Store) CalendarNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.calendars))
	for name := range s.calendars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddEvent inserts ev into the named calendar, creating it on demand. The
// empty name targets the default calendar.
func (s *Store) AddEvent(name string, ev Event) EventID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreate(name).AddEvent(ev)
}

// AddEvents inserts a batch into the named calendar and returns the stored
// IDs in input order.
func (s *Store) AddEvents(name string, events []Event) []EventID {
	s.mu.Lock()
	defer s.mu.Unlock()
	cal := s.getOrCreate(name)
	ids := make([]EventID, 0, len(events))
	for _, ev := range events {
		ids = append(ids, cal.AddEvent(ev))
	}
	return ids
}

// RemoveEvent deletes one event from an existing calendar.
func (s *Store) RemoveEvent(name string, id EventID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cal, err := s.lookup(name)
	if err != nil {
		return err
	}
	return cal.RemoveEvent(id)
}

// ClearCalendar removes every event from an existing calendar and returns
// how many were removed. The calendar itself survives.
func (s *Store) ClearCalendar(name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cal, err := s.lookup(name)
	if err != nil {
		return 0, err
	}
	return cal.Clear(), nil
}

// Events returns a snapshot of an existing calendar's stored events.
func (s *Store) Events(name string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cal, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return cal.Events(), nil
}

// OccurrencesInRange expands events into the occurrences overlapping
// bounds. The empty name aggregates across every calendar; a non-empty name
// must resolve to an existing calendar.
func (s *Store) OccurrencesInRange(name string, bounds TimeRange) ([]EventOccurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.occurrencesLocked(name, bounds)
}

func (s *Store) occurrencesLocked(name string, bounds TimeRange) ([]EventOccurrence, error) {
	if name != "" {
		cal, err := s.lookup(name)
		if err != nil {
			return nil, err
		}
		return cal.OccurrencesInRange(bounds)
	}
	var all []EventOccurrence
	for _, cal := range s.calendars {
		occs, err := cal.OccurrencesInRange(bounds)
		if err != nil {
			return nil, err
		}
		all = append(all, occs...)
	}
	sortOccurrences(all)
	return all, nil
}

// FreeBusy sweeps the occurrences within bounds into merged busy periods
// and their free complement.
func (s *Store) FreeBusy(name string, bounds TimeRange) (FreeBusyResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	occs, err := s.occurrencesLocked(name, bounds)
	if err != nil {
		return FreeBusyResult{}, err
	}
	return ComputeFreeBusy(occs, bounds), nil
}

// FindAvailableSlots returns the free sub-ranges of bounds that still last
// at least minDuration after shrinking by buffer at both ends.
func (s *Store) FindAvailableSlots(name string, bounds TimeRange, minDuration, buffer time.Duration) ([]TimeRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	occs, err := s.occurrencesLocked(name, bounds)
	if err != nil {
		return nil, err
	}
	busy := make([]TimeRange, 0, len(occs))
	for _, occ := range occs {
		busy = append(busy, occ.Range())
	}
	return FindFreeSlots(busy, bounds, minDuration, buffer), nil
}

// Propose validates every candidate's interval and stages a new proposal.
func (s *Store) Propose(name string, events []ProposedEvent) (ProposalID, error) {
	for _, pe := range events {
		if err := pe.Validate(); err != nil {
			return "", err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proposeLocked(name, events), nil
}

func (s *Store) proposeLocked(name string, events []ProposedEvent) ProposalID {
	p := &Proposal{
		ID:        NewProposalID(),
		Name:      name,
		Events:    slices.Clone(events),
		CreatedAt: time.Now().UTC(),
	}
	s.proposals[p.ID] = p
	return p.ID
}

// Proposals returns a snapshot of all staged proposals ordered by creation
// time.
func (s *Store) Proposals() []Proposal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Proposal, 0, len(s.proposals))
	for _, p := range s.proposals {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Withdraw discards a staged proposal. No calendar is touched.
func (s *Store) Withdraw(id ProposalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[id]; !ok {
		return fmt.Errorf("%w: %s", ErrProposalNotFound, id)
	}
	delete(s.proposals, id)
	return nil
}

// CheckConflicts compares a proposal's candidates against the existing
// occurrences within the candidates' combined span. calendarName empty means
// check against every calendar. The proposal stays staged either way.
func (s *Store) CheckConflicts(id ProposalID, calendarName string, checkInternal bool) (ConflictReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkConflictsLocked(id, calendarName, checkInternal)
}

func (s *Store) checkConflictsLocked(id ProposalID, calendarName string, checkInternal bool) (ConflictReport, error) {
	p, ok := s.proposals[id]
	if !ok {
		return ConflictReport{}, fmt.Errorf("%w: %s", ErrProposalNotFound, id)
	}
	report := ConflictReport{ProposalID: id, Conflicts: []Conflict{}}
	bounds, ok := proposedBounds(p.Events)
	if !ok {
		return report, nil
	}
	existing, err := s.occurrencesLocked(calendarName, bounds)
	if err != nil {
		return ConflictReport{}, err
	}
	report.Conflicts = detectConflicts(p.Events, existing, checkInternal)
	report.HasConflicts = len(report.Conflicts) > 0
	return report, nil
}

// Commit materializes every candidate of the proposal into the target
// calendar, minting a fresh EventID per event, then discards the proposal.
// Conflicts are NOT re-checked here; callers who need atomicity between
// check and commit use ProposeAndCommit. All-or-nothing: if any candidate
// fails validation, nothing is inserted and the proposal stays staged.
func (s *Store) Commit(id ProposalID, calendarName string) ([]EventID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(id, calendarName)
}

func (s *Store) commitLocked(id ProposalID, calendarName string) ([]EventID, error) {
	p, ok := s.proposals[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProposalNotFound, id)
	}
	events := make([]Event, 0, len(p.Events))
	for _, pe := range p.Events {
		ev, err := NewEvent(pe.Title, pe.Start, pe.End, pe.Timezone, pe.Recurrence, pe.Metadata)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	cal := s.getOrCreate(calendarName)
	ids := make([]EventID, 0, len(events))
	for _, ev := range events {
		ids = append(ids, cal.AddEvent(ev))
	}
	delete(s.proposals, id)
	return ids, nil
}

// CommitResult is the outcome of ProposeAndCommit. Exactly one of EventIDs
// or Conflicts is populated.
type CommitResult struct {
	Committed bool
	EventIDs  []EventID
	Conflicts []Conflict
}

// ProposeAndCommit stages the candidates, checks them against the target
// calendar (internal conflicts included) and either commits or discards
// them, all under one exclusive lock. No intermediate state is observable
// and no proposal survives the call.
func (s *Store) ProposeAndCommit(name string, events []ProposedEvent, calendarName string) (CommitResult, error) {
	for _, pe := range events {
		if err := pe.Validate(); err != nil {
			return CommitResult{}, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// The target is created up front so the conflict check never fails on
	// a calendar that only exists after commit.
	s.getOrCreate(calendarName)
	id := s.proposeLocked(name, events)
	defer delete(s.proposals, id)

	report, err := s.checkConflictsLocked(id, CanonicalName(calendarName), true)
	if err != nil {
		return CommitResult{}, err
	}
	if report.HasConflicts {
		return CommitResult{Conflicts: report.Conflicts}, nil
	}
	ids, err := s.commitLocked(id, calendarName)
	if err != nil {
		return CommitResult{}, err
	}
	return CommitResult{Committed: true, EventIDs: ids}, nil
}

// Stats reports the store's current contents.
type Stats struct {
	Calendars int `json:"calendars"`
	Events    int `json:"events"`
	Proposals int `json:"proposals"`
}

// Stats counts calendars, stored events and staged proposals.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{Calendars: len(s.calendars), Proposals: len(s.proposals)}
	for _, cal := range s.calendars {
		st.Events += cal.Len()
	}
	return st
}
