package calendar

import (
	"slices"
	"sort"
	"time"
)

// BusyPeriod is one merged span of busy time together with the titles of the
// events covering it.
type BusyPeriod struct {
	Range       TimeRange `json:"range"`
	EventTitles []string  `json:"event_titles"`
}

// FreeBusyResult partitions a query range into busy and free periods. Busy
// and free minutes always sum to the range's total minutes.
type FreeBusyResult struct {
	BusyPeriods      []BusyPeriod `json:"busy_periods"`
	FreePeriods      []TimeRange  `json:"free_periods"`
	TotalBusyMinutes int64        `json:"total_busy_minutes"`
	TotalFreeMinutes int64        `json:"total_free_minutes"`
}

// ComputeFreeBusy clips the occurrences to bounds, merges overlapping or
// touching spans into minimal busy periods, and derives the free periods as
// the complement within bounds.
func ComputeFreeBusy(occurrences []EventOccurrence, bounds TimeRange) FreeBusyResult {
	type clipped struct {
		r     TimeRange
		title string
	}
	var clips []clipped
	for _, occ := range occurrences {
		if !occ.Range().Overlaps(bounds) {
			continue
		}
		clips = append(clips, clipped{
			r: TimeRange{
				Start: maxTime(occ.Start, bounds.Start),
				End:   minTime(occ.End, bounds.End),
			},
			title: occ.Title,
		})
	}
	sort.SliceStable(clips, func(i, j int) bool {
		return clips[i].r.Start.Before(clips[j].r.Start)
	})

	busy := []BusyPeriod{}
	for _, c := range clips {
		if len(busy) > 0 {
			last := &busy[len(busy)-1]
			if !c.r.Start.After(last.Range.End) {
				last.Range.End = maxTime(last.Range.End, c.r.End)
				if !slices.Contains(last.EventTitles, c.title) {
					last.EventTitles = append(last.EventTitles, c.title)
				}
				continue
			}
		}
		busy = append(busy, BusyPeriod{Range: c.r, EventTitles: []string{c.title}})
	}

	busyRanges := make([]TimeRange, len(busy))
	for i, bp := range busy {
		busyRanges[i] = bp.Range
	}
	free := FindFreeSlots(busyRanges, bounds, 0, 0)

	var busyMinutes int64
	for _, bp := range busy {
		busyMinutes += bp.Range.Minutes()
	}
	return FreeBusyResult{
		BusyPeriods:      busy,
		FreePeriods:      free,
		TotalBusyMinutes: busyMinutes,
		TotalFreeMinutes: bounds.Minutes() - busyMinutes,
	}
}

// mergeRanges collapses the ranges into a minimal sorted set. Overlapping
// and touching ranges merge; half-open adjacency leaves no gap between them.
func mergeRanges(ranges []TimeRange) []TimeRange {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]TimeRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})
	merged := []TimeRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !r.Start.After(last.End) {
			last.End = maxTime(last.End, r.End)
		} else {
			merged = append(merged, r)
		}
	}
	return merged
}

// FindFreeSlots returns the sub-ranges of searchRange not covered by busy,
// shrunk by buffer at both ends and filtered to those at least minDuration
// long. A slot consumed entirely by its buffers is dropped, never clamped.
func FindFreeSlots(busy []TimeRange, searchRange TimeRange, minDuration, buffer time.Duration) []TimeRange {
	out := []TimeRange{}
	cursor := searchRange.Start
	for _, p := range mergeRanges(busy) {
		if !p.Start.Before(searchRange.End) {
			break
		}
		if p.Start.After(cursor) {
			appendSlot(&out, cursor, minTime(p.Start, searchRange.End), minDuration, buffer)
		}
		cursor = maxTime(cursor, p.End)
		if !cursor.Before(searchRange.End) {
			return out
		}
	}
	if cursor.Before(searchRange.End) {
		appendSlot(&out, cursor, searchRange.End, minDuration, buffer)
	}
	return out
}

func appendSlot(out *[]TimeRange, start, end time.Time, minDuration, buffer time.Duration) {
	start = start.Add(buffer)
	end = end.Add(-buffer)
	if !start.Before(end) {
		return
	}
	slot := TimeRange{Start: start, End: end}
	if slot.Duration() >= minDuration {
		*out = append(*out, slot)
	}
}
