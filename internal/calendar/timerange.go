package calendar

import (
	"fmt"
	"time"
)

// TimeRange is a half-open interval [Start, End) over UTC instants.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange builds a TimeRange, rejecting empty or inverted intervals.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !start.Before(end) {
		return TimeRange{}, fmt.Errorf("%w: start %s is not before end %s",
			ErrInvalidTimeRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeRange{Start: start.UTC(), End: end.UTC()}, nil
}

// Overlaps reports whether the two half-open intervals share any instant.
// Intervals that only touch at a boundary do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// OverlapDuration returns how long the two intervals overlap, or zero when
// they are disjoint or merely adjacent.
func (r TimeRange) OverlapDuration(other TimeRange) time.Duration {
	start := maxTime(r.Start, other.Start)
	end := minTime(r.End, other.End)
	if start.Before(end) {
		return end.Sub(start)
	}
	return 0
}

// Duration returns the length of the interval.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Minutes returns the length of the interval in whole minutes.
func (r TimeRange) Minutes() int64 {
	return int64(r.Duration() / time.Minute)
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
