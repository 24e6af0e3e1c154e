package calendar

import "errors"

// Sentinel errors returned by the scheduling engine. Callers classify
// failures with errors.Is; the tool layer maps the not-found class to the
// protocol's resource-not-found error and everything else to
// invalid-parameters.
var (
	ErrCalendarNotFound = errors.New("calendar not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrProposalNotFound = errors.New("proposal not found")
	ErrInvalidIcal      = errors.New("invalid iCal data")
	ErrInvalidRrule     = errors.New("invalid recurrence rule")
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrInvalidInput     = errors.New("invalid input")
)

// IsNotFound reports whether err is any of the resource-not-found conditions.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCalendarNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrProposalNotFound)
}
