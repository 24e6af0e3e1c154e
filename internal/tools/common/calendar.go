package common

// GetCalendarFromArgs extracts the calendar name from tool arguments.
//
// Returns the empty string when no calendar argument is present. Read
// operations treat an empty name as "all calendars" while write
// operations fall back to the default calendar, so callers pass the
// result through unchanged.
func GetCalendarFromArgs(args map[string]interface{}) string {
	if name, ok := args["calendar"].(string); ok {
		return name
	}
	return ""
}
