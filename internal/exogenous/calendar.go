package exogenous

import (
	"time"

	apperrors "exopanel/internal/errors"
)

// dateLayout is the canonical day format used for map keys and output.
const dateLayout = "2006-01-02"

// Day truncates t to a calendar day in UTC. All dates flowing through the
// engine are normalized this way so equality checks are exact.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BuildCalendar returns the dense daily date sequence from start to end,
// both inclusive. The result has length (end-start in days)+1, is strictly
// increasing and contains no duplicates. It fails with an invalid-range
// error when start is after end; no other validation is performed.
func BuildCalendar(start, end time.Time) ([]time.Time, error) {
	start, end = Day(start), Day(end)
	if start.After(end) {
		return nil, apperrors.NewInvalidRange("build_calendar", start, end)
	}

	days := int(end.Sub(start).Hours()/24) + 1
	calendar := make([]time.Time, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		calendar = append(calendar, d)
	}
	return calendar, nil
}

// calendarIndex maps each calendar day to its row position.
func calendarIndex(calendar []time.Time) map[string]int {
	index := make(map[string]int, len(calendar))
	for i, d := range calendar {
		index[d.Format(dateLayout)] = i
	}
	return index
}
