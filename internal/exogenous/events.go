package exogenous

import (
	"log/slog"
	"strings"
	"time"

	"exopanel/pkg/contracts/domain"
)

// eventColumnPrefix marks every event indicator column in the panel.
const eventColumnPrefix = "EVT_"

// SanitizeColumn normalizes an event name into a valid column identifier:
// runs of non-alphanumeric characters collapse to a single underscore and
// leading/trailing underscores are trimmed. The function is pure and
// idempotent: sanitizing an already-sanitized name is a no-op.
func SanitizeColumn(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingSep := false
	for _, r := range strings.TrimSpace(name) {
		alnum := (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingSep = true
			continue
		}
		if pendingSep && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSep = false
		b.WriteRune(r)
	}
	return b.String()
}

// EventWindowEncoder converts named date intervals into a calendar-aligned
// binary indicator matrix shared by every per-symbol merge.
type EventWindowEncoder struct {
	logger *slog.Logger
}

// NewEventWindowEncoder creates an encoder that reports data quality
// findings (such as column name collisions) on logger.
func NewEventWindowEncoder(logger *slog.Logger) *EventWindowEncoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventWindowEncoder{logger: logger}
}

// Encode builds the indicator matrix for defs over calendar. Per event:
// a missing start defaults to projectStart, a missing end to the resolved
// start; both bounds are clipped to [projectStart, projectEnd]; the column
// holds 1 for every calendar date inside the closed interval and 0
// elsewhere. An empty definition list yields a matrix aligned to the
// calendar with no columns.
//
// Two events that sanitize to the same column name overwrite rather than
// combine; the collision is logged so it never passes silently.
func (e *EventWindowEncoder) Encode(defs []domain.EventDefinition, calendar []time.Time, projectStart, projectEnd time.Time) *domain.EventIndicatorMatrix {
	projectStart, projectEnd = Day(projectStart), Day(projectEnd)

	matrix := &domain.EventIndicatorMatrix{
		Calendar: calendar,
		Columns:  []string{},
		Values:   make(map[string][]int, len(defs)),
	}

	for _, def := range defs {
		start := projectStart
		if def.Start != nil {
			start = Day(*def.Start)
		}
		end := start
		if def.End != nil {
			end = Day(*def.End)
		}

		// Clip to project bounds, both ends inclusive.
		if start.Before(projectStart) {
			start = projectStart
		}
		if end.After(projectEnd) {
			end = projectEnd
		}

		column := eventColumnPrefix + SanitizeColumn(def.Name)
		if _, exists := matrix.Values[column]; exists {
			e.logger.Warn("event column collision, later definition overwrites",
				slog.String("column", column),
				slog.String("event", def.Name))
		} else {
			matrix.Columns = append(matrix.Columns, column)
		}

		values := make([]int, len(calendar))
		for i, d := range calendar {
			if !d.Before(start) && !d.After(end) {
				values[i] = 1
			}
		}
		matrix.Values[column] = values
	}

	return matrix
}
