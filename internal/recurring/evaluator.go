// Package recurring decides whether a template materializes an instance on a
// given calendar date.
package recurring

import (
	"time"

	"github.com/graceolivia/rhythms/internal/domain"
)

// lookaheadDays bounds NextDue scans. One leap year covers every rule.
const lookaheadDays = 366

// IsDue reports whether the template is due on the given date.
//
// An explicit DaysOfWeek set overrides the recurrence rule entirely: due-ness
// is pure weekday membership. Inactive templates are never due, and unknown
// recurrence values fail closed.
func IsDue(tpl *domain.TaskTemplate, date domain.Date) bool {
	if tpl == nil || !tpl.IsActive {
		return false
	}
	return dueOn(tpl.Recurrence, tpl.DaysOfWeek, date)
}

// BlockIsDue reports whether the habit block is due on the given date.
// Blocks follow the same recurrence semantics as task templates.
func BlockIsDue(b *domain.HabitBlock, date domain.Date) bool {
	if b == nil || !b.IsActive {
		return false
	}
	return dueOn(b.Recurrence, b.DaysOfWeek, date)
}

// NextDue returns the first due date strictly after the given date, or nil
// when no occurrence exists within the lookahead horizon.
func NextDue(tpl *domain.TaskTemplate, after domain.Date) *domain.Date {
	if tpl == nil || !tpl.IsActive {
		return nil
	}
	for i := 1; i <= lookaheadDays; i++ {
		d := after.AddDays(i)
		if dueOn(tpl.Recurrence, tpl.DaysOfWeek, d) {
			return &d
		}
	}
	return nil
}

func dueOn(rule domain.Recurrence, days []time.Weekday, date domain.Date) bool {
	if len(days) > 0 {
		return containsWeekday(days, date.Weekday())
	}

	switch rule {
	case domain.RecurrenceDaily:
		return true
	case domain.RecurrenceWeekdays:
		wd := date.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	case domain.RecurrenceWeekends:
		wd := date.Weekday()
		return wd == time.Saturday || wd == time.Sunday
	case domain.RecurrenceWeekly:
		// Weekly without an explicit weekday set is fixed to Sunday.
		return date.Weekday() == time.Sunday
	case domain.RecurrenceMonthly:
		return date.Day == 1
	case domain.RecurrenceSpecificDays:
		// specific-days with an empty set never fires.
		return false
	default:
		// Malformed persisted values fail closed.
		return false
	}
}

func containsWeekday(days []time.Weekday, wd time.Weekday) bool {
	for _, d := range days {
		if d == wd {
			return true
		}
	}
	return false
}
