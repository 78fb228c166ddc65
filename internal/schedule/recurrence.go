// Package schedule computes concrete occurrences from weekly recurrence
// rules and materializes due templates into sessions.
package schedule

import (
	"sort"
	"time"

	"github.com/squadup/app/internal/apperr"
)

// Weekday indices are 0 = Monday through 6 = Sunday, unlike time.Weekday's
// 0 = Sunday. mondayIndexed converts.
func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// ValidateRule rejects malformed recurrence rules before they reach the
// calculator; NextOccurrence has no sentinel for "no valid day".
func ValidateRule(weekdays []int, hour, minute int) error {
	if len(weekdays) == 0 {
		return apperr.Validation("weekdays", "at least one weekday is required")
	}
	for _, d := range weekdays {
		if d < 0 || d > 6 {
			return apperr.Validation("weekdays", "weekday %d out of range 0-6", d)
		}
	}
	if hour < 0 || hour > 23 {
		return apperr.Validation("hour", "%d out of range 0-23", hour)
	}
	if minute < 0 || minute > 59 {
		return apperr.Validation("minute", "%d out of range 0-59", minute)
	}
	return nil
}

// NextOccurrence returns the next time the rule fires strictly after now.
// weekdays use 0 = Monday; the caller validates the rule first.
//
// The next configured weekday after today's wins. When today is the latest
// configured weekday (or past it), today still qualifies if its time of day
// has not passed yet; otherwise the occurrence wraps to the earliest
// configured weekday next week. A single configured weekday whose time
// already passed today therefore lands a full seven days out.
func NextOccurrence(weekdays []int, hour, minute int, now time.Time) time.Time {
	days := append([]int(nil), weekdays...)
	sort.Ints(days)

	current := mondayIndexed(now.Weekday())

	daysUntil := -1
	for _, d := range days {
		if d > current {
			daysUntil = d - current
			break
		}
	}

	if daysUntil < 0 {
		timeOfDay := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if containsDay(days, current) && timeOfDay.After(now) {
			daysUntil = 0
		} else {
			// Wrap to the earliest configured weekday next week.
			daysUntil = 7
			if days[0] != current {
				daysUntil = 7 - current + days[0]
			}
		}
	}

	target := now.AddDate(0, 0, daysUntil)
	return time.Date(target.Year(), target.Month(), target.Day(), hour, minute, 0, 0, now.Location())
}

func containsDay(days []int, d int) bool {
	for _, x := range days {
		if x == d {
			return true
		}
	}
	return false
}
