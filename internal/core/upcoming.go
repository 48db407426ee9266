package core

import (
	"fmt"
	"sort"
	"time"
)

// MaxUpcoming bounds the dashboard's upcoming-activity list.
const MaxUpcoming = 3

// UpcomingEntry is one resolved activity occurrence, ready for display.
type UpcomingEntry struct {
	Title     string
	At        time.Time
	TimeLabel string // "15:04"
	DateLabel string // "Mon 2"
	DaysUntil string // "today", "tomorrow", "in N days"
}

// SelectUpcoming resolves every activity to its next occurrence, keeps the
// strictly-future ones and returns the soonest MaxUpcoming in ascending
// order. Activities with no resolvable occurrence (past one-offs, malformed
// descriptors) are skipped; one bad record never breaks the batch.
func SelectUpcoming(activities []Activity, now time.Time) []UpcomingEntry {
	upcoming := make([]UpcomingEntry, 0, len(activities))
	for _, a := range activities {
		at, ok := a.Schedule.NextOccurrence(now)
		if !ok || !at.After(now) {
			continue
		}
		upcoming = append(upcoming, UpcomingEntry{
			Title:     a.Title,
			At:        at,
			TimeLabel: at.Format("15:04"),
			DateLabel: at.Format("Mon 2"),
			DaysUntil: relativeDays(now, at),
		})
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].At.Before(upcoming[j].At)
	})
	if len(upcoming) > MaxUpcoming {
		upcoming = upcoming[:MaxUpcoming]
	}
	return upcoming
}

// relativeDays labels the distance to an occurrence by whole 24h periods,
// not calendar days: 20 hours away is still "today", 30 hours is
// "tomorrow".
func relativeDays(now, at time.Time) string {
	days := int(at.Sub(now).Hours() / 24)
	switch days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}
