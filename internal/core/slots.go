package core

import "time"

// Slot is a candidate window for scheduling a new activity.
type Slot struct {
	Date  string // YYYY-MM-DD
	Time  string // HH:MM
	Label string // "Monday, 14:00"
}

// Candidate times proposed for each of the next three days.
var slotHours = []int{14, 18}

// SuggestSlots proposes candidate windows over the next three days, one
// early-afternoon and one evening slot per day. This is deliberately a
// fixed heuristic: it does not check the requested duration against
// existing activities, a real free-busy search would.
func SuggestSlots(durationMinutes int, now time.Time) []Slot {
	slots := make([]Slot, 0, 3*len(slotHours))
	for offset := 1; offset <= 3; offset++ {
		day := now.AddDate(0, 0, offset)
		for _, hour := range slotHours {
			at := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, now.Location())
			slots = append(slots, Slot{
				Date:  DayKey(at),
				Time:  at.Format("15:04"),
				Label: at.Weekday().String() + ", " + at.Format("15:04"),
			})
		}
	}
	return slots
}
