package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ScheduleKind tags the two shapes a schedule descriptor can take. The
// variant is decided once, when the descriptor is parsed at the data-model
// boundary, instead of re-sniffing the string on every resolution.
type ScheduleKind int

const (
	// ScheduleNone is the zero value: an unset or unparseable schedule.
	// It resolves to no occurrence, never to an error.
	ScheduleNone ScheduleKind = iota
	ScheduleFixed
	ScheduleWeekly
)

// Schedule is a parsed schedule descriptor.
// Fixed schedules carry At; weekly ones carry Weekday, Hour and Minute.
type Schedule struct {
	Kind    ScheduleKind
	At      time.Time
	Weekday time.Weekday
	Hour    int
	Minute  int
}

var ErrBadDescriptor = errors.New("malformed schedule descriptor")

// Descriptor layouts accepted for fixed activities, matching what a
// datetime-local form input submits.
var fixedLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseSchedule turns an activity's (kind, descriptor) pair into a tagged
// Schedule. Fixed descriptors are absolute date-times interpreted in loc;
// recurring ones are "Weekday HH:MM". The error is for callers that want to
// report it: a zero Schedule is still returned and safely resolves to no
// occurrence.
func ParseSchedule(kind, descriptor string, loc *time.Location) (Schedule, error) {
	descriptor = strings.TrimSpace(descriptor)
	switch kind {
	case KindFixed:
		for _, layout := range fixedLayouts {
			if at, err := time.ParseInLocation(layout, descriptor, loc); err == nil {
				return Schedule{Kind: ScheduleFixed, At: at}, nil
			}
		}
		return Schedule{}, ErrBadDescriptor

	case KindRecurring:
		parts := strings.Fields(descriptor)
		if len(parts) != 2 {
			return Schedule{}, ErrBadDescriptor
		}
		wd, ok := weekdayNames[strings.ToLower(parts[0])]
		if !ok {
			return Schedule{}, ErrBadDescriptor
		}
		hour, minute, ok := parseClock(parts[1])
		if !ok {
			return Schedule{}, ErrBadDescriptor
		}
		return Schedule{Kind: ScheduleWeekly, Weekday: wd, Hour: hour, Minute: minute}, nil

	default:
		return Schedule{}, ErrBadDescriptor
	}
}

func parseClock(s string) (hour, minute int, ok bool) {
	hh, mm, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// NextOccurrence resolves the schedule to its next concrete instance
// strictly after now. A fixed schedule occurs once: in the past it yields
// nothing, it never resurfaces. A weekly schedule always yields something:
// if this week's slot is already gone (or is exactly now), it advances a
// full week, so the result is never in the past and never equal to now.
func (s Schedule) NextOccurrence(now time.Time) (time.Time, bool) {
	switch s.Kind {
	case ScheduleFixed:
		if s.At.After(now) {
			return s.At, true
		}
		return time.Time{}, false

	case ScheduleWeekly:
		candidate := time.Date(now.Year(), now.Month(), now.Day(),
			s.Hour, s.Minute, 0, 0, now.Location())
		diff := int(s.Weekday - now.Weekday())
		if diff < 0 || (diff == 0 && !candidate.After(now)) {
			diff += 7
		}
		return candidate.AddDate(0, 0, diff), true

	default:
		return time.Time{}, false
	}
}
