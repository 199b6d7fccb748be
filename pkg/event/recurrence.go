package event

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cadence is the unit of repetition of a recurring event.
type Cadence int

const (
	Secondly Cadence = iota
	Minutely
	Hourly
	Daily
	Weekly
	Monthly
	Yearly
)

var cadenceNames = map[Cadence]string{
	Secondly: "secondly",
	Minutely: "minutely",
	Hourly:   "hourly",
	Daily:    "daily",
	Weekly:   "weekly",
	Monthly:  "monthly",
	Yearly:   "yearly",
}

func (c Cadence) String() string {
	if name, ok := cadenceNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCadence matches a cadence name case-insensitively.
func ParseCadence(s string) (Cadence, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for cadence, name := range cadenceNames {
		if name == s {
			return cadence, true
		}
	}
	return 0, false
}

// Recurrence is a repeat rule: the event recurs Repetitions more times after
// its first occurrence, every Interval units of the cadence.
type Recurrence struct {
	Cadence     Cadence
	Repetitions int
	Interval    int
}

// ParseRecurrence parses the "<cadence> <repetitions> [interval]" grammar.
// Any other shape, an unknown cadence, zero repetitions, or a zero interval
// yields nil, meaning no recurrence. Malformed recurrence text is never an
// error.
func ParseRecurrence(s string) *Recurrence {
	fields := strings.Fields(s)
	if len(fields) < 2 || len(fields) > 3 {
		return nil
	}
	cadence, ok := ParseCadence(fields[0])
	if !ok {
		return nil
	}
	repetitions, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil || repetitions == 0 {
		return nil
	}
	interval := 1
	if len(fields) == 3 {
		parsed, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil || parsed == 0 {
			return nil
		}
		interval = int(parsed)
	}
	return &Recurrence{Cadence: cadence, Repetitions: int(repetitions), Interval: interval}
}

// String renders the rule in the same grammar ParseRecurrence accepts.
func (r Recurrence) String() string {
	if r.Interval > 1 {
		return fmt.Sprintf("%s %d %d", r.Cadence, r.Repetitions, r.Interval)
	}
	return fmt.Sprintf("%s %d", r.Cadence, r.Repetitions)
}

// Expand computes every occurrence of the rule anchored at the given start:
// exactly Repetitions+1 entries, the first being the anchor itself. The
// interval scales every cadence's step uniformly.
//
// Secondly through Weekly steps are fixed durations, carried across
// hour/day/month/year boundaries by plain time arithmetic. Monthly and
// Yearly steps advance the calendar date and keep the time of day; a day of
// month with no equivalent in the target month clamps to the month's last
// valid day (Jan 31 + 1 month lands on Feb 28, or Feb 29 in a leap year).
//
// Expand is a pure function: no I/O, identical output for identical input.
func (r Recurrence) Expand(anchor time.Time) []time.Time {
	interval := r.Interval
	if interval < 1 {
		interval = 1
	}
	occurrences := make([]time.Time, 0, r.Repetitions+1)
	for i := 0; i <= r.Repetitions; i++ {
		steps := i * interval
		var occurrence time.Time
		switch r.Cadence {
		case Secondly:
			occurrence = anchor.Add(time.Duration(steps) * time.Second)
		case Minutely:
			occurrence = anchor.Add(time.Duration(steps) * time.Minute)
		case Hourly:
			occurrence = anchor.Add(time.Duration(steps) * time.Hour)
		case Daily:
			occurrence = anchor.Add(time.Duration(steps) * 24 * time.Hour)
		case Weekly:
			occurrence = anchor.Add(time.Duration(steps) * 7 * 24 * time.Hour)
		case Monthly:
			occurrence = addMonthsClamped(anchor, steps)
		case Yearly:
			occurrence = addMonthsClamped(anchor, steps*12)
		}
		occurrences = append(occurrences, occurrence)
	}
	return occurrences
}

// addMonthsClamped advances t by whole calendar months, keeping the time of
// day. Unlike time.AddDate it never normalizes past the target month: an
// out-of-range day of month clamps to the last day instead.
func addMonthsClamped(t time.Time, months int) time.Time {
	total := int(t.Month()) - 1 + months
	year := t.Year() + total/12
	month := time.Month(total%12 + 1)
	day := t.Day()
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
