package event

import (
	"hash/fnv"
	"io"
	"sort"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Accepted textual formats, tried in order. The first successful parse wins.
var (
	dateFormats = []string{"02/01/2006", "2006-01-02"}
	timeFormats = []string{"15:04", "15:04:05"}
)

// Metadata carries informational timestamps. They are not part of an
// event's identity.
type Metadata struct {
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Event is a single scheduled item, one-off or recurring. Start combines the
// calendar date and the time of day. A nil Recurrence means the event occurs
// exactly once.
type Event struct {
	Title       string
	Description string
	Start       time.Time
	Duration    time.Duration
	Location    string
	Recurrence  *Recurrence
	Tags        []string
	Metadata    Metadata
}

// New builds an Event from textual date and time values. Both are parsed
// against the accepted formats in order; if neither format matches, the
// current date or time is used instead and a warning is logged, so building
// an event never fails on malformed input.
//
// The recurrence text follows the "<cadence> <repetitions> [interval]"
// grammar; anything else means no recurrence.
func New(title, description, dateText, timeText string, duration time.Duration, location, recurrenceText string, tags []string) Event {
	now := time.Now()

	day, ok := parseDate(dateText)
	if !ok {
		log.Warnf("could not parse date %q with any accepted format, falling back to today", dateText)
		day = now
	}
	tod, ok := parseTimeOfDay(timeText)
	if !ok {
		log.Warnf("could not parse time %q with any accepted format, falling back to current time", timeText)
		tod = clockTime{now.Hour(), now.Minute(), now.Second()}
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), tod.hour, tod.minute, tod.second, 0, time.Local)

	if duration < 0 {
		log.Warnf("negative duration %s for event %q, using zero", duration, title)
		duration = 0
	}

	return Event{
		Title:       title,
		Description: description,
		Start:       start,
		Duration:    duration.Truncate(time.Minute),
		Location:    location,
		Recurrence:  ParseRecurrence(recurrenceText),
		Tags:        tags,
		Metadata:    Metadata{CreatedAt: now, ModifiedAt: now},
	}
}

type clockTime struct {
	hour, minute, second int
}

func parseDate(s string) (time.Time, bool) {
	for _, format := range dateFormats {
		if t, err := time.ParseInLocation(format, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseTimeOfDay(s string) (clockTime, bool) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return clockTime{t.Hour(), t.Minute(), t.Second()}, true
		}
	}
	return clockTime{}, false
}

// ParseDate parses a textual date against the accepted formats in order.
func ParseDate(s string) (time.Time, bool) {
	return parseDate(s)
}

// End returns the end of the event's first occurrence.
func (e Event) End() time.Time {
	return e.Start.Add(e.Duration)
}

// Occurrences returns every concrete start of the event: just its own start
// for a one-off event, the expanded recurrence otherwise.
func (e Event) Occurrences() []time.Time {
	if e.Recurrence == nil {
		return []time.Time{e.Start}
	}
	return e.Recurrence.Expand(e.Start)
}

// Projected returns a copy of e with its start replaced by the given
// occurrence. The receiver is left untouched; tags and recurrence are cloned
// so callers cannot reach back into the stored event.
func (e Event) Projected(start time.Time) Event {
	p := e
	p.Start = start
	p.Tags = append([]string(nil), e.Tags...)
	if e.Recurrence != nil {
		r := *e.Recurrence
		p.Recurrence = &r
	}
	return p
}

// HasTag reports whether the event carries an exact, case-sensitive match of
// the given tag.
func (e Event) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Fingerprint is the event's identity: a deterministic digest of its
// semantically meaningful fields. Metadata timestamps are excluded so that
// identical-content events always collide regardless of when they were
// created. Editing any content field changes the fingerprint.
func (e Event) Fingerprint() uint64 {
	h := fnv.New64a()
	writeField(h, e.Title)
	writeField(h, e.Description)
	writeField(h, strconv.FormatInt(e.Start.Unix(), 10))
	writeField(h, strconv.FormatInt(int64(e.Duration/time.Minute), 10))
	writeField(h, e.Location)
	if e.Recurrence != nil {
		writeField(h, e.Recurrence.String())
	} else {
		writeField(h, "")
	}
	// Tag order is irrelevant for identity.
	tags := append([]string(nil), e.Tags...)
	sort.Strings(tags)
	for _, tag := range tags {
		writeField(h, tag)
	}
	return h.Sum64()
}

// FingerprintString renders the fingerprint the way it is addressed
// externally and persisted: as a decimal string.
func (e Event) FingerprintString() string {
	return strconv.FormatUint(e.Fingerprint(), 10)
}

func writeField(w io.Writer, s string) {
	io.WriteString(w, s)
	w.Write([]byte{0})
}
