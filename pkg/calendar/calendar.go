package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/kalendo/kalendo/pkg/event"
	log "github.com/sirupsen/logrus"
)

// Calendar is an in-memory event store keyed by content fingerprint. It is
// not safe for concurrent use; the service serializes access to it.
type Calendar struct {
	Uid    string
	Name   string
	Owner  string
	events map[uint64]event.Event
}

// Overlap names the two events of an advisory overlap warning produced on
// insert.
type Overlap struct {
	New      event.Event
	Existing event.Event
}

func (o Overlap) String() string {
	return fmt.Sprintf("event %q overlaps with event %q", o.New.Title, o.Existing.Title)
}

func New(uid, name, owner string) *Calendar {
	return &Calendar{
		Uid:    uid,
		Name:   name,
		Owner:  owner,
		events: make(map[uint64]event.Event),
	}
}

// Restore rebuilds a calendar from persisted state. Unlike Add it runs no
// dedup or overlap policy: the events were vetted when first inserted.
func Restore(uid, name, owner string, events []event.Event) *Calendar {
	cal := New(uid, name, owner)
	for _, ev := range events {
		cal.events[ev.Fingerprint()] = ev
	}
	return cal
}

// Add inserts an event under its content fingerprint. An event with an
// identical fingerprint is already stored exactly once, so a duplicate is a
// logged no-op and Add returns false. Otherwise the new event is checked
// against every stored event for overlaps; any hit produces an advisory
// warning but never prevents the insert.
func (c *Calendar) Add(ev event.Event) (bool, []Overlap) {
	fingerprint := ev.Fingerprint()
	if _, exists := c.events[fingerprint]; exists {
		log.Warnf("event %q (fingerprint %d) already in calendar %q: calendar not modified", ev.Title, fingerprint, c.Name)
		return false, nil
	}

	var overlaps []Overlap
	for _, existing := range c.events {
		if event.Overlaps(ev, existing) {
			overlap := Overlap{New: ev, Existing: existing}
			log.Warnf("%s", overlap)
			overlaps = append(overlaps, overlap)
		}
	}

	c.events[fingerprint] = ev
	return true, overlaps
}

// Remove deletes and returns the event stored under the given fingerprint.
func (c *Calendar) Remove(fingerprint uint64) (event.Event, error) {
	ev, exists := c.events[fingerprint]
	if !exists {
		return event.Event{}, fmt.Errorf("no event with fingerprint %d: %w", fingerprint, ErrEventNotFound)
	}
	delete(c.events, fingerprint)
	return ev, nil
}

// Update replaces the event stored under fingerprint with the edited one,
// re-keying it under its post-edit fingerprint. The creation timestamp of
// the original is preserved. Note that after an edit the old fingerprint no
// longer resolves; callers holding the pre-edit fingerprint must switch to
// the returned event's.
func (c *Calendar) Update(fingerprint uint64, updated event.Event) (event.Event, error) {
	old, exists := c.events[fingerprint]
	if !exists {
		return event.Event{}, fmt.Errorf("no event with fingerprint %d: %w", fingerprint, ErrEventNotFound)
	}
	updated.Metadata.CreatedAt = old.Metadata.CreatedAt

	newFingerprint := updated.Fingerprint()
	if _, taken := c.events[newFingerprint]; taken && newFingerprint != fingerprint {
		return event.Event{}, fmt.Errorf("edit of %d collides with %d: %w", fingerprint, newFingerprint, ErrDuplicateEvent)
	}

	delete(c.events, fingerprint)
	c.events[newFingerprint] = updated
	return updated, nil
}

// Clear removes every event unconditionally.
func (c *Calendar) Clear() {
	c.events = make(map[uint64]event.Event)
}

// Size returns the number of stored events, recurrences uncounted.
func (c *Calendar) Size() int {
	return len(c.events)
}

// TotalOccurrences counts every concrete occurrence the calendar holds,
// expanding recurring events.
func (c *Calendar) TotalOccurrences() int {
	total := 0
	for _, ev := range c.events {
		if ev.Recurrence != nil {
			total += ev.Recurrence.Repetitions + 1
		} else {
			total++
		}
	}
	return total
}

// Events returns a snapshot of the stored events, sorted by start for
// deterministic output.
func (c *Calendar) Events() []event.Event {
	events := make([]event.Event, 0, len(c.events))
	for _, ev := range c.events {
		events = append(events, ev)
	}
	sortByStart(events)
	return events
}

// EventsBetween returns every occurrence starting within [from, until], both
// bounds inclusive. A zero from means no lower bound, a zero until no upper
// bound. Recurring events contribute a projected copy per occurrence in
// range; stored events are never mutated by a query. The result is sorted
// ascending by start.
func (c *Calendar) EventsBetween(from, until time.Time) []event.Event {
	inRange := func(t time.Time) bool {
		if !from.IsZero() && t.Before(from) {
			return false
		}
		if !until.IsZero() && t.After(until) {
			return false
		}
		return true
	}

	var result []event.Event
	for _, ev := range c.events {
		for _, occurrence := range ev.Occurrences() {
			if inRange(occurrence) {
				result = append(result, ev.Projected(occurrence))
			}
		}
	}
	sortByStart(result)
	return result
}

// EventsOn returns the occurrences on the given calendar day, 0:00 through
// 23:59:59.
func (c *Calendar) EventsOn(day time.Time) []event.Event {
	from := startOfDay(day)
	return c.EventsBetween(from, endOfDay(from))
}

// EventsInWeek returns the occurrences in the ISO week (Monday through
// Sunday) containing ref.
func (c *Calendar) EventsInWeek(ref time.Time) []event.Event {
	weekday := int(ref.Weekday())
	if weekday == 0 { // time.Sunday; ISO weeks start on Monday
		weekday = 7
	}
	monday := startOfDay(ref).AddDate(0, 0, -(weekday - 1))
	sunday := monday.AddDate(0, 0, 6)
	return c.EventsBetween(monday, endOfDay(sunday))
}

// EventsInMonth returns the occurrences in the calendar month containing ref.
func (c *Calendar) EventsInMonth(ref time.Time) []event.Event {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	last := first.AddDate(0, 1, -1)
	return c.EventsBetween(first, endOfDay(last))
}

// EventsByTag returns every event carrying an exact, case-sensitive match of
// the given tag. Recurrence is not expanded here: the result holds one entry
// per stored event, not per occurrence.
func (c *Calendar) EventsByTag(tag string) []event.Event {
	var result []event.Event
	for _, ev := range c.events {
		if ev.HasTag(tag) {
			result = append(result, ev.Projected(ev.Start))
		}
	}
	sortByStart(result)
	return result
}

func sortByStart(events []event.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
