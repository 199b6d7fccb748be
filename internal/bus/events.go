package bus

import "time"

const (
	TypeCalendarCreated EventType = "calendar.created"
	TypeEventStored     EventType = "calendar.event.stored"
	TypeEventRemoved    EventType = "calendar.event.removed"
)

type CalendarCreated struct {
	Uid   string
	Name  string
	Owner string
}

type EventStored struct {
	Calendar    string
	Title       string
	Fingerprint string
	Start       time.Time
	// Overlaps counts the advisory overlap warnings raised on insert.
	Overlaps int
}

type EventRemoved struct {
	Calendar    string
	Title       string
	Fingerprint string
}
