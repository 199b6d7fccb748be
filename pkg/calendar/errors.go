package calendar

import "errors"

var (
	// ErrEventNotFound is returned when no event is stored under the given
	// fingerprint.
	ErrEventNotFound = errors.New("event not found")

	// ErrCalendarNotFound is returned when no calendar exists under the
	// given name.
	ErrCalendarNotFound = errors.New("calendar not found")

	// ErrCalendarAlreadyExists is returned when creating a calendar whose
	// name is already taken.
	ErrCalendarAlreadyExists = errors.New("calendar already exists")

	// ErrDuplicateEvent is returned by Update when the edited content would
	// collide with a different stored event.
	ErrDuplicateEvent = errors.New("event with identical content already stored")
)
