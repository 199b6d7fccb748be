package event

import "time"

// Overlaps reports whether any occurrence of a intersects any occurrence of
// b. Occurrence intervals [start, start+duration] are inclusive on both ends,
// so an event ending exactly when another starts counts as an overlap.
//
// For recurring events every expanded occurrence is checked against every
// occurrence of the other event, returning on the first hit.
//
// The result is advisory: insertion is never blocked by an overlap.
func Overlaps(a, b Event) bool {
	for _, aStart := range a.Occurrences() {
		aEnd := aStart.Add(a.Duration)
		for _, bStart := range b.Occurrences() {
			if intervalsIntersect(aStart, aEnd, bStart, bStart.Add(b.Duration)) {
				return true
			}
		}
	}
	return false
}

func intervalsIntersect(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !bStart.After(aEnd) && !bEnd.Before(aStart)
}
