package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func oneOff(start time.Time, duration time.Duration) Event {
	return Event{Title: "event", Start: start, Duration: duration}
}

func TestOverlaps_SingleOccurrences(t *testing.T) {
	base := time.Date(2024, time.May, 6, 10, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		a    Event
		b    Event
		want bool
	}{
		{
			name: "fully overlapping",
			a:    oneOff(base, time.Hour),
			b:    oneOff(base.Add(30*time.Minute), time.Hour),
			want: true,
		},
		{
			name: "one contains the other",
			a:    oneOff(base, 4*time.Hour),
			b:    oneOff(base.Add(time.Hour), 30*time.Minute),
			want: true,
		},
		{
			name: "touching bounds count as overlap",
			a:    oneOff(base, time.Hour),
			b:    oneOff(base.Add(time.Hour), time.Hour),
			want: true,
		},
		{
			name: "disjoint",
			a:    oneOff(base, time.Hour),
			b:    oneOff(base.Add(2*time.Hour), time.Hour),
			want: false,
		},
		{
			name: "zero duration inside interval",
			a:    oneOff(base, time.Hour),
			b:    oneOff(base.Add(15*time.Minute), 0),
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b))
			// Overlap detection must be symmetric.
			assert.Equal(t, Overlaps(tt.a, tt.b), Overlaps(tt.b, tt.a))
		})
	}
}

func TestOverlaps_RecurringAgainstSingle(t *testing.T) {
	daily := Event{
		Title:      "standup",
		Start:      time.Date(2024, time.January, 1, 9, 0, 0, 0, time.Local),
		Duration:   30 * time.Minute,
		Recurrence: &Recurrence{Cadence: Daily, Repetitions: 4, Interval: 1},
	}
	// Collides with the third occurrence only.
	review := oneOff(time.Date(2024, time.January, 3, 9, 15, 0, 0, time.Local), time.Hour)
	// After the last occurrence.
	retro := oneOff(time.Date(2024, time.January, 6, 9, 0, 0, 0, time.Local), time.Hour)

	assert.True(t, Overlaps(daily, review))
	assert.True(t, Overlaps(review, daily))
	assert.False(t, Overlaps(daily, retro))
	assert.False(t, Overlaps(retro, daily))
}

func TestOverlaps_BothRecurring(t *testing.T) {
	weekly := Event{
		Title:      "planning",
		Start:      time.Date(2024, time.January, 1, 9, 0, 0, 0, time.Local),
		Duration:   time.Hour,
		Recurrence: &Recurrence{Cadence: Weekly, Repetitions: 3, Interval: 1},
	}
	daily := Event{
		Title:      "standup",
		Start:      time.Date(2024, time.January, 15, 9, 30, 0, 0, time.Local),
		Duration:   15 * time.Minute,
		Recurrence: &Recurrence{Cadence: Daily, Repetitions: 2, Interval: 1},
	}
	// Every occurrence two days apart from any of the other's.
	offbeat := Event{
		Title:      "gym",
		Start:      time.Date(2024, time.January, 3, 9, 0, 0, 0, time.Local),
		Duration:   time.Hour,
		Recurrence: &Recurrence{Cadence: Weekly, Repetitions: 3, Interval: 1},
	}

	assert.True(t, Overlaps(weekly, daily))
	assert.True(t, Overlaps(daily, weekly))
	assert.False(t, Overlaps(weekly, offbeat))
	assert.False(t, Overlaps(offbeat, weekly))
}
