package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRecurrence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *Recurrence
	}{
		{
			name: "daily with repetitions",
			text: "daily 4",
			want: &Recurrence{Cadence: Daily, Repetitions: 4, Interval: 1},
		},
		{
			name: "cadence name is case-insensitive",
			text: "WeEkLy 2",
			want: &Recurrence{Cadence: Weekly, Repetitions: 2, Interval: 1},
		},
		{
			name: "explicit interval",
			text: "monthly 3 2",
			want: &Recurrence{Cadence: Monthly, Repetitions: 3, Interval: 2},
		},
		{
			name: "zero repetitions means no recurrence",
			text: "daily 0",
			want: nil,
		},
		{
			name: "zero interval means no recurrence",
			text: "daily 4 0",
			want: nil,
		},
		{
			name: "unknown cadence",
			text: "fortnightly 2",
			want: nil,
		},
		{
			name: "negative repetitions",
			text: "daily -3",
			want: nil,
		},
		{
			name: "missing repetitions",
			text: "daily",
			want: nil,
		},
		{
			name: "trailing garbage",
			text: "daily 4 2 9",
			want: nil,
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRecurrence(tt.text))
		})
	}
}

func TestExpand_LengthAndAnchor(t *testing.T) {
	anchor := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.Local)
	rec := Recurrence{Cadence: Hourly, Repetitions: 5, Interval: 1}

	occurrences := rec.Expand(anchor)

	assert.Len(t, occurrences, 6)
	assert.Equal(t, anchor, occurrences[0])
}

func TestExpand_Daily(t *testing.T) {
	anchor := time.Date(2024, time.January, 1, 10, 0, 0, 0, time.Local)
	rec := Recurrence{Cadence: Daily, Repetitions: 3, Interval: 1}

	occurrences := rec.Expand(anchor)

	want := []time.Time{
		time.Date(2024, time.January, 1, 10, 0, 0, 0, time.Local),
		time.Date(2024, time.January, 2, 10, 0, 0, 0, time.Local),
		time.Date(2024, time.January, 3, 10, 0, 0, 0, time.Local),
		time.Date(2024, time.January, 4, 10, 0, 0, 0, time.Local),
	}
	assert.Equal(t, want, occurrences)
}

func TestExpand_MinuteCarriesAcrossDayBoundary(t *testing.T) {
	anchor := time.Date(2024, time.January, 31, 23, 59, 30, 0, time.Local)
	rec := Recurrence{Cadence: Minutely, Repetitions: 1, Interval: 1}

	occurrences := rec.Expand(anchor)

	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 30, 0, time.Local), occurrences[1])
}

func TestExpand_MonthlyClampsToLastValidDay(t *testing.T) {
	t.Run("Jan 31 clamps to end of February", func(t *testing.T) {
		anchor := time.Date(2024, time.January, 31, 9, 0, 0, 0, time.Local)
		rec := Recurrence{Cadence: Monthly, Repetitions: 1, Interval: 1}

		occurrences := rec.Expand(anchor)

		// 2024 is a leap year.
		assert.Equal(t, time.Date(2024, time.February, 29, 9, 0, 0, 0, time.Local), occurrences[1])
	})

	t.Run("clamping does not stick for later months", func(t *testing.T) {
		anchor := time.Date(2024, time.January, 31, 9, 0, 0, 0, time.Local)
		rec := Recurrence{Cadence: Monthly, Repetitions: 2, Interval: 1}

		occurrences := rec.Expand(anchor)

		assert.Equal(t, time.Date(2024, time.March, 31, 9, 0, 0, 0, time.Local), occurrences[2])
	})

	t.Run("crosses year boundary", func(t *testing.T) {
		anchor := time.Date(2023, time.December, 15, 9, 0, 0, 0, time.Local)
		rec := Recurrence{Cadence: Monthly, Repetitions: 1, Interval: 1}

		occurrences := rec.Expand(anchor)

		assert.Equal(t, time.Date(2024, time.January, 15, 9, 0, 0, 0, time.Local), occurrences[1])
	})
}

func TestExpand_YearlyClampsLeapDay(t *testing.T) {
	anchor := time.Date(2024, time.February, 29, 12, 0, 0, 0, time.Local)
	rec := Recurrence{Cadence: Yearly, Repetitions: 1, Interval: 1}

	occurrences := rec.Expand(anchor)

	assert.Equal(t, time.Date(2025, time.February, 28, 12, 0, 0, 0, time.Local), occurrences[1])
}

func TestExpand_IntervalScalesEveryCadence(t *testing.T) {
	anchor := time.Date(2024, time.January, 1, 8, 0, 0, 0, time.Local)

	t.Run("daily every second day", func(t *testing.T) {
		rec := Recurrence{Cadence: Daily, Repetitions: 2, Interval: 2}
		occurrences := rec.Expand(anchor)
		assert.Equal(t, time.Date(2024, time.January, 3, 8, 0, 0, 0, time.Local), occurrences[1])
		assert.Equal(t, time.Date(2024, time.January, 5, 8, 0, 0, 0, time.Local), occurrences[2])
	})

	t.Run("monthly every third month", func(t *testing.T) {
		rec := Recurrence{Cadence: Monthly, Repetitions: 2, Interval: 3}
		occurrences := rec.Expand(anchor)
		assert.Equal(t, time.Date(2024, time.April, 1, 8, 0, 0, 0, time.Local), occurrences[1])
		assert.Equal(t, time.Date(2024, time.July, 1, 8, 0, 0, 0, time.Local), occurrences[2])
	})
}

func TestExpand_IsDeterministic(t *testing.T) {
	anchor := time.Date(2024, time.June, 10, 14, 0, 0, 0, time.Local)
	rec := Recurrence{Cadence: Weekly, Repetitions: 10, Interval: 2}

	assert.Equal(t, rec.Expand(anchor), rec.Expand(anchor))
}
