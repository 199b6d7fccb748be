package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/kalendo/kalendo/pkg/calendar"
	"github.com/kalendo/kalendo/pkg/event"
	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

var ErrParsingFailed = errors.New("unable to parse ICS payload")

// EventSink receives the events extracted from an ICS feed. It is satisfied
// by calendar.Service.
type EventSink interface {
	AddEvent(ctx context.Context, calendarName string, ev event.Event) (bool, []calendar.Overlap, error)
}

type Importer struct {
	sink EventSink
}

func NewImporter(sink EventSink) *Importer {
	return &Importer{sink}
}

// ImportSummary reports the outcome of a feed import. Skipped counts the
// VEVENTs that were already present (same fingerprint).
type ImportSummary struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// Import reads a single ICS payload and adds every VEVENT to the named
// calendar. Duplicates are counted as skipped, overlap warnings are
// collected into the summary.
func (i *Importer) Import(ctx context.Context, calendarName string, body io.Reader) (ImportSummary, error) {
	var summary ImportSummary

	cal, err := ical.ParseCalendar(body)
	if err != nil {
		log.Warnf("ICS parse failed: %v", err)
		return summary, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	for _, ve := range cal.Events() {
		ev, err := eventFromVEvent(ve)
		if err != nil {
			// A malformed VEVENT is skipped, the rest of the feed still imports.
			log.Warnf("skipping VEVENT: %v", err)
			summary.Warnings = append(summary.Warnings, err.Error())
			continue
		}

		stored, overlaps, err := i.sink.AddEvent(ctx, calendarName, ev)
		if err != nil {
			return summary, err
		}
		if stored {
			summary.Imported++
		} else {
			summary.Skipped++
		}
		for _, overlap := range overlaps {
			summary.Warnings = append(summary.Warnings, overlap.String())
		}
	}

	log.Infof("imported %d event(s) into calendar %q, %d skipped", summary.Imported, calendarName, summary.Skipped)
	return summary, nil
}

func eventFromVEvent(ve *ical.VEvent) (event.Event, error) {
	start, err := ve.GetStartAt()
	if err != nil {
		return event.Event{}, fmt.Errorf("VEVENT without usable DTSTART: %w", err)
	}

	var duration time.Duration
	if end, err := ve.GetEndAt(); err == nil && end.After(start) {
		duration = end.Sub(start).Round(time.Minute)
	}

	var title, description, location string
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		location = p.Value
	}

	var recurrenceText string
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		recurrenceText = recurrenceFromRRule(p.Value)
	}

	return event.New(
		title,
		description,
		start.Format("02/01/2006"),
		start.Format("15:04:05"),
		duration,
		location,
		recurrenceText,
		categories(ve),
	), nil
}

// recurrenceFromRRule maps an RRULE onto the textual recurrence grammar.
// The RRULE COUNT includes the first instance, while a recurrence counts
// repetitions after the anchor, hence the off-by-one. Rules without a COUNT
// describe an unbounded series and are stored as one-off events.
func recurrenceFromRRule(raw string) string {
	r, err := rrule.StrToRRule(raw)
	if err != nil {
		log.Warnf("ignoring unparseable RRULE %q: %v", raw, err)
		return ""
	}

	opts := r.OrigOptions
	if opts.Count <= 1 {
		return ""
	}

	var cadence event.Cadence
	switch opts.Freq {
	case rrule.SECONDLY:
		cadence = event.Secondly
	case rrule.MINUTELY:
		cadence = event.Minutely
	case rrule.HOURLY:
		cadence = event.Hourly
	case rrule.DAILY:
		cadence = event.Daily
	case rrule.WEEKLY:
		cadence = event.Weekly
	case rrule.MONTHLY:
		cadence = event.Monthly
	case rrule.YEARLY:
		cadence = event.Yearly
	default:
		log.Warnf("ignoring RRULE %q with unsupported frequency", raw)
		return ""
	}

	recurrence := event.Recurrence{
		Cadence:     cadence,
		Repetitions: opts.Count - 1,
		Interval:    1,
	}
	if opts.Interval > 1 {
		recurrence.Interval = opts.Interval
	}
	return recurrence.String()
}

func categories(ve *ical.VEvent) []string {
	var tags []string
	for _, p := range ve.GetProperties(ical.ComponentPropertyCategories) {
		for _, part := range strings.Split(p.Value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				tags = append(tags, part)
			}
		}
	}
	return tags
}
