package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kalendo/kalendo/internal/bus"
	"github.com/kalendo/kalendo/internal/utils"
	"github.com/kalendo/kalendo/pkg/event"
	log "github.com/sirupsen/logrus"
)

// Service orchestrates the load-mutate-save lifecycle around the in-memory
// Calendar: each mutating operation loads the calendar fully, applies the
// change, and writes the whole document back on success.
type Service struct {
	repo  Repository
	clock utils.Clock
	bus   *bus.Bus
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: &utils.SystemClock{}}
}

// WithBus makes the service publish a notification after every successful
// mutation. A nil bus disables publishing.
func (s *Service) WithBus(b *bus.Bus) *Service {
	s.bus = b
	return s
}

func (s *Service) publish(ctx context.Context, eventType bus.EventType, data any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Warnf("notification for %s failed: %v", eventType, err)
	}
}

func (s *Service) CreateCalendar(ctx context.Context, name, owner string) (*Calendar, error) {
	cal := New(uuid.NewString(), name, owner)
	if err := s.repo.Create(ctx, cal); err != nil {
		return nil, err
	}
	log.Infof("created calendar %q for %q", name, owner)
	s.publish(ctx, bus.TypeCalendarCreated, bus.CalendarCreated{Uid: cal.Uid, Name: cal.Name, Owner: cal.Owner})
	return cal, nil
}

func (s *Service) ListCalendars(ctx context.Context) ([]Info, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetCalendar(ctx context.Context, name string) (*Calendar, error) {
	return s.repo.Load(ctx, name)
}

func (s *Service) DeleteCalendar(ctx context.Context, name string) error {
	return s.repo.Delete(ctx, name)
}

// AddEvent inserts an event into the named calendar, applying the dedup and
// overlap policy uniformly regardless of origin (manual entry or import).
// The calendar is only written back when the event was actually stored.
func (s *Service) AddEvent(ctx context.Context, calendarName string, ev event.Event) (bool, []Overlap, error) {
	cal, err := s.repo.Load(ctx, calendarName)
	if err != nil {
		return false, nil, err
	}
	stored, overlaps := cal.Add(ev)
	if !stored {
		return false, nil, nil
	}
	if err := s.repo.Save(ctx, cal); err != nil {
		return false, nil, fmt.Errorf("failed to persist calendar %q: %w", calendarName, err)
	}
	s.publish(ctx, bus.TypeEventStored, bus.EventStored{
		Calendar:    calendarName,
		Title:       ev.Title,
		Fingerprint: ev.FingerprintString(),
		Start:       ev.Start,
		Overlaps:    len(overlaps),
	})
	return true, overlaps, nil
}

func (s *Service) RemoveEvent(ctx context.Context, calendarName string, fingerprint uint64) (event.Event, error) {
	cal, err := s.repo.Load(ctx, calendarName)
	if err != nil {
		return event.Event{}, err
	}
	removed, err := cal.Remove(fingerprint)
	if err != nil {
		return event.Event{}, err
	}
	if err := s.repo.Save(ctx, cal); err != nil {
		return event.Event{}, fmt.Errorf("failed to persist calendar %q: %w", calendarName, err)
	}
	s.publish(ctx, bus.TypeEventRemoved, bus.EventRemoved{
		Calendar:    calendarName,
		Title:       removed.Title,
		Fingerprint: removed.FingerprintString(),
	})
	return removed, nil
}

// UpdateEvent edits the event stored under fingerprint. The edit changes the
// event's content and therefore its fingerprint; the returned event carries
// the new one.
func (s *Service) UpdateEvent(ctx context.Context, calendarName string, fingerprint uint64, updated event.Event) (event.Event, error) {
	cal, err := s.repo.Load(ctx, calendarName)
	if err != nil {
		return event.Event{}, err
	}
	updated.Metadata.ModifiedAt = s.clock.Now()
	result, err := cal.Update(fingerprint, updated)
	if err != nil {
		return event.Event{}, err
	}
	if err := s.repo.Save(ctx, cal); err != nil {
		return event.Event{}, fmt.Errorf("failed to persist calendar %q: %w", calendarName, err)
	}
	return result, nil
}

func (s *Service) ClearEvents(ctx context.Context, calendarName string) error {
	cal, err := s.repo.Load(ctx, calendarName)
	if err != nil {
		return err
	}
	cal.Clear()
	if err := s.repo.Save(ctx, cal); err != nil {
		return fmt.Errorf("failed to persist calendar %q: %w", calendarName, err)
	}
	return nil
}

func (s *Service) EventsBetween(ctx context.Context, calendarName string, from, until time.Time) ([]event.Event, error) {
	cal, err := s.repo.Load(ctx, calendarName)
	if err != nil {
		return nil, err
	}
	return cal.EventsBetween(from, until), nil
}

func (s *Service) EventsToday(ctx context.Context, calendarName string) ([]event.Event, error) {
	cal, err := s.repo.Load(ctx, calendarName)
	if err != nil {
		return nil, err
	}
	return cal.EventsOn(s.clock.Now()), nil
}

func (s *Service) EventsThisWeek(ctx context.Context, calendarName string) ([]event.Event, error) {
	cal, err := s.repo.Load(ctx, calendarName)
	if err != nil {
		return nil, err
	}
	return cal.EventsInWeek(s.clock.Now()), nil
}

func (s *Service) EventsThisMonth(ctx context.Context, calendarName string) ([]event.Event, error) {
	cal, err := s.repo.Load(ctx, calendarName)
	if err != nil {
		return nil, err
	}
	return cal.EventsInMonth(s.clock.Now()), nil
}

func (s *Service) EventsByTag(ctx context.Context, calendarName string, tag string) ([]event.Event, error) {
	cal, err := s.repo.Load(ctx, calendarName)
	if err != nil {
		return nil, err
	}
	return cal.EventsByTag(tag), nil
}
