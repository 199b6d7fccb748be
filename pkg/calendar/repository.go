package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kalendo/kalendo/pkg/event"
	log "github.com/sirupsen/logrus"
)

// Repository persists whole calendars. A calendar is always loaded fully
// into memory and written back as one document; there is no incremental
// persistence. Concurrent processes writing the same backing file is a
// documented non-goal: last writer wins, no merge.
type Repository interface {
	Create(ctx context.Context, cal *Calendar) error
	Load(ctx context.Context, name string) (*Calendar, error)
	Save(ctx context.Context, cal *Calendar) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]Info, error)
}

// Info is a calendar listing entry.
type Info struct {
	Uid   string
	Name  string
	Owner string
}

// FileRepository stores one JSON document per calendar, <name>.json under
// the data directory. Events are keyed by their decimal fingerprint string;
// the duration is persisted as an integer count of minutes and timestamps as
// unix seconds.
type FileRepository struct {
	dir string
}

func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create data directory %s: %w", dir, err)
	}
	return &FileRepository{dir: dir}, nil
}

type calendarDocument struct {
	Uid    string                 `json:"uid"`
	Name   string                 `json:"name"`
	Owner  string                 `json:"owner"`
	Events map[string]eventRecord `json:"events"`
}

type eventRecord struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	StartDate   int64             `json:"startDate"`
	Duration    int64             `json:"duration"`
	Location    string            `json:"location,omitempty"`
	Recurrence  *recurrenceRecord `json:"recurrence,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	CreatedAt   int64             `json:"createdAt"`
	ModifiedAt  int64             `json:"modifiedAt"`
}

type recurrenceRecord struct {
	Cadence     string `json:"cadence"`
	Repetitions int    `json:"repetitions"`
	Interval    int    `json:"interval,omitempty"`
}

func (r *FileRepository) Create(ctx context.Context, cal *Calendar) error {
	path, err := r.path(cal.Name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("calendar %q: %w", cal.Name, ErrCalendarAlreadyExists)
	}
	return r.Save(ctx, cal)
}

func (r *FileRepository) Load(_ context.Context, name string) (*Calendar, error) {
	path, err := r.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("calendar %q: %w", name, ErrCalendarNotFound)
		}
		return nil, fmt.Errorf("could not read calendar file %s: %w", path, err)
	}

	var doc calendarDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("could not decode calendar file %s: %w", path, err)
	}

	events := make([]event.Event, 0, len(doc.Events))
	for key, record := range doc.Events {
		ev := recordToEvent(record)
		// The key is redundant with the event content; recompute and verify
		// so a hand-edited file cannot smuggle in colliding entries.
		if ev.FingerprintString() != key {
			log.Warnf("calendar %q: stored fingerprint %s does not match content (%s), re-keying", name, key, ev.FingerprintString())
		}
		events = append(events, ev)
	}
	return Restore(doc.Uid, doc.Name, doc.Owner, events), nil
}

func (r *FileRepository) Save(_ context.Context, cal *Calendar) error {
	path, err := r.path(cal.Name)
	if err != nil {
		return err
	}

	doc := calendarDocument{
		Uid:    cal.Uid,
		Name:   cal.Name,
		Owner:  cal.Owner,
		Events: make(map[string]eventRecord, cal.Size()),
	}
	for _, ev := range cal.Events() {
		doc.Events[ev.FingerprintString()] = eventToRecord(ev)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode calendar %q: %w", cal.Name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write calendar file %s: %w", path, err)
	}
	return nil
}

func (r *FileRepository) Delete(_ context.Context, name string) error {
	path, err := r.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("calendar %q: %w", name, ErrCalendarNotFound)
		}
		return fmt.Errorf("could not delete calendar file %s: %w", path, err)
	}
	return nil
}

func (r *FileRepository) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("could not list data directory %s: %w", r.dir, err)
	}
	infos := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		cal, err := r.Load(ctx, name)
		if err != nil {
			log.Warnf("skipping unreadable calendar file %s: %v", entry.Name(), err)
			continue
		}
		infos = append(infos, Info{Uid: cal.Uid, Name: cal.Name, Owner: cal.Owner})
	}
	return infos, nil
}

func (r *FileRepository) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid calendar name %q", name)
	}
	return filepath.Join(r.dir, name+".json"), nil
}

func eventToRecord(ev event.Event) eventRecord {
	record := eventRecord{
		Title:       ev.Title,
		Description: ev.Description,
		StartDate:   ev.Start.Unix(),
		Duration:    int64(ev.Duration / time.Minute),
		Location:    ev.Location,
		Tags:        ev.Tags,
		CreatedAt:   ev.Metadata.CreatedAt.Unix(),
		ModifiedAt:  ev.Metadata.ModifiedAt.Unix(),
	}
	if ev.Recurrence != nil {
		record.Recurrence = &recurrenceRecord{
			Cadence:     ev.Recurrence.Cadence.String(),
			Repetitions: ev.Recurrence.Repetitions,
			Interval:    ev.Recurrence.Interval,
		}
	}
	return record
}

func recordToEvent(record eventRecord) event.Event {
	ev := event.Event{
		Title:       record.Title,
		Description: record.Description,
		Start:       time.Unix(record.StartDate, 0),
		Duration:    time.Duration(record.Duration) * time.Minute,
		Location:    record.Location,
		Tags:        record.Tags,
		Metadata: event.Metadata{
			CreatedAt:  time.Unix(record.CreatedAt, 0),
			ModifiedAt: time.Unix(record.ModifiedAt, 0),
		},
	}
	if record.Recurrence != nil {
		rule := record.Recurrence.Cadence + " " + strconv.Itoa(record.Recurrence.Repetitions)
		if record.Recurrence.Interval > 1 {
			rule += " " + strconv.Itoa(record.Recurrence.Interval)
		}
		ev.Recurrence = event.ParseRecurrence(rule)
	}
	return ev
}
