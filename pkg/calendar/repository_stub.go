package calendar

import (
	"context"
	"fmt"
	"sync"
)

// RepositoryStub is an in-memory Repository for tests.
type RepositoryStub struct {
	mu        sync.RWMutex
	calendars map[string]*Calendar
	saves     int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{calendars: make(map[string]*Calendar)}
}

func (r *RepositoryStub) Create(_ context.Context, cal *Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.calendars[cal.Name]; exists {
		return fmt.Errorf("calendar %q: %w", cal.Name, ErrCalendarAlreadyExists)
	}
	r.calendars[cal.Name] = cal
	r.saves++
	return nil
}

func (r *RepositoryStub) Load(_ context.Context, name string) (*Calendar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cal, exists := r.calendars[name]
	if !exists {
		return nil, fmt.Errorf("calendar %q: %w", name, ErrCalendarNotFound)
	}
	return cal, nil
}

func (r *RepositoryStub) Save(_ context.Context, cal *Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calendars[cal.Name] = cal
	r.saves++
	return nil
}

func (r *RepositoryStub) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.calendars[name]; !exists {
		return fmt.Errorf("calendar %q: %w", name, ErrCalendarNotFound)
	}
	delete(r.calendars, name)
	return nil
}

func (r *RepositoryStub) List(_ context.Context) ([]Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]Info, 0, len(r.calendars))
	for _, cal := range r.calendars {
		infos = append(infos, Info{Uid: cal.Uid, Name: cal.Name, Owner: cal.Owner})
	}
	return infos, nil
}

// SaveCount reports how many times Create or Save were called, useful to
// assert that queries do not persist and that duplicate inserts skip the
// write-back.
func (r *RepositoryStub) SaveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}
