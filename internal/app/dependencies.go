package app

import (
	"github.com/kalendo/kalendo/internal/bus"
	"github.com/kalendo/kalendo/internal/config"
	"github.com/kalendo/kalendo/internal/utils"
	"github.com/kalendo/kalendo/pkg/calendar"
	"github.com/kalendo/kalendo/pkg/ics"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Bus *bus.Bus

	CalendarRepository calendar.Repository
	CalendarService    *calendar.Service
	CalendarHandler    *calendar.Handler

	Importer      *ics.Importer
	ImportHandler *ics.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(repo calendar.Repository, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.Bus = bus.New()
	subscribeAuditLog(deps.Bus)

	deps.CalendarRepository = repo
	deps.CalendarService = calendar.NewService(repo).WithBus(deps.Bus)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService)

	deps.Importer = ics.NewImporter(deps.CalendarService)
	deps.ImportHandler = ics.NewHandler(deps.Importer)

	return deps
}

// subscribeAuditLog writes one log line per calendar mutation.
func subscribeAuditLog(b *bus.Bus) {
	b.Subscribe(bus.TypeCalendarCreated, func(e bus.Event) error {
		if data, ok := e.Data.(bus.CalendarCreated); ok {
			log.Infof("calendar %q created for %q", data.Name, data.Owner)
		}
		return nil
	})
	b.Subscribe(bus.TypeEventStored, func(e bus.Event) error {
		if data, ok := e.Data.(bus.EventStored); ok {
			log.Infof("event %q (%s) stored in %q, %d overlap warning(s)",
				data.Title, data.Fingerprint, data.Calendar, data.Overlaps)
		}
		return nil
	})
	b.Subscribe(bus.TypeEventRemoved, func(e bus.Event) error {
		if data, ok := e.Data.(bus.EventRemoved); ok {
			log.Infof("event %q (%s) removed from %q", data.Title, data.Fingerprint, data.Calendar)
		}
		return nil
	})
}
