package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/kalendo/kalendo/internal/config"
	"github.com/kalendo/kalendo/pkg/calendar"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, storage, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/kalendo.yaml")
	if err != nil {
		return nil, err
	}

	repo, err := calendar.NewFileRepository(cfg.Data.Dir)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()

	// Build dependencies (services, handlers...)
	deps := BuildDependencies(repo, cfg)

	// Middleware chain
	SetupMiddleware(r, deps, cfg)

	// Routes
	RegisterRoutes(r, deps, cfg)

	if err := ensureDefaultCalendar(deps, cfg); err != nil {
		return nil, err
	}

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, router: r, srv: srv}, nil
}

// ensureDefaultCalendar creates the configured calendar on first start so
// the API is usable without an explicit create call.
func ensureDefaultCalendar(deps *Dependencies, cfg config.Application) error {
	if cfg.Calendar.Name == "" {
		return nil
	}
	_, err := deps.CalendarService.CreateCalendar(context.Background(), cfg.Calendar.Name, cfg.Calendar.Owner)
	if errors.Is(err, calendar.ErrCalendarAlreadyExists) {
		log.Debugf("calendar %q already exists", cfg.Calendar.Name)
		return nil
	}
	return err
}

// Run starts the HTTP server and blocks.
func (a *Application) Run() error {
	log.Infof("Starting server on %s", a.srv.Addr)
	return a.srv.ListenAndServe()
}
