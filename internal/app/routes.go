package app

import (
	"github.com/gorilla/mux"
	"github.com/kalendo/kalendo/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Calendars
	r.HandleFunc("/api/calendar", deps.CalendarHandler.CreateCalendar).Methods("POST")
	r.HandleFunc("/api/calendar", deps.CalendarHandler.ListCalendars).Methods("GET")
	r.HandleFunc("/api/calendar/{name}", deps.CalendarHandler.GetCalendar).Methods("GET")
	r.HandleFunc("/api/calendar/{name}", deps.CalendarHandler.DeleteCalendar).Methods("DELETE")

	// Events
	r.HandleFunc("/api/calendar/{name}/event", deps.CalendarHandler.AddEvent).Methods("POST")
	r.HandleFunc("/api/calendar/{name}/event", deps.CalendarHandler.GetEvents).Methods("GET")
	r.HandleFunc("/api/calendar/{name}/event", deps.CalendarHandler.ClearEvents).Methods("DELETE")
	r.HandleFunc("/api/calendar/{name}/event/import", deps.ImportHandler.ImportEvents).Methods("POST")
	r.HandleFunc("/api/calendar/{name}/event/{fingerprint}", deps.CalendarHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/calendar/{name}/event/{fingerprint}", deps.CalendarHandler.RemoveEvent).Methods("DELETE")
}
