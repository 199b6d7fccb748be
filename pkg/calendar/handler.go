package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/kalendo/kalendo/internal/rest"
	"github.com/kalendo/kalendo/pkg/event"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service}
}

type CalendarDTO struct {
	Uid   string `json:"uid,omitempty"`
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

type CalendarSummaryDTO struct {
	Uid              string `json:"uid"`
	Name             string `json:"name"`
	Owner            string `json:"owner"`
	Events           int    `json:"events"`
	TotalOccurrences int    `json:"totalOccurrences"`
}

type EventDTO struct {
	Fingerprint     string   `json:"fingerprint,omitempty"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	StartDate       string   `json:"startDate"`
	StartTime       string   `json:"startTime"`
	DurationMinutes int      `json:"durationMinutes"`
	Location        string   `json:"location,omitempty"`
	Recurrence      string   `json:"recurrence,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

type AddEventResponseDTO struct {
	Stored   bool     `json:"stored"`
	Event    EventDTO `json:"event"`
	Warnings []string `json:"warnings,omitempty"`
}

func (h *Handler) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto CalendarDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Name == "" {
		writeError(w, http.StatusBadRequest, "Invalid calendar", "'name' must not be empty")
		return
	}

	cal, err := h.service.CreateCalendar(r.Context(), dto.Name, dto.Owner)
	if err != nil {
		if errors.Is(err, ErrCalendarAlreadyExists) {
			writeError(w, http.StatusConflict, "Calendar already exists", dto.Name)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(CalendarDTO{Uid: cal.Uid, Name: cal.Name, Owner: cal.Owner}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	infos, err := h.service.ListCalendars(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]CalendarDTO, 0, len(infos))
	for _, info := range infos {
		dtos = append(dtos, CalendarDTO{Uid: info.Uid, Name: info.Name, Owner: info.Owner})
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	cal, err := h.service.GetCalendar(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	summary := CalendarSummaryDTO{
		Uid:              cal.Uid,
		Name:             cal.Name,
		Owner:            cal.Owner,
		Events:           cal.Size(),
		TotalOccurrences: cal.TotalOccurrences(),
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteCalendar(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCalendar(r.Context(), mux.Vars(r)["name"]); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddEvent(w http.ResponseWriter, r *http.Request) {
	log.Debug("Adding new event")
	w.Header().Set("Content-Type", "application/json")

	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ev := dtoToEvent(dto)
	stored, overlaps, err := h.service.AddEvent(r.Context(), mux.Vars(r)["name"], ev)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response := AddEventResponseDTO{Stored: stored, Event: eventToDTO(ev)}
	for _, overlap := range overlaps {
		response.Warnings = append(response.Warnings, overlap.String())
	}

	// A duplicate insert is a no-op, not an error: the caller is informed
	// through the stored flag.
	if stored {
		w.WriteHeader(http.StatusCreated)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) RemoveEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	fingerprint, err := strconv.ParseUint(vars["fingerprint"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid fingerprint", "fingerprint must be a decimal integer")
		return
	}

	removed, err := h.service.RemoveEvent(r.Context(), vars["name"], fingerprint)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(eventToDTO(removed)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	fingerprint, err := strconv.ParseUint(vars["fingerprint"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid fingerprint", "fingerprint must be a decimal integer")
		return
	}
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateEvent(r.Context(), vars["name"], fingerprint, dtoToEvent(dto))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(eventToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) ClearEvents(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearEvents(r.Context(), mux.Vars(r)["name"]); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetEvents serves the query engine. Query parameters select the filter:
// ?tag= for tag lookup, ?filter=today|week|month for the date
// specializations, otherwise ?from= and ?until= bound an inclusive range
// (dates in the accepted textual formats; until covers its whole day).
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()
	name := mux.Vars(r)["name"]
	query := r.URL.Query()

	var (
		events []event.Event
		err    error
	)
	switch {
	case query.Has("tag"):
		events, err = h.service.EventsByTag(ctx, name, query.Get("tag"))
	case query.Get("filter") == "today":
		events, err = h.service.EventsToday(ctx, name)
	case query.Get("filter") == "week":
		events, err = h.service.EventsThisWeek(ctx, name)
	case query.Get("filter") == "month":
		events, err = h.service.EventsThisMonth(ctx, name)
	case query.Get("filter") != "":
		writeError(w, http.StatusBadRequest, "Invalid filter", "'filter' must be today, week or month")
		return
	default:
		var from, until time.Time
		if text := query.Get("from"); text != "" {
			day, ok := event.ParseDate(text)
			if !ok {
				writeError(w, http.StatusBadRequest, "Invalid from date", "'from' must match 02/01/2006 or 2006-01-02")
				return
			}
			from = day
		}
		if text := query.Get("until"); text != "" {
			day, ok := event.ParseDate(text)
			if !ok {
				writeError(w, http.StatusBadRequest, "Invalid until date", "'until' must match 02/01/2006 or 2006-01-02")
				return
			}
			// The until date is inclusive: cover it to the last second.
			until = day.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		}
		events, err = h.service.EventsBetween(ctx, name, from, until)
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, ev := range events {
		dtos = append(dtos, eventToDTO(ev))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCalendarNotFound):
		writeError(w, http.StatusNotFound, "Calendar not found", err.Error())
	case errors.Is(err, ErrEventNotFound):
		writeError(w, http.StatusNotFound, "Event not found", err.Error())
	case errors.Is(err, ErrCalendarAlreadyExists):
		writeError(w, http.StatusConflict, "Calendar already exists", err.Error())
	case errors.Is(err, ErrDuplicateEvent):
		writeError(w, http.StatusConflict, "Duplicate event", err.Error())
	default:
		log.Errorf("internal error: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message, Details: details}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func dtoToEvent(dto EventDTO) event.Event {
	return event.New(
		dto.Title,
		dto.Description,
		dto.StartDate,
		dto.StartTime,
		time.Duration(dto.DurationMinutes)*time.Minute,
		dto.Location,
		dto.Recurrence,
		dto.Tags,
	)
}

func eventToDTO(ev event.Event) EventDTO {
	dto := EventDTO{
		Fingerprint:     ev.FingerprintString(),
		Title:           ev.Title,
		Description:     ev.Description,
		StartDate:       ev.Start.Format("02/01/2006"),
		StartTime:       ev.Start.Format("15:04:05"),
		DurationMinutes: int(ev.Duration / time.Minute),
		Location:        ev.Location,
		Tags:            ev.Tags,
	}
	if ev.Recurrence != nil {
		dto.Recurrence = ev.Recurrence.String()
	}
	return dto
}
