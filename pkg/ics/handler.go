package ics

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/kalendo/kalendo/internal/rest"
	"github.com/kalendo/kalendo/pkg/calendar"
)

type Handler struct {
	importer *Importer
}

func NewHandler(importer *Importer) *Handler {
	return &Handler{importer}
}

// ImportEvents accepts a raw ICS document in the request body and imports
// its VEVENTs into the calendar named in the path.
func (h *Handler) ImportEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	summary, err := h.importer.Import(r.Context(), mux.Vars(r)["name"], r.Body)
	switch {
	case err == nil:
	case errors.Is(err, ErrParsingFailed):
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid ICS payload", Details: err.Error()})
		return
	case errors.Is(err, calendar.ErrCalendarNotFound):
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Calendar not found", Details: err.Error()})
		return
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
