package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/birdwatch/internal/model"
	"github.com/sakif/birdwatch/internal/service"
)

// SightingHandler exposes the sighting service over HTTP. Responses embed
// the full bird; a read that finds an orphaned sighting answers 500 rather
// than guessing a bird.
type SightingHandler struct {
	service *service.SightingService
	logger  *slog.Logger
}

// NewSightingHandler creates a new SightingHandler.
func NewSightingHandler(svc *service.SightingService, logger *slog.Logger) *SightingHandler {
	return &SightingHandler{service: svc, logger: logger}
}

// HandleCreate records a sighting of an existing bird.
//
// HTTP: POST /api/sightings
// REQUEST BODY: {"birdId": "...", "location": "Santa Monica", "dateTime": "2023-07-18T10:30:00"}
func (h *SightingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var draft model.SightingDraft
	if err := decodeJSON(r, &draft); err != nil {
		h.logger.Warn("invalid sighting JSON", slog.String("path", r.URL.Path))
		writeError(w, err)
		return
	}

	view, err := h.service.Save(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleUpdate replaces every field of an existing sighting.
//
// HTTP: PUT /api/sightings/{id}
func (h *SightingHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var draft model.SightingDraft
	if err := decodeJSON(r, &draft); err != nil {
		h.logger.Warn("invalid sighting JSON", slog.String("path", r.URL.Path))
		writeError(w, err)
		return
	}

	view, err := h.service.Update(r.Context(), r.PathValue("id"), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleDelete removes one sighting.
//
// HTTP: DELETE /api/sightings/{id}
func (h *SightingHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleGetByID returns one sighting with its bird embedded.
//
// HTTP: GET /api/sightings/{id}
func (h *SightingHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleList returns every sighting, failing with 500 if any of them
// references a missing bird.
//
// HTTP: GET /api/sightings
func (h *SightingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.GetAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleSearch runs one filter: birdId, else location, else the closed
// range [startDateTime, endDateTime] when both are given, else everything.
//
// HTTP: GET /api/sightings/search?birdId=&location=&startDateTime=&endDateTime=
func (h *SightingHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	// q.Get folds "?birdId=" into absent: an empty value never selects a
	// branch, so "?birdId=&location=Park" searches by location.
	q := r.URL.Query()
	criteria := service.SightingCriteria{
		BirdID:   q.Get("birdId"),
		Location: q.Get("location"),
		Start:    q.Get("startDateTime"),
		End:      q.Get("endDateTime"),
	}

	views, err := h.service.GetByCriteria(r.Context(), criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}
