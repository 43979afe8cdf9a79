package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/birdwatch/internal/apperror"
	"github.com/sakif/birdwatch/internal/model"
	"github.com/sakif/birdwatch/internal/service"
)

// BirdHandler exposes the bird service over HTTP.
//
// The handler only translates: JSON in, service call, JSON out. All the
// consistency rules (including the cascade into sightings on delete) live
// in service.BirdService.
type BirdHandler struct {
	service *service.BirdService
	logger  *slog.Logger
}

// NewBirdHandler creates a new BirdHandler.
func NewBirdHandler(svc *service.BirdService, logger *slog.Logger) *BirdHandler {
	return &BirdHandler{service: svc, logger: logger}
}

// HandleCreate saves a new bird.
//
// HTTP: POST /api/birds
// REQUEST BODY: {"name": "Sparrow", "color": "Black", "weight": 50.5, "height": 15}
func (h *BirdHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}

	view, err := h.service.Save(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleUpdate replaces every field of an existing bird.
//
// HTTP: PUT /api/birds/{id}
func (h *BirdHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}

	view, err := h.service.Update(r.Context(), r.PathValue("id"), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleDelete removes a bird and all of its sightings.
//
// HTTP: DELETE /api/birds/{id}
func (h *BirdHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleGetByID returns a single bird.
//
// HTTP: GET /api/birds/{id}
func (h *BirdHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleList returns every bird.
//
// HTTP: GET /api/birds
func (h *BirdHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.GetAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleSearch filters birds by name or color. Name wins when both are given.
//
// HTTP: GET /api/birds/search?name=Sparrow&color=Black
func (h *BirdHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	// Empty values count as absent, same as a missing parameter.
	q := r.URL.Query()
	criteria := service.BirdCriteria{
		Name:  q.Get("name"),
		Color: q.Get("color"),
	}

	views, err := h.service.GetByCriteria(r.Context(), criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// decodeDraft reads and validates a BirdDraft, writing the 400 itself on
// failure.
func (h *BirdHandler) decodeDraft(w http.ResponseWriter, r *http.Request) (model.BirdDraft, bool) {
	var draft model.BirdDraft
	if err := decodeJSON(r, &draft); err != nil {
		h.logger.Warn("invalid bird JSON", slog.String("path", r.URL.Path))
		writeError(w, err)
		return draft, false
	}

	if field, err := draft.Validate(); err != nil {
		writeError(w, apperror.ValidationFailed(field, err.Error()))
		return draft, false
	}
	return draft, true
}
