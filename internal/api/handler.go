// internal/api/handler.go
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	reviewsession "github.com/wrongbook/backend/internal/domain/review_session"
	"github.com/wrongbook/backend/internal/service"
	"github.com/wrongbook/backend/internal/store"
)

// Handler holds all dependencies needed by HTTP handlers.
type Handler struct {
	reviews *service.ReviewService
	store   store.Store
	metrics *Metrics
	logger  *slog.Logger
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(reviews *service.ReviewService, s store.Store, metrics *Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		reviews: reviews,
		store:   s,
		metrics: metrics,
		logger:  logger,
	}
}

// validator is implemented by request bodies that check their own fields.
type validator interface {
	Validate() error
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes {"error": msg} with the given status code.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// decodeAndValidate decodes the JSON body into v and validates it. It writes
// a 400 response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v validator) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := v.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// handleError maps store, service and domain errors to HTTP responses.
// Missing and inaccessible resources get the same 404 body. Returns true if
// an error was handled (caller should return).
func (h *Handler) handleError(w http.ResponseWriter, err error, entity string) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, entity+" not found")
	case errors.Is(err, reviewsession.ErrNoMatchingProblems):
		respondError(w, http.StatusUnprocessableEntity, "No problems match the current filters")
	case errors.Is(err, reviewsession.ErrInvalidProblemID):
		respondError(w, http.StatusBadRequest, "problem is not part of this session")
	case errors.Is(err, reviewsession.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", "error", err, "entity", entity)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
	return true
}
