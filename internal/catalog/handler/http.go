package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/narwhalmedia/catalog/internal/catalog/domain"
	"github.com/narwhalmedia/catalog/internal/catalog/service"
	"github.com/narwhalmedia/catalog/pkg/errors"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
	"github.com/narwhalmedia/catalog/pkg/logger"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Handler serves the catalog read API.
type Handler struct {
	service service.CatalogServiceInterface
	logger  interfaces.Logger
}

// NewHandler creates a new catalog HTTP handler
func NewHandler(svc service.CatalogServiceInterface, logger interfaces.Logger) *Handler {
	return &Handler{
		service: svc,
		logger:  logger,
	}
}

// ListMovies handles GET /api/v1/movies/?page=N&type=movie
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	env, err := h.service.ListMovies(r.Context(), query.Get("page"), query.Get("type"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, env)
}

// GetMovie handles GET /api/v1/movies/{id}
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, domain.ErrInvalidMovieID)
		return
	}

	movie, err := h.service.GetMovie(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, movie)
}

// GetMovieFile handles GET /api/v1/movies/{id}/file by redirecting to the media file.
func (h *Handler) GetMovieFile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, domain.ErrInvalidMovieID)
		return
	}

	url, err := h.service.MovieFileURL(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// ListPersons handles GET /api/v1/persons/?career=actor&page=N
func (h *Handler) ListPersons(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	env, err := h.service.ListPersons(r.Context(), query.Get("page"), query.Get("career"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, env)
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /readyz
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ready(r.Context()); err != nil {
		logger.FromContext(r.Context()).Warn("Readiness check failed", interfaces.Error(err))
		h.respondJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) respondJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to marshal JSON response", interfaces.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logger.FromContext(r.Context()).Error("Failed to write JSON response", interfaces.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("Request failed", interfaces.Error(err))
		message = "internal server error"
	} else {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			message = appErr.Message
		}
	}

	h.respondJSON(w, r, status, ErrorResponse{
		Error:   string(errors.TypeOf(err)),
		Message: message,
	})
}

func statusOf(err error) int {
	switch errors.TypeOf(err) {
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypeBadRequest:
		return http.StatusBadRequest
	case errors.ErrorTypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
