package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/salmonco/sorabang/internal/analytics"
	"github.com/salmonco/sorabang/internal/recorder"
	"github.com/salmonco/sorabang/internal/room"
	"github.com/salmonco/sorabang/internal/store"
)

// maxUploadBytes caps a single audio upload. Two minutes of opus-encoded
// webm stays well under this.
const maxUploadBytes = 4 << 20

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	rooms     *room.Service
	store     store.DataStore
	sessions  *recorder.SessionManager
	analytics *analytics.Client
	baseURL   string
	logger    zerolog.Logger
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(rooms *room.Service, st store.DataStore, sessions *recorder.SessionManager, ac *analytics.Client, baseURL string, logger zerolog.Logger) *Handler {
	return &Handler{
		rooms:     rooms,
		store:     st,
		sessions:  sessions,
		analytics: ac,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		logger:    logger,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// DomainError maps a service error onto an HTTP status and logs failures
// that are not the caller's fault. No error passes through silently.
func (h *Handler) DomainError(w http.ResponseWriter, err error) {
	var vErr *room.ValidationError
	if errors.As(err, &vErr) {
		h.Error(w, http.StatusBadRequest, vErr.Error())
		return
	}

	var nfErr *room.NotFoundError
	if errors.As(err, &nfErr) {
		h.Error(w, http.StatusNotFound, nfErr.Error())
		return
	}

	if errors.Is(err, recorder.ErrSessionNotFound) {
		h.Error(w, http.StatusNotFound, "recording session not found")
		return
	}

	if errors.Is(err, recorder.ErrInvalidState) {
		h.Error(w, http.StatusConflict, "recording is not in a state that allows this")
		return
	}

	var stErr *room.StorageError
	if errors.As(err, &stErr) {
		h.logger.Error().Err(err).Msg("storage failure")
		h.Error(w, http.StatusBadGateway, "temporary storage failure, please retry")
		return
	}

	h.logger.Error().Err(err).Msg("unhandled error")
	h.Error(w, http.StatusInternalServerError, "internal error")
}
